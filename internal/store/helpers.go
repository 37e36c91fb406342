package store

import (
	"github.com/shopspring/decimal"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
)

// decimalFromString parses a SUM() aggregate result, which the sqlite
// driver returns as a string rather than a native decimal.
func decimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// Fingerprint delegates to domain.Fingerprint so every stored transaction
// carries the same dedup key the CSV Import Pipeline computes for
// ExistingFingerprints lookups (spec §4.G).
func Fingerprint(t *domain.Transaction) string {
	return domain.Fingerprint(t.AccountID, t.Date, t.Amount, t.Payee, t.Memo)
}
