package domain

import (
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/uuid"
)

// SplitLine is one part-amount of a split outflow, assigned to a single
// envelope. Only outflows may have splits; when any split exists, the
// parent transaction's EnvelopeID must be empty, and the splits' amounts
// must sum to the parent's |amount| (spec §3, §8.2).
type SplitLine struct {
	ID            string      `json:"id"`
	TransactionID string      `json:"transactionId"`
	EnvelopeID    string      `json:"envelopeId"`
	Amount        money.Money `json:"amount"`
	SortOrder     int         `json:"sortOrder"`
}

// NewSplitLine enforces a split line's creation preconditions: a positive
// amount and a non-empty envelope.
func NewSplitLine(transactionID, envelopeID string, amount money.Money, sortOrder int) (*SplitLine, error) {
	if transactionID == "" {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "transactionId")
	}
	if envelopeID == "" {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "envelopeId")
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "amount")
	}
	if sortOrder < 0 {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "sortOrder")
	}
	return &SplitLine{ID: uuid.New(), TransactionID: transactionID, EnvelopeID: envelopeID, Amount: amount, SortOrder: sortOrder}, nil
}

// SplitLineFromPersistedState rehydrates a SplitLine from stored columns.
func SplitLineFromPersistedState(id, transactionID, envelopeID string, amount money.Money, sortOrder int) *SplitLine {
	return &SplitLine{ID: id, TransactionID: transactionID, EnvelopeID: envelopeID, Amount: amount, SortOrder: sortOrder}
}

// SumSplitLines adds up a set of split amounts in the given currency.
// An empty set sums to zero; a line in another currency yields a
// validation error.
func SumSplitLines(currency string, lines []*SplitLine) (money.Money, error) {
	total := money.Zero(currency)
	for _, l := range lines {
		var err error
		total, err = total.Add(l.Amount)
		if err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}

// ValidateSplitSum checks that the splits' total equals the parent
// transaction's absolute amount (spec §3, §8.2).
func ValidateSplitSum(parentAbsAmount money.Money, lines []*SplitLine) error {
	if len(lines) == 0 {
		return apperrors.WithMessage(apperrors.ErrValidation, "splits must be non-empty")
	}
	sum, err := SumSplitLines(parentAbsAmount.Currency(), lines)
	if err != nil {
		return err
	}
	if !sum.Equal(parentAbsAmount) {
		return apperrors.ErrSplitMismatch
	}
	return nil
}
