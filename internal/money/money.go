// Package money implements the value type used for every amount in
// BudgetWise: a decimal quantity scaled to two fractional digits paired
// with a currency tag. Arithmetic across differing currencies is rejected
// rather than converted (spec: multi-currency conversion is a non-goal).
package money

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
)

// scale is the number of fractional digits every Money value is rounded to.
const scale = 2

// Money is an immutable amount scaled to two fractional digits together
// with its three-letter currency code.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// New builds a Money from a decimal amount and a currency code, rounding
// the amount to two fractional digits with half-away-from-zero rounding.
// The currency is upper-cased; an empty currency is rejected.
func New(amount decimal.Decimal, currency string) (Money, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if len(currency) != 3 {
		return Money{}, apperrors.WithMessage(apperrors.ErrValidation, "currency must be a 3-letter code")
	}
	return Money{amount: amount.Round(scale), currency: currency}, nil
}

// MustNew is New but panics on error. Intended for constant-like call
// sites (tests, default allocations) where the currency is known-good.
func MustNew(amount decimal.Decimal, currency string) Money {
	m, err := New(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) Money {
	return MustNew(decimal.Zero, currency)
}

// FromFloat builds a Money from a float64, for call sites translating
// user-facing decimal literals (e.g. request DTOs). Prefer New with a
// decimal.Decimal parsed from a string wherever the source is text.
func FromFloat(amount float64, currency string) (Money, error) {
	return New(decimal.NewFromFloat(amount), currency)
}

// Amount returns the underlying decimal amount, already rounded to scale.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the three-letter currency code.
func (m Money) Currency() string { return m.currency }

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// IsNegative reports whether the amount is strictly less than zero.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Abs returns the absolute value, preserving currency.
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// Negate returns the additive inverse, preserving currency.
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

func (m Money) sameCurrency(other Money) error {
	if m.currency != other.currency {
		return apperrors.WithMessage(apperrors.ErrValidation,
			fmt.Sprintf("currency mismatch: %s vs %s", m.currency, other.currency))
	}
	return nil
}

// Add returns m + other. Both must carry the same currency.
func (m Money) Add(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Add(other.amount).Round(scale), currency: m.currency}, nil
}

// Sub returns m - other. Both must carry the same currency.
func (m Money) Sub(other Money) (Money, error) {
	if err := m.sameCurrency(other); err != nil {
		return Money{}, err
	}
	return Money{amount: m.amount.Sub(other.amount).Round(scale), currency: m.currency}, nil
}

// Mul scales m by a dimensionless factor (e.g. a split ratio).
func (m Money) Mul(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor).Round(scale), currency: m.currency}
}

// Div divides m by a dimensionless factor. Division by zero is an error.
func (m Money) Div(factor decimal.Decimal) (Money, error) {
	if factor.IsZero() {
		return Money{}, apperrors.WithMessage(apperrors.ErrValidation, "division by zero")
	}
	return Money{amount: m.amount.DivRound(factor, scale+2).Round(scale), currency: m.currency}, nil
}

// Cmp compares m to other, returning -1, 0, or 1. Both must carry the
// same currency.
func (m Money) Cmp(other Money) (int, error) {
	if err := m.sameCurrency(other); err != nil {
		return 0, err
	}
	return m.amount.Cmp(other.amount), nil
}

// GreaterThan reports whether m > other. Panics via the returned error
// being non-nil is not appropriate for a boolean predicate, so callers
// that must compare across possibly-differing currencies should use Cmp
// directly; GreaterThan assumes matching currency and returns false on
// mismatch.
func (m Money) GreaterThan(other Money) bool {
	c, err := m.Cmp(other)
	return err == nil && c > 0
}

// LessThan reports whether m < other, with the same currency assumption
// as GreaterThan.
func (m Money) LessThan(other Money) bool {
	c, err := m.Cmp(other)
	return err == nil && c < 0
}

// Equal reports value equality on (amount, currency).
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String renders a locale-free, human-readable form: a dollar sign for
// USD, the Euro and Sterling glyphs for EUR/GBP, and "<amount> <currency>"
// otherwise.
func (m Money) String() string {
	switch m.currency {
	case "USD":
		return "$" + m.amount.StringFixed(scale)
	case "EUR":
		return "€" + m.amount.StringFixed(scale)
	case "GBP":
		return "£" + m.amount.StringFixed(scale)
	default:
		return m.amount.StringFixed(scale) + " " + m.currency
	}
}

// wireMoney is the over-the-wire shape of a Money value: the amount as a
// decimal string (never a JSON number, to avoid float precision loss) next
// to its currency code.
type wireMoney struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

// MarshalJSON renders Money as {"amount":"12.34","currency":"USD"}. Money's
// fields are unexported so the default encoder would otherwise emit "{}".
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireMoney{Amount: m.amount.StringFixed(scale), Currency: m.currency})
}

// UnmarshalJSON parses the {"amount":"...","currency":"..."} shape
// MarshalJSON produces.
func (m *Money) UnmarshalJSON(data []byte) error {
	var w wireMoney
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(w.Amount)
	if err != nil {
		return err
	}
	built, err := New(amount, w.Currency)
	if err != nil {
		return err
	}
	*m = built
	return nil
}
