package domain

import (
	"time"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/uuid"
)

// BudgetPeriod is a single calendar month's budget: its totals are
// derived by the Recalculation Service from raw transactions, never
// written directly except through Recalculate/Rollover.
type BudgetPeriod struct {
	ID             string      `json:"id"`
	Year           int         `json:"year"`
	Month          int         `json:"month"` // 1..12
	TotalIncome    money.Money `json:"totalIncome"`
	TotalAllocated money.Money `json:"totalAllocated"`
	TotalSpent     money.Money `json:"totalSpent"`
	CarriedOver    money.Money `json:"carriedOver"`
	IsClosed       bool        `json:"isClosed"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// NewBudgetPeriod enforces the (year, month) preconditions of a period.
func NewBudgetPeriod(year, month int, currency string) (*BudgetPeriod, error) {
	if month < 1 || month > 12 {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "month")
	}
	zero := money.Zero(currency)
	now := time.Now().UTC()
	return &BudgetPeriod{
		ID: uuid.New(), Year: year, Month: month,
		TotalIncome: zero, TotalAllocated: zero, TotalSpent: zero, CarriedOver: zero,
		CreatedAt: now, UpdatedAt: now,
	}, nil
}

// BudgetPeriodFromPersistedState rehydrates a BudgetPeriod from stored columns.
func BudgetPeriodFromPersistedState(
	id string, year, month int,
	totalIncome, totalAllocated, totalSpent, carriedOver money.Money,
	isClosed bool, createdAt, updatedAt time.Time,
) *BudgetPeriod {
	return &BudgetPeriod{
		ID: id, Year: year, Month: month,
		TotalIncome: totalIncome, TotalAllocated: totalAllocated, TotalSpent: totalSpent, CarriedOver: carriedOver,
		IsClosed: isClosed, CreatedAt: createdAt, UpdatedAt: updatedAt,
	}
}

// ReadyToAssign = income + carriedOver - totalAllocated.
func (p *BudgetPeriod) ReadyToAssign() (money.Money, error) {
	sum, err := p.TotalIncome.Add(p.CarriedOver)
	if err != nil {
		return money.Money{}, err
	}
	return sum.Sub(p.TotalAllocated)
}

// Remaining = totalAllocated - totalSpent.
func (p *BudgetPeriod) Remaining() (money.Money, error) {
	return p.TotalAllocated.Sub(p.TotalSpent)
}

// SetDerivedTotals overwrites the period's derived totals, called only by
// the Recalculation Service. Rejected on a closed period (spec §4.D).
func (p *BudgetPeriod) SetDerivedTotals(totalIncome, totalSpent, totalAllocated money.Money) error {
	if p.IsClosed {
		return apperrors.ErrClosedPeriod
	}
	p.TotalIncome = totalIncome
	p.TotalSpent = totalSpent
	p.TotalAllocated = totalAllocated
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// SetCarriedOver sets the cash carried in from the prior period's
// readyToAssign. Called only by rollover, on the newly opened period.
func (p *BudgetPeriod) SetCarriedOver(amount money.Money) {
	p.CarriedOver = amount
	p.UpdatedAt = time.Now().UTC()
}

// Close marks the period closed, forbidding further total mutation until
// it is reopened (which this implementation never does).
func (p *BudgetPeriod) Close() error {
	if p.IsClosed {
		return apperrors.ErrClosedPeriod
	}
	p.IsClosed = true
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// NextMonth returns the (year, month) pair following this period,
// rolling December into January of the next year.
func (p *BudgetPeriod) NextMonth() (year, month int) {
	if p.Month == 12 {
		return p.Year + 1, 1
	}
	return p.Year, p.Month + 1
}
