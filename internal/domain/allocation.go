package domain

import (
	"time"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/uuid"
)

// EnvelopeAllocation is the quantity of money assigned to one Envelope for
// one BudgetPeriod. Unique key (envelopeId, budgetPeriodId).
type EnvelopeAllocation struct {
	ID                   string      `json:"id"`
	EnvelopeID           string      `json:"envelopeId"`
	BudgetPeriodID       string      `json:"budgetPeriodId"`
	Allocated            money.Money `json:"allocated"`
	RolloverFromPrevious money.Money `json:"rolloverFromPrevious"`
	Spent                money.Money `json:"spent"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

// NewEnvelopeAllocation enforces allocated >= 0 at creation.
func NewEnvelopeAllocation(envelopeID, budgetPeriodID string, allocated money.Money) (*EnvelopeAllocation, error) {
	if envelopeID == "" {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "envelopeId")
	}
	if budgetPeriodID == "" {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "budgetPeriodId")
	}
	if allocated.IsNegative() {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "allocated")
	}
	now := time.Now().UTC()
	zero := money.Zero(allocated.Currency())
	return &EnvelopeAllocation{
		ID: uuid.New(), EnvelopeID: envelopeID, BudgetPeriodID: budgetPeriodID,
		Allocated: allocated, RolloverFromPrevious: zero, Spent: zero,
		CreatedAt: now, UpdatedAt: now,
	}, nil
}

// EnvelopeAllocationFromPersistedState rehydrates an EnvelopeAllocation
// from stored columns.
func EnvelopeAllocationFromPersistedState(
	id, envelopeID, budgetPeriodID string,
	allocated, rolloverFromPrevious, spent money.Money,
	createdAt, updatedAt time.Time,
) *EnvelopeAllocation {
	return &EnvelopeAllocation{
		ID: id, EnvelopeID: envelopeID, BudgetPeriodID: budgetPeriodID,
		Allocated: allocated, RolloverFromPrevious: rolloverFromPrevious, Spent: spent,
		CreatedAt: createdAt, UpdatedAt: updatedAt,
	}
}

// Available = allocated + rolloverFromPrevious - spent.
func (a *EnvelopeAllocation) Available() (money.Money, error) {
	sum, err := a.Allocated.Add(a.RolloverFromPrevious)
	if err != nil {
		return money.Money{}, err
	}
	return sum.Sub(a.Spent)
}

// TotalBudgeted = allocated + rolloverFromPrevious.
func (a *EnvelopeAllocation) TotalBudgeted() (money.Money, error) {
	return a.Allocated.Add(a.RolloverFromPrevious)
}

// SetAllocated overwrites the allocated amount. Rejects negative values.
func (a *EnvelopeAllocation) SetAllocated(amount money.Money) error {
	if amount.IsNegative() {
		return apperrors.WithTarget(apperrors.ErrValidation, "amount")
	}
	a.Allocated = amount
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// AdjustAllocated applies delta to the allocated amount, clamped to zero:
// newAllocated = max(0, current + delta). A negative delta may not push
// the result below zero (spec §4.F).
func (a *EnvelopeAllocation) AdjustAllocated(delta money.Money) error {
	next, err := a.Allocated.Add(delta)
	if err != nil {
		return err
	}
	if next.IsNegative() {
		next = money.Zero(next.Currency())
	}
	a.Allocated = next
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// SetSpent overwrites the derived spent total. Called only by the
// Recalculation Service.
func (a *EnvelopeAllocation) SetSpent(spent money.Money) {
	a.Spent = spent
	a.UpdatedAt = time.Now().UTC()
}

// SetRolloverFromPrevious sets the (possibly negative) amount carried in
// from the prior period's leftover/overspend. Called only by rollover.
func (a *EnvelopeAllocation) SetRolloverFromPrevious(amount money.Money) {
	a.RolloverFromPrevious = amount
	a.UpdatedAt = time.Now().UTC()
}
