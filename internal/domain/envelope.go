package domain

import (
	"time"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/uuid"
)

// Envelope is a named virtual pocket that income is assigned to and
// spending is categorized against.
type Envelope struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Group      string       `json:"group,omitempty"`
	Color      string       `json:"color,omitempty"`
	SortOrder  int          `json:"sortOrder"`
	IsActive   bool         `json:"isActive"`
	IsHidden   bool         `json:"isHidden"`
	GoalAmount *money.Money `json:"goalAmount,omitempty"`
	GoalDate   *time.Time   `json:"goalDate,omitempty"`
	Note       string       `json:"note,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// NewEnvelope enforces Envelope's creation preconditions.
func NewEnvelope(name, group, color string) (*Envelope, error) {
	if name == "" {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "name")
	}
	now := time.Now().UTC()
	return &Envelope{
		ID:        uuid.New(),
		Name:      name,
		Group:     group,
		Color:     color,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// EnvelopeFromPersistedState rehydrates an Envelope from stored columns.
func EnvelopeFromPersistedState(
	id, name, group, color string, sortOrder int, isActive, isHidden bool,
	goalAmount *money.Money, goalDate *time.Time, note string,
	createdAt, updatedAt time.Time,
) *Envelope {
	return &Envelope{
		ID: id, Name: name, Group: group, Color: color, SortOrder: sortOrder,
		IsActive: isActive, IsHidden: isHidden, GoalAmount: goalAmount, GoalDate: goalDate,
		Note: note, CreatedAt: createdAt, UpdatedAt: updatedAt,
	}
}

// HasGoal reports whether the envelope has a nonzero goal amount set.
func (e *Envelope) HasGoal() bool {
	return e.GoalAmount != nil && !e.GoalAmount.IsZero()
}

// SetGoal sets the envelope's savings goal (ClearGoal removes it). amount
// must be positive; targetDate is optional.
func (e *Envelope) SetGoal(amount money.Money, targetDate *time.Time) error {
	if !amount.IsPositive() {
		return apperrors.WithTarget(apperrors.ErrValidation, "amount")
	}
	e.GoalAmount = &amount
	e.GoalDate = targetDate
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// ClearGoal removes the envelope's savings goal.
func (e *Envelope) ClearGoal() {
	e.GoalAmount = nil
	e.GoalDate = nil
	e.UpdatedAt = time.Now().UTC()
}

// Rename updates the envelope's display name.
func (e *Envelope) Rename(name string) error {
	if name == "" {
		return apperrors.WithTarget(apperrors.ErrValidation, "name")
	}
	e.Name = name
	e.UpdatedAt = time.Now().UTC()
	return nil
}

// Archive hides the envelope from active use without deleting its history.
func (e *Envelope) Archive() {
	e.IsActive = false
	e.UpdatedAt = time.Now().UTC()
}

// Needed returns max(0, goalAmount - available) in the envelope's goal
// currency, or a zero Money if there is no goal.
func (e *Envelope) Needed(available money.Money) money.Money {
	if !e.HasGoal() {
		return money.Zero(available.Currency())
	}
	diff, err := e.GoalAmount.Sub(available)
	if err != nil || diff.IsNegative() {
		return money.Zero(e.GoalAmount.Currency())
	}
	return diff
}
