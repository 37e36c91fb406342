// Package domain holds BudgetWise's entities and the narrow, invariant-
// preserving mutators that are the only way to change them (spec §4.B).
// Entities are persistence-agnostic: the store adapter (internal/store)
// maps them to and from its own row representation rather than this
// package carrying ORM tags, per the "reflection-based hydration" design
// note in spec §9 — a FromPersistedState constructor (skipping creation
// preconditions) stands in for what the source did with reflection.
package domain

import (
	"time"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/uuid"
)

// AccountType classifies an Account for balance-sign and on-budget purposes.
type AccountType string

const (
	AccountTypeChecking     AccountType = "checking"
	AccountTypeSavings      AccountType = "savings"
	AccountTypeCreditCard   AccountType = "credit_card"
	AccountTypeCash         AccountType = "cash"
	AccountTypeLineOfCredit AccountType = "line_of_credit"
	AccountTypeInvestment   AccountType = "investment"
	AccountTypeOther        AccountType = "other"
)

func (t AccountType) valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCreditCard, AccountTypeCash,
		AccountTypeLineOfCredit, AccountTypeInvestment, AccountTypeOther:
		return true
	}
	return false
}

// IsCredit reports whether the account's balance counts toward liabilities
// regardless of sign, per spec §3.
func (t AccountType) IsCredit() bool {
	return t == AccountTypeCreditCard || t == AccountTypeLineOfCredit
}

// Account is a financial account tracked by the budget. Balance is the sum
// of ClearedBalance and UnclearedBalance, refreshed by the Transaction
// Service after every mutation that touches it (spec §8.1).
type Account struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	Type             AccountType `json:"type"`
	Balance          money.Money `json:"balance"`
	ClearedBalance   money.Money `json:"clearedBalance"`
	UnclearedBalance money.Money `json:"unclearedBalance"`
	IsActive         bool        `json:"isActive"`
	IsOnBudget       bool        `json:"isOnBudget"`
	SortOrder        int         `json:"sortOrder"`
	Note             string      `json:"note,omitempty"`
	LastReconciledAt *time.Time  `json:"lastReconciledAt,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// NewAccount is the creation factory: it enforces the preconditions an
// Account must satisfy to exist at all.
func NewAccount(name string, accountType AccountType, currency string, isOnBudget bool) (*Account, error) {
	if name == "" {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "name")
	}
	if !accountType.valid() {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "type")
	}
	zero, err := money.New(money.Zero(currency).Amount(), currency)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Account{
		ID:               uuid.New(),
		Name:             name,
		Type:             accountType,
		Balance:          zero,
		ClearedBalance:   zero,
		UnclearedBalance: zero,
		IsActive:         true,
		IsOnBudget:       isOnBudget,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// AccountFromPersistedState rehydrates an Account from the full set of
// columns the store read back, skipping the creation preconditions
// NewAccount enforces (the row already satisfied them once).
func AccountFromPersistedState(
	id, name string, accountType AccountType,
	balance, cleared, uncleared money.Money,
	isActive, isOnBudget bool, sortOrder int, note string,
	lastReconciledAt *time.Time, createdAt, updatedAt time.Time,
) *Account {
	return &Account{
		ID: id, Name: name, Type: accountType,
		Balance: balance, ClearedBalance: cleared, UnclearedBalance: uncleared,
		IsActive: isActive, IsOnBudget: isOnBudget, SortOrder: sortOrder, Note: note,
		LastReconciledAt: lastReconciledAt, CreatedAt: createdAt, UpdatedAt: updatedAt,
	}
}

// Currency returns the account's currency code.
func (a *Account) Currency() string { return a.Balance.Currency() }

// SetCachedBalances recomputes Balance as the sum of ClearedBalance and
// UnclearedBalance, preserving balance = clearedBalance + unclearedBalance
// (spec §3, §8.1). Callers (the Transaction Service) pass freshly summed
// cleared/uncleared totals read back from the store.
func (a *Account) SetCachedBalances(cleared, uncleared money.Money) error {
	total, err := cleared.Add(uncleared)
	if err != nil {
		return err
	}
	a.ClearedBalance = cleared
	a.UnclearedBalance = uncleared
	a.Balance = total
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Rename updates the account's display name.
func (a *Account) Rename(name string) error {
	if name == "" {
		return apperrors.WithTarget(apperrors.ErrValidation, "name")
	}
	a.Name = name
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// Close archives the account. Closing requires a zero balance (spec §3).
func (a *Account) Close() error {
	if !a.Balance.IsZero() {
		return apperrors.WithMessage(apperrors.ErrInvalidOperation, "account balance must be zero to close")
	}
	a.IsActive = false
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkReconciled stamps the account's last-reconciled timestamp.
func (a *Account) MarkReconciled(at time.Time) {
	a.LastReconciledAt = &at
	a.UpdatedAt = time.Now().UTC()
}
