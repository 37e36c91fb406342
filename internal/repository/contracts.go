// Package repository declares the contract the Budget Engine core consumes
// to read and write entities (spec §4.C), and the Unit-of-Work abstraction
// that scopes a single store connection across a compound operation
// (spec §4.I, §5). internal/store provides the concrete SQLite/GORM
// implementation.
package repository

import (
	"context"
	"time"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
)

// AccountRepository is the per-root-entity contract for Account.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetAll(ctx context.Context) ([]*domain.Account, error)
	Add(ctx context.Context, a *domain.Account) error
	Update(ctx context.Context, a *domain.Account) error
	Delete(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)

	// AccountBalance sums non-deleted transaction amounts on the account.
	AccountBalance(ctx context.Context, accountID string) (money.Money, error)
	// AccountClearedBalance sums non-deleted, cleared transaction amounts.
	AccountClearedBalance(ctx context.Context, accountID string) (money.Money, error)
}

// EnvelopeRepository is the per-root-entity contract for Envelope.
type EnvelopeRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Envelope, error)
	GetAll(ctx context.Context) ([]*domain.Envelope, error)
	Add(ctx context.Context, e *domain.Envelope) error
	Update(ctx context.Context, e *domain.Envelope) error
	Delete(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)

	// DistinctGroups lists the set of group names in use (SPEC_FULL #1).
	DistinctGroups(ctx context.Context) ([]string, error)
}

// TransactionFilter narrows TransactionRepository list queries.
type TransactionFilter struct {
	AccountID  *string
	EnvelopeID *string
	From, To   *time.Time
}

// TransactionRepository is the per-root-entity contract for Transaction.
type TransactionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	GetAll(ctx context.Context) ([]*domain.Transaction, error)
	Add(ctx context.Context, t *domain.Transaction) error
	Update(ctx context.Context, t *domain.Transaction) error
	Delete(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)

	ByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error)
	ByEnvelope(ctx context.Context, envelopeID string) ([]*domain.Transaction, error)
	ByDateRange(ctx context.Context, r money.DateRange) ([]*domain.Transaction, error)
	ByAccountAndDateRange(ctx context.Context, accountID string, r money.DateRange) ([]*domain.Transaction, error)
	UnclearedByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error)
	// Unassigned returns outflows with no envelope and no splits, excluding
	// transfers and deleted rows (spec §4.C).
	Unassigned(ctx context.Context, accountID string) ([]*domain.Transaction, error)

	// EnvelopeSpentInRange sums |amount| for non-deleted outflows directly
	// assigned to the envelope, plus split-line contributions, within r.
	EnvelopeSpentInRange(ctx context.Context, envelopeID string, r money.DateRange, currency string) (money.Money, error)
	// TotalsForRange returns (incomeSum, spentAbsSum) excluding transfers
	// and deleted rows.
	TotalsForRange(ctx context.Context, r money.DateRange, currency string) (income, spentAbs money.Money, err error)

	// ExistingFingerprints returns the fingerprints of non-deleted
	// transactions for accountID with a date in [r.Start, r.End], used by
	// CSV duplicate detection (spec §4.G).
	ExistingFingerprints(ctx context.Context, accountID string, r money.DateRange) (map[string]struct{}, error)
}

// SplitRepository is the per-root-entity contract for TransactionSplitLine.
type SplitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.SplitLine, error)
	Add(ctx context.Context, s *domain.SplitLine) error
	Delete(ctx context.Context, id string) error
	ByTransaction(ctx context.Context, transactionID string) ([]*domain.SplitLine, error)
	// ReplaceForTransaction deletes the existing split set and inserts lines.
	ReplaceForTransaction(ctx context.Context, transactionID string, lines []*domain.SplitLine) error
}

// BudgetPeriodRepository is the per-root-entity contract for BudgetPeriod.
type BudgetPeriodRepository interface {
	GetByID(ctx context.Context, id string) (*domain.BudgetPeriod, error)
	Add(ctx context.Context, p *domain.BudgetPeriod) error
	Update(ctx context.Context, p *domain.BudgetPeriod) error
	ByYearMonth(ctx context.Context, year, month int) (*domain.BudgetPeriod, error)
	// PeriodTotalAllocated sums allocated across every allocation in the period.
	PeriodTotalAllocated(ctx context.Context, periodID string, currency string) (money.Money, error)
}

// EnvelopeAllocationRepository is the per-root-entity contract for
// EnvelopeAllocation.
type EnvelopeAllocationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.EnvelopeAllocation, error)
	Add(ctx context.Context, a *domain.EnvelopeAllocation) error
	Update(ctx context.Context, a *domain.EnvelopeAllocation) error
	ByEnvelopeAndPeriod(ctx context.Context, envelopeID, periodID string) (*domain.EnvelopeAllocation, error)
	ByPeriod(ctx context.Context, periodID string) ([]*domain.EnvelopeAllocation, error)
}

// PayeeRepository is the per-root-entity contract for Payee.
type PayeeRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Payee, error)
	Add(ctx context.Context, p *domain.Payee) error
	Update(ctx context.Context, p *domain.Payee) error

	// ByName looks up a payee by case-insensitive exact name match.
	ByName(ctx context.Context, name string) (*domain.Payee, error)
	// Search ranks matches (prefix or substring) by transactionCount desc.
	Search(ctx context.Context, query string, limit int) ([]*domain.Payee, error)
}

// AuditRepository appends engine-operation audit entries (SPEC_FULL #3).
type AuditRepository interface {
	Add(ctx context.Context, entry *domain.AuditLog) error
}

// UnitOfWork scopes a single store connection/transaction across a
// compound operation (spec §4.C, §4.I). Begin returns a UnitOfWork bound
// to a live transaction; Commit/Rollback end its lifetime. Implementations
// must make every write visible to subsequent reads within the same unit
// of work (spec §5's "read-your-writes").
type UnitOfWork interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	Accounts() AccountRepository
	Envelopes() EnvelopeRepository
	Transactions() TransactionRepository
	Splits() SplitRepository
	BudgetPeriods() BudgetPeriodRepository
	Allocations() EnvelopeAllocationRepository
	Payees() PayeeRepository
	Audit() AuditRepository
}

// UnitOfWorkFactory begins a new UnitOfWork bound to a fresh store
// transaction.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
