package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
)

// Factory begins gorm-transaction-scoped UnitOfWork instances, the
// concrete repository.UnitOfWorkFactory the engine layer is wired to.
type Factory struct {
	db *gorm.DB
}

// NewFactory wraps an already-connected, already-migrated *gorm.DB.
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{db: db}
}

func (f *Factory) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	tx := f.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &unitOfWork{tx: tx}, nil
}

// unitOfWork binds every repository accessor to the same live *gorm.DB
// transaction, so writes made through one repository are visible to reads
// through another within the same unit of work (spec §5's
// read-your-writes requirement).
type unitOfWork struct {
	tx *gorm.DB

	accounts     *accountRepo
	envelopes    *envelopeRepo
	transactions *transactionRepo
	splits       *splitRepo
	periods      *budgetPeriodRepo
	allocations  *allocationRepo
	payees       *payeeRepo
	audit        *auditRepo
}

func (u *unitOfWork) Commit(ctx context.Context) error   { return u.tx.Commit().Error }
func (u *unitOfWork) Rollback(ctx context.Context) error { return u.tx.Rollback().Error }

func (u *unitOfWork) Accounts() repository.AccountRepository {
	if u.accounts == nil {
		u.accounts = &accountRepo{db: u.tx}
	}
	return u.accounts
}

func (u *unitOfWork) Envelopes() repository.EnvelopeRepository {
	if u.envelopes == nil {
		u.envelopes = &envelopeRepo{db: u.tx}
	}
	return u.envelopes
}

func (u *unitOfWork) Transactions() repository.TransactionRepository {
	if u.transactions == nil {
		u.transactions = &transactionRepo{db: u.tx}
	}
	return u.transactions
}

func (u *unitOfWork) Splits() repository.SplitRepository {
	if u.splits == nil {
		u.splits = &splitRepo{db: u.tx}
	}
	return u.splits
}

func (u *unitOfWork) BudgetPeriods() repository.BudgetPeriodRepository {
	if u.periods == nil {
		u.periods = &budgetPeriodRepo{db: u.tx}
	}
	return u.periods
}

func (u *unitOfWork) Allocations() repository.EnvelopeAllocationRepository {
	if u.allocations == nil {
		u.allocations = &allocationRepo{db: u.tx}
	}
	return u.allocations
}

func (u *unitOfWork) Payees() repository.PayeeRepository {
	if u.payees == nil {
		u.payees = &payeeRepo{db: u.tx}
	}
	return u.payees
}

func (u *unitOfWork) Audit() repository.AuditRepository {
	if u.audit == nil {
		u.audit = &auditRepo{db: u.tx}
	}
	return u.audit
}
