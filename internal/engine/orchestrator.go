package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
)

// BudgetSnapshot is the read-back state the orchestrator returns after
// every mutating operation (spec §4.I).
type BudgetSnapshot struct {
	Year           int         `json:"year"`
	Month          int         `json:"month"`
	IsClosed       bool        `json:"isClosed"`
	CarriedOver    money.Money `json:"carriedOver"`
	TotalIncome    money.Money `json:"totalIncome"`
	TotalAllocated money.Money `json:"totalAllocated"`
	TotalSpent     money.Money `json:"totalSpent"`
	ReadyToAssign  money.Money `json:"readyToAssign"`
}

// AllocationChange describes one envelope's allocated-amount delta
// produced by a mutating operation (spec §4.I).
type AllocationChange struct {
	EnvelopeID      string      `json:"envelopeId"`
	EnvelopeName    string      `json:"envelopeName,omitempty"`
	BeforeAllocated money.Money `json:"beforeAllocated"`
	AfterAllocated  money.Money `json:"afterAllocated"`
}

// Delta returns AfterAllocated - BeforeAllocated.
func (c AllocationChange) Delta() (money.Money, error) {
	return c.AfterAllocated.Sub(c.BeforeAllocated)
}

// ErrorDetail is one entry of a failed Result's Errors list (spec §6).
type ErrorDetail struct {
	Code    apperrors.Code `json:"code"`
	Message string         `json:"message"`
	Target  string         `json:"target,omitempty"`
}

// Result is the wire-shape envelope every mutating orchestrator operation
// returns (spec §6, §4.I).
type Result struct {
	Success           bool               `json:"success"`
	Errors            []ErrorDetail      `json:"errors,omitempty"`
	Snapshot          *BudgetSnapshot    `json:"snapshot,omitempty"`
	AllocationChanges []AllocationChange `json:"allocationChanges,omitempty"`
	Value             interface{}        `json:"value,omitempty"`
}

func failureResult(err error) *Result {
	ae, ok := err.(*apperrors.AppError)
	if !ok {
		ae = apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return &Result{Success: false, Errors: []ErrorDetail{{Code: ae.Code, Message: ae.Message, Target: ae.Target}}}
}

// Orchestrator is the Budget Engine's public facade: it wraps every
// mutating operation in a unit of work, recomputes, reads back a
// snapshot, and maps failures to stable error codes (spec §4.I).
// Grounded in the reference's service-constructor style, generalized from
// per-request handlers to a single facade all handlers call through.
type Orchestrator struct {
	factory   repository.UnitOfWorkFactory
	tx        *TransactionService
	alloc     *AllocationService
	recalc    *RecalculationService
	csv       *CSVImportService
	reconcile *ReconciliationService
}

func NewOrchestrator(factory repository.UnitOfWorkFactory) *Orchestrator {
	tx := NewTransactionService()
	recalc := NewRecalculationService()
	alloc := NewAllocationService(recalc)
	csvSvc := NewCSVImportService(tx, recalc)
	reconcileSvc := NewReconciliationService(tx)
	return &Orchestrator{factory: factory, tx: tx, alloc: alloc, recalc: recalc, csv: csvSvc, reconcile: reconcileSvc}
}

// run begins a unit of work, executes fn, recalculates every period key
// fn reports touching, reads back the snapshot for primaryPeriod, records
// an audit entry, and commits; on any error it rolls back and maps the
// failure (spec §4.I step 1-6, §7).
func (o *Orchestrator) run(
	ctx context.Context,
	action, resourceType, resourceID string,
	fn func(uow repository.UnitOfWork) (value interface{}, periods []periodKeyYM, allocChanges []AllocationChange, err error),
) *Result {
	uow, err := o.factory.Begin(ctx)
	if err != nil {
		return failureResult(err)
	}

	value, periods, allocChanges, err := fn(uow)
	if err != nil {
		_ = uow.Rollback(ctx)
		return failureResult(err)
	}

	for _, p := range periods {
		if _, err := EnsurePeriod(ctx, uow, p.Year, p.Month, p.Currency); err != nil {
			_ = uow.Rollback(ctx)
			return failureResult(err)
		}
		if err := o.recalc.Recalculate(ctx, uow, p.Year, p.Month); err != nil {
			_ = uow.Rollback(ctx)
			return failureResult(err)
		}
	}

	var snapshot *BudgetSnapshot
	if len(periods) > 0 {
		snapshot, err = o.readSnapshot(ctx, uow, periods[0].Year, periods[0].Month)
		if err != nil {
			_ = uow.Rollback(ctx)
			return failureResult(err)
		}
	}

	if action != "" {
		details, _ := json.Marshal(value)
		entry := domain.NewAuditLog(action, resourceType, resourceID, string(details))
		if err := uow.Audit().Add(ctx, entry); err != nil {
			_ = uow.Rollback(ctx)
			return failureResult(err)
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return failureResult(err)
	}
	return &Result{Success: true, Snapshot: snapshot, AllocationChanges: allocChanges, Value: value}
}

// periodKeyYM names a budget period an operation touched and the currency
// to seed it with if it doesn't exist yet (spec §4.D periods are created
// on first use, not provisioned up front).
type periodKeyYM struct {
	Year, Month int
	Currency    string
}

func (o *Orchestrator) readSnapshot(ctx context.Context, uow repository.UnitOfWork, year, month int) (*BudgetSnapshot, error) {
	period, err := uow.BudgetPeriods().ByYearMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}
	rta, err := period.ReadyToAssign()
	if err != nil {
		return nil, err
	}
	return &BudgetSnapshot{
		Year: period.Year, Month: period.Month, IsClosed: period.IsClosed,
		CarriedOver: period.CarriedOver, TotalIncome: period.TotalIncome,
		TotalAllocated: period.TotalAllocated, TotalSpent: period.TotalSpent, ReadyToAssign: rta,
	}, nil
}

// CreateOutflow wraps TransactionService.CreateOutflow.
func (o *Orchestrator) CreateOutflow(ctx context.Context, accountID string, date time.Time, amount money.Money, payee string, envelopeID *string, splits []SplitInput, memo string) *Result {
	return o.run(ctx, "CreateOutflow", "Transaction", "", func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		txn, err := o.tx.CreateOutflow(ctx, uow, accountID, date, amount, payee, envelopeID, splits, memo)
		if err != nil {
			return nil, nil, nil, err
		}
		return txn, []periodKeyYM{{txn.Date.Year(), int(txn.Date.Month()), txn.Amount.Currency()}}, nil, nil
	})
}

// CreateInflow wraps TransactionService.CreateInflow.
func (o *Orchestrator) CreateInflow(ctx context.Context, accountID string, date time.Time, amount money.Money, payee, memo string) *Result {
	return o.run(ctx, "CreateInflow", "Transaction", "", func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		txn, err := o.tx.CreateInflow(ctx, uow, accountID, date, amount, payee, memo)
		if err != nil {
			return nil, nil, nil, err
		}
		return txn, []periodKeyYM{{txn.Date.Year(), int(txn.Date.Month()), txn.Amount.Currency()}}, nil, nil
	})
}

// CreateTransfer wraps TransactionService.CreateTransfer.
func (o *Orchestrator) CreateTransfer(ctx context.Context, fromAccountID, toAccountID string, date time.Time, amount money.Money, memo string) *Result {
	return o.run(ctx, "CreateTransfer", "Transaction", "", func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		from, to, err := o.tx.CreateTransfer(ctx, uow, fromAccountID, toAccountID, date, amount, memo)
		if err != nil {
			return nil, nil, nil, err
		}
		pair := [2]*domain.Transaction{from, to}
		return pair, []periodKeyYM{{date.Year(), int(date.Month()), amount.Currency()}}, nil, nil
	})
}

// UpdateTransaction wraps TransactionService.UpdateTransaction.
func (o *Orchestrator) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) *Result {
	return o.run(ctx, "UpdateTransaction", "Transaction", id, func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		txn, err := o.tx.UpdateTransaction(ctx, uow, id, patch)
		if err != nil {
			return nil, nil, nil, err
		}
		return txn, []periodKeyYM{{txn.Date.Year(), int(txn.Date.Month()), txn.Amount.Currency()}}, nil, nil
	})
}

// DeleteTransaction wraps TransactionService.DeleteTransaction.
func (o *Orchestrator) DeleteTransaction(ctx context.Context, id string) *Result {
	return o.run(ctx, "DeleteTransaction", "Transaction", id, func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		txn, err := uow.Transactions().GetByID(ctx, id)
		if err != nil {
			return nil, nil, nil, err
		}
		year, month, currency := txn.Date.Year(), int(txn.Date.Month()), txn.Amount.Currency()
		if err := o.tx.DeleteTransaction(ctx, uow, id); err != nil {
			return nil, nil, nil, err
		}
		return nil, []periodKeyYM{{year, month, currency}}, nil, nil
	})
}

// MarkCleared wraps TransactionService.MarkCleared.
func (o *Orchestrator) MarkCleared(ctx context.Context, id string) *Result {
	return o.run(ctx, "MarkCleared", "Transaction", id, func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		txn, err := o.tx.MarkCleared(ctx, uow, id)
		if err != nil {
			return nil, nil, nil, err
		}
		return txn, []periodKeyYM{{txn.Date.Year(), int(txn.Date.Month()), txn.Amount.Currency()}}, nil, nil
	})
}

// MarkUncleared wraps TransactionService.MarkUncleared.
func (o *Orchestrator) MarkUncleared(ctx context.Context, id string) *Result {
	return o.run(ctx, "MarkUncleared", "Transaction", id, func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		txn, err := o.tx.MarkUncleared(ctx, uow, id)
		if err != nil {
			return nil, nil, nil, err
		}
		return txn, []periodKeyYM{{txn.Date.Year(), int(txn.Date.Month()), txn.Amount.Currency()}}, nil, nil
	})
}

// AssignToEnvelope wraps TransactionService.AssignToEnvelope.
func (o *Orchestrator) AssignToEnvelope(ctx context.Context, txID, envelopeID string) *Result {
	return o.run(ctx, "AssignToEnvelope", "Transaction", txID, func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		txn, err := o.tx.AssignToEnvelope(ctx, uow, txID, envelopeID)
		if err != nil {
			return nil, nil, nil, err
		}
		return txn, []periodKeyYM{{txn.Date.Year(), int(txn.Date.Month()), txn.Amount.Currency()}}, nil, nil
	})
}

// SetAllocation wraps AllocationService.SetAllocation.
func (o *Orchestrator) SetAllocation(ctx context.Context, envelopeID string, amount money.Money, year, month int) *Result {
	return o.run(ctx, "SetAllocation", "EnvelopeAllocation", envelopeID, func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		before, _, err := o.alloc.loadOrCreateAllocation(ctx, uow, envelopeID, year, month)
		if err != nil {
			return nil, nil, nil, err
		}
		beforeAllocated := before.Allocated
		alloc, err := o.alloc.SetAllocation(ctx, uow, envelopeID, amount, year, month)
		if err != nil {
			return nil, nil, nil, err
		}
		change := AllocationChange{EnvelopeID: envelopeID, BeforeAllocated: beforeAllocated, AfterAllocated: alloc.Allocated}
		return alloc, []periodKeyYM{{year, month, amount.Currency()}}, []AllocationChange{change}, nil
	})
}

// AdjustAllocation wraps AllocationService.AdjustAllocation.
func (o *Orchestrator) AdjustAllocation(ctx context.Context, envelopeID string, delta money.Money, year, month int) *Result {
	return o.run(ctx, "AdjustAllocation", "EnvelopeAllocation", envelopeID, func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		before, _, err := o.alloc.loadOrCreateAllocation(ctx, uow, envelopeID, year, month)
		if err != nil {
			return nil, nil, nil, err
		}
		beforeAllocated := before.Allocated
		alloc, err := o.alloc.AdjustAllocation(ctx, uow, envelopeID, delta, year, month)
		if err != nil {
			return nil, nil, nil, err
		}
		change := AllocationChange{EnvelopeID: envelopeID, BeforeAllocated: beforeAllocated, AfterAllocated: alloc.Allocated}
		return alloc, []periodKeyYM{{year, month, delta.Currency()}}, []AllocationChange{change}, nil
	})
}

// Move wraps AllocationService.Move.
func (o *Orchestrator) Move(ctx context.Context, fromEnvelopeID, toEnvelopeID string, amount money.Money, year, month int) *Result {
	return o.run(ctx, "MoveAllocation", "EnvelopeAllocation", fromEnvelopeID, func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		before, _, err := o.alloc.loadOrCreateAllocation(ctx, uow, fromEnvelopeID, year, month)
		if err != nil {
			return nil, nil, nil, err
		}
		beforeFrom := before.Allocated
		toBefore, _, err := o.alloc.loadOrCreateAllocation(ctx, uow, toEnvelopeID, year, month)
		if err != nil {
			return nil, nil, nil, err
		}
		beforeTo := toBefore.Allocated

		if err := o.alloc.Move(ctx, uow, fromEnvelopeID, toEnvelopeID, amount, year, month); err != nil {
			return nil, nil, nil, err
		}

		fromAfter, _, err := o.alloc.loadOrCreateAllocation(ctx, uow, fromEnvelopeID, year, month)
		if err != nil {
			return nil, nil, nil, err
		}
		toAfter, _, err := o.alloc.loadOrCreateAllocation(ctx, uow, toEnvelopeID, year, month)
		if err != nil {
			return nil, nil, nil, err
		}
		changes := []AllocationChange{
			{EnvelopeID: fromEnvelopeID, BeforeAllocated: beforeFrom, AfterAllocated: fromAfter.Allocated},
			{EnvelopeID: toEnvelopeID, BeforeAllocated: beforeTo, AfterAllocated: toAfter.Allocated},
		}
		return nil, []periodKeyYM{{year, month, amount.Currency()}}, changes, nil
	})
}

// SetGoal wraps AllocationService.SetGoal.
func (o *Orchestrator) SetGoal(ctx context.Context, envelopeID string, amount money.Money, targetDate *time.Time) *Result {
	return o.run(ctx, "SetGoal", "Envelope", envelopeID, func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		env, err := o.alloc.SetGoal(ctx, uow, envelopeID, amount, targetDate)
		if err != nil {
			return nil, nil, nil, err
		}
		return env, nil, nil, nil
	})
}

// AutoAssignToGoals wraps AllocationService.AutoAssignToGoals.
func (o *Orchestrator) AutoAssignToGoals(ctx context.Context, mode AutoAssignMode, year, month int) *Result {
	return o.run(ctx, "AutoAssignToGoals", "BudgetPeriod", fmt.Sprintf("%04d-%02d", year, month), func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		before := map[string]money.Money{}
		envelopes, err := uow.Envelopes().GetAll(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		period, err := EnsurePeriod(ctx, uow, year, month, "USD")
		if err != nil {
			return nil, nil, nil, err
		}
		for _, e := range envelopes {
			if !e.IsActive || !e.HasGoal() {
				continue
			}
			alloc, err := uow.Allocations().ByEnvelopeAndPeriod(ctx, e.ID, period.ID)
			if err == nil && alloc != nil {
				before[e.ID] = alloc.Allocated
			} else {
				before[e.ID] = money.Zero(e.GoalAmount.Currency())
			}
		}

		updated, err := o.alloc.AutoAssignToGoals(ctx, uow, mode, year, month)
		if err != nil {
			return nil, nil, nil, err
		}
		changes := make([]AllocationChange, 0, len(updated))
		for _, a := range updated {
			changes = append(changes, AllocationChange{EnvelopeID: a.EnvelopeID, BeforeAllocated: before[a.EnvelopeID], AfterAllocated: a.Allocated})
		}
		return updated, []periodKeyYM{{year, month, "USD"}}, changes, nil
	})
}

// Rollover wraps AllocationService.Rollover.
func (o *Orchestrator) Rollover(ctx context.Context, year, month int) *Result {
	return o.run(ctx, "Rollover", "BudgetPeriod", fmt.Sprintf("%04d-%02d", year, month), func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		if err := o.alloc.Rollover(ctx, uow, year, month); err != nil {
			return nil, nil, nil, err
		}
		// Rollover already closes the source period; recalculating it again
		// would hit the closed-period guard, so no period keys are reported
		// (and no snapshot is read back); the closed period itself is the
		// result's value.
		period, err := uow.BudgetPeriods().ByYearMonth(ctx, year, month)
		if err != nil {
			return nil, nil, nil, err
		}
		return period, nil, nil, nil
	})
}

// Reconcile wraps ReconciliationService.Reconcile.
func (o *Orchestrator) Reconcile(ctx context.Context, in ReconcileInput) *Result {
	return o.run(ctx, "Reconcile", "Account", in.AccountID, func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		result, err := o.reconcile.Reconcile(ctx, uow, in)
		if err != nil {
			return nil, nil, nil, err
		}
		return result, []periodKeyYM{{in.StatementDate.Year(), int(in.StatementDate.Month()), in.StatementEndingBalance.Currency()}}, nil, nil
	})
}

// PreviewCSVImport classifies rows against the store's current state
// without persisting anything: it begins a unit of work purely to read
// existing fingerprints, then always rolls it back (spec §4.G's preview
// phase is read-only).
func (o *Orchestrator) PreviewCSVImport(ctx context.Context, accountID, currency string, r io.Reader) (*PreviewResult, error) {
	uow, err := o.factory.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Rollback(ctx)
	return o.csv.Preview(ctx, uow, accountID, currency, r)
}

// CommitCSVImport wraps CSVImportService.Commit.
func (o *Orchestrator) CommitCSVImport(ctx context.Context, accountID string, rows []ConfirmedRow) *Result {
	return o.run(ctx, "CommitCSVImport", "Account", accountID, func(uow repository.UnitOfWork) (interface{}, []periodKeyYM, []AllocationChange, error) {
		result, err := o.csv.Commit(ctx, uow, accountID, rows)
		if err != nil {
			return nil, nil, nil, err
		}
		// csv.Commit already recalculated every impacted period itself
		// (rows can span many months); nothing further for run() to redo.
		return result, nil, nil, nil
	})
}
