package engine

import (
	"context"
	"time"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
)

// ReconciliationService matches a set of cleared transactions against a
// bank statement's ending balance, optionally inserting a balancing
// adjustment (spec §4.H).
type ReconciliationService struct {
	txService *TransactionService
}

func NewReconciliationService(txService *TransactionService) *ReconciliationService {
	return &ReconciliationService{txService: txService}
}

// ReconcileInput carries the reconciliation call's parameters.
type ReconcileInput struct {
	AccountID               string
	StatementDate           time.Time
	StatementEndingBalance  money.Money
	TransactionIDs          []string
	CreateAdjustmentIfNeeded bool
}

// ReconcileResult is the reconciliation call's outcome (spec §4.H).
type ReconcileResult struct {
	StatementEndingBalance     money.Money         `json:"statementEndingBalance"`
	ClearedBalance             money.Money         `json:"clearedBalance"`
	Difference                 money.Money         `json:"difference"`
	ReconciledTransactionCount int                 `json:"reconciledTransactionCount"`
	AdjustmentTransaction      *domain.Transaction `json:"adjustmentTransaction,omitempty"`
}

// Reconcile runs the reconciliation state machine end to end. Any failure
// leaves no targeted transaction's isCleared/isReconciled changed and
// account.lastReconciledAt unchanged (testable property 6) because the
// caller (orchestrator) rolls the whole unit of work back on error.
func (s *ReconciliationService) Reconcile(ctx context.Context, uow repository.UnitOfWork, in ReconcileInput) (*ReconcileResult, error) {
	account, err := uow.Accounts().GetByID(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}

	targets := make([]*domain.Transaction, 0, len(in.TransactionIDs))
	for _, id := range in.TransactionIDs {
		txn, err := uow.Transactions().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if txn.AccountID != in.AccountID {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidOperation, "transaction does not belong to this account")
		}
		if txn.IsDeleted {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidOperation, "transaction is deleted")
		}
		if txn.IsReconciled {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidOperation, "transaction is already reconciled")
		}
		targets = append(targets, txn)
	}

	for _, txn := range targets {
		if !txn.IsCleared {
			txn.MarkCleared()
			if err := uow.Transactions().Update(ctx, txn); err != nil {
				return nil, err
			}
		}
	}

	clearedBalance, err := uow.Accounts().AccountClearedBalance(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}
	difference, err := in.StatementEndingBalance.Sub(clearedBalance)
	if err != nil {
		return nil, err
	}

	targetedCount := len(targets)

	var adjustment *domain.Transaction
	if !difference.IsZero() {
		if !in.CreateAdjustmentIfNeeded {
			return nil, apperrors.ErrNonZeroDiff
		}
		if difference.IsPositive() {
			adjustment, err = s.txService.CreateInflow(ctx, uow, in.AccountID, in.StatementDate, difference,
				"Reconciliation Adjustment", "Auto-created to match statement ending balance")
		} else {
			adjustment, err = s.txService.CreateOutflow(ctx, uow, in.AccountID, in.StatementDate, difference.Abs(),
				"Reconciliation Adjustment", nil, nil, "Auto-created to match statement ending balance")
		}
		if err != nil {
			return nil, err
		}
		adjustment.MarkCleared()
		if err := uow.Transactions().Update(ctx, adjustment); err != nil {
			return nil, err
		}
		clearedBalance, err = uow.Accounts().AccountClearedBalance(ctx, in.AccountID)
		if err != nil {
			return nil, err
		}
		difference, err = in.StatementEndingBalance.Sub(clearedBalance)
		if err != nil {
			return nil, err
		}
		targets = append(targets, adjustment)
	}

	for _, txn := range targets {
		txn.MarkReconciled()
		if err := uow.Transactions().Update(ctx, txn); err != nil {
			return nil, err
		}
	}

	account.MarkReconciled(in.StatementDate)
	total, err := uow.Accounts().AccountBalance(ctx, in.AccountID)
	if err != nil {
		return nil, err
	}
	uncleared, err := total.Sub(clearedBalance)
	if err != nil {
		return nil, err
	}
	if err := account.SetCachedBalances(clearedBalance, uncleared); err != nil {
		return nil, err
	}
	if err := uow.Accounts().Update(ctx, account); err != nil {
		return nil, err
	}

	return &ReconcileResult{
		StatementEndingBalance:     in.StatementEndingBalance,
		ClearedBalance:             clearedBalance,
		Difference:                 difference,
		ReconciledTransactionCount: targetedCount,
		AdjustmentTransaction:      adjustment,
	}, nil
}
