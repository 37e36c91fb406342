package engine

import (
	"context"
	"testing"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/testutil"
)

func TestCreateOutflowRejectsEnvelopeAndSplitsTogether(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)
	envelope := testutil.CreateTestEnvelope(t, uow)
	envID := envelope.ID

	svc := NewTransactionService()
	_, err := svc.CreateOutflow(ctx, uow, account.ID, mustDate(2026, 5, 1), testutil.Money(50), "Grocer", &envID,
		[]SplitInput{{EnvelopeID: envelope.ID, Amount: testutil.Money(50)}}, "")
	testutil.AssertAppError(t, err, apperrors.Validation)
}

func TestCreateOutflowSplitSumMustMatchAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)
	envelope := testutil.CreateTestEnvelope(t, uow)

	svc := NewTransactionService()
	_, err := svc.CreateOutflow(ctx, uow, account.ID, mustDate(2026, 5, 1), testutil.Money(100), "Grocer", nil,
		[]SplitInput{{EnvelopeID: envelope.ID, Amount: testutil.Money(40)}}, "")
	testutil.AssertAppError(t, err, apperrors.InvalidOperation)
}

func TestCreateOutflowRefreshesAccountBalances(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)
	envelope := testutil.CreateTestEnvelope(t, uow)
	envID := envelope.ID

	svc := NewTransactionService()
	if _, err := svc.CreateInflow(ctx, uow, account.ID, mustDate(2026, 5, 1), testutil.Money(200), "Employer", ""); err != nil {
		t.Fatalf("create inflow: %v", err)
	}
	if _, err := svc.CreateOutflow(ctx, uow, account.ID, mustDate(2026, 5, 2), testutil.Money(30), "Grocer", &envID, nil, ""); err != nil {
		t.Fatalf("create outflow: %v", err)
	}

	updated, err := uow.Accounts().GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	total, err := uow.Accounts().AccountBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("account balance: %v", err)
	}
	if total.Amount().String() != "170" {
		t.Fatalf("balance = %s, want 170", total.Amount())
	}
	_ = updated
}

func TestCreateTransferProducesLinkedLegs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	from := testutil.CreateTestAccount(t, uow)
	to := testutil.CreateTestAccount(t, uow)

	svc := NewTransactionService()
	fromTxn, toTxn, err := svc.CreateTransfer(ctx, uow, from.ID, to.ID, mustDate(2026, 5, 3), testutil.Money(75), "move")
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	if fromTxn.LinkedTransactionID == nil || *fromTxn.LinkedTransactionID != toTxn.ID {
		t.Fatalf("fromTxn not linked to toTxn")
	}
	if toTxn.LinkedTransactionID == nil || *toTxn.LinkedTransactionID != fromTxn.ID {
		t.Fatalf("toTxn not linked to fromTxn")
	}
	if !fromTxn.Amount.IsNegative() {
		t.Fatalf("fromTxn amount should be negative")
	}
	if !toTxn.Amount.IsPositive() {
		t.Fatalf("toTxn amount should be positive")
	}
}

func TestDeleteTransactionCascadesToLinkedTransfer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	from := testutil.CreateTestAccount(t, uow)
	to := testutil.CreateTestAccount(t, uow)

	svc := NewTransactionService()
	fromTxn, toTxn, err := svc.CreateTransfer(ctx, uow, from.ID, to.ID, mustDate(2026, 5, 3), testutil.Money(75), "move")
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, uow, fromTxn.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}

	reloaded, err := uow.Transactions().GetByID(ctx, toTxn.ID)
	if err != nil {
		t.Fatalf("reload linked transaction: %v", err)
	}
	if !reloaded.IsDeleted {
		t.Fatalf("linked transfer leg should be soft-deleted")
	}
}

func TestMarkUnclearedRejectedAfterReconciled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)
	svc := NewTransactionService()
	txn, err := svc.CreateInflow(ctx, uow, account.ID, mustDate(2026, 5, 1), testutil.Money(10), "Employer", "")
	if err != nil {
		t.Fatalf("create inflow: %v", err)
	}

	txn.MarkCleared()
	txn.MarkReconciled()
	if err := uow.Transactions().Update(ctx, txn); err != nil {
		t.Fatalf("persist reconciled state: %v", err)
	}

	_, err = svc.MarkUncleared(ctx, uow, txn.ID)
	testutil.AssertAppError(t, err, apperrors.InvalidOperation)
}
