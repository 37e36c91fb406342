package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
)

func usd(s string) money.Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return money.MustNew(d, "USD")
}

func TestNewOutflowStoresNegativeAmount(t *testing.T) {
	tx, err := NewOutflow("acct-1", time.Now(), usd("25.00"), "Coffee Shop", nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tx.Amount.IsNegative() {
		t.Fatalf("expected negative stored amount, got %s", tx.Amount)
	}
	if !tx.Amount.Abs().Equal(usd("25.00")) {
		t.Fatalf("expected magnitude 25.00, got %s", tx.Amount.Abs())
	}
}

func TestNewInflowStoresPositiveAmount(t *testing.T) {
	tx, err := NewInflow("acct-1", time.Now(), usd("100.00"), "Employer", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !tx.Amount.IsPositive() {
		t.Fatalf("expected positive stored amount, got %s", tx.Amount)
	}
}

func TestNewTransferLegRejectsSameAccount(t *testing.T) {
	if _, err := NewTransferLeg("acct-1", "acct-1", time.Now(), usd("-10.00"), ""); err == nil {
		t.Fatal("expected same-account transfer to be rejected")
	}
}

func TestMarkReconciledImpliesCleared(t *testing.T) {
	tx, _ := NewOutflow("acct-1", time.Now(), usd("5.00"), "Cafe", nil, "")
	tx.MarkReconciled()
	if !tx.IsCleared || !tx.IsReconciled {
		t.Fatal("expected reconciled transaction to also be cleared")
	}
}

func TestReconciledBlocksEdits(t *testing.T) {
	tx, _ := NewOutflow("acct-1", time.Now(), usd("5.00"), "Cafe", nil, "")
	tx.MarkReconciled()

	if err := tx.SetAmount(usd("6.00")); err == nil {
		t.Error("expected SetAmount to fail on reconciled transaction")
	}
	if err := tx.SetPayee("Other"); err == nil {
		t.Error("expected SetPayee to fail on reconciled transaction")
	}
	if err := tx.SetDate(time.Now().Add(time.Hour)); err == nil {
		t.Error("expected SetDate to fail on reconciled transaction")
	}
	env := "env-1"
	if err := tx.AssignEnvelope(env); err == nil {
		t.Error("expected AssignEnvelope to fail on reconciled transaction")
	}
	if err := tx.SoftDelete(); err == nil {
		t.Error("expected SoftDelete to fail on reconciled transaction")
	}
	if err := tx.MarkUncleared(); err == nil {
		t.Error("expected MarkUncleared to fail on reconciled transaction")
	}
}

func TestAssignEnvelopeRejectsTransfers(t *testing.T) {
	tx, _ := NewTransferLeg("acct-1", "acct-2", time.Now(), usd("-10.00"), "")
	if err := tx.AssignEnvelope("env-1"); err == nil {
		t.Fatal("expected transfers to reject envelope assignment")
	}
}

func TestMarkClearedThenReconciledStateMachine(t *testing.T) {
	tx, _ := NewOutflow("acct-1", time.Now(), usd("5.00"), "Cafe", nil, "")
	if tx.IsCleared || tx.IsReconciled {
		t.Fatal("expected fresh transaction to be uncleared and unreconciled")
	}
	tx.MarkCleared()
	if !tx.IsCleared || tx.IsReconciled {
		t.Fatal("expected cleared, not yet reconciled")
	}
	if err := tx.MarkUncleared(); err != nil {
		t.Fatalf("unexpected error unclearing a non-reconciled transaction: %v", err)
	}
	if tx.IsCleared {
		t.Fatal("expected MarkUncleared to clear the cleared flag")
	}
}

func TestSoftDeleteDoesNotUnlinkCounterpart(t *testing.T) {
	tx, _ := NewTransferLeg("acct-1", "acct-2", time.Now(), usd("-10.00"), "")
	tx.Link("counterpart-1")
	if err := tx.SoftDelete(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.LinkedTransactionID == nil || *tx.LinkedTransactionID != "counterpart-1" {
		t.Fatal("expected soft-delete to preserve the link per spec §9 open question")
	}
}

func TestNewOutflowRejectsZeroAmount(t *testing.T) {
	if _, err := NewOutflow("acct-1", time.Now(), money.Zero("USD"), "Cafe", nil, ""); err == nil {
		t.Fatal("expected zero amount to be rejected")
	}
}

func TestNewOutflowRejectsBlankPayee(t *testing.T) {
	_, err := NewOutflow("acct-1", time.Now(), usd("5.00"), "", nil, "")
	if err == nil {
		t.Fatal("expected blank payee to be rejected")
	}
	var appErr *apperrors.AppError
	if ae, ok := err.(*apperrors.AppError); !ok || ae.Code != apperrors.Validation {
		t.Fatalf("expected VALIDATION error, got %v (%T)", err, appErr)
	}
}
