package testutil_test

import (
	"testing"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"accounts", "envelopes", "transactions", "budget_periods", "envelope_allocations", "payees", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)

	account := testutil.CreateTestAccount(t, uow)
	if account.ID == "" {
		t.Fatal("account should have a non-empty ID")
	}

	envelope := testutil.CreateTestEnvelope(t, uow)
	if envelope.ID == "" {
		t.Fatal("envelope should have a non-empty ID")
	}

	period := testutil.CreateTestBudgetPeriod(t, uow, 2026, 8)
	if period.Year != 2026 || period.Month != 8 {
		t.Errorf("expected 2026-08, got %d-%d", period.Year, period.Month)
	}

	txn := testutil.CreateTestInflow(t, uow, account.ID, testutil.Money(50))
	if !txn.Amount.Equal(testutil.Money(50)) {
		t.Errorf("expected amount 50, got %s", txn.Amount)
	}
}

func TestAssertAppError(t *testing.T) {
	err := apperrors.WithMessage(apperrors.ErrAccountNotFound, "custom message")
	testutil.AssertAppError(t, err, apperrors.Validation)
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
