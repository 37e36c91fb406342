package engine

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/testutil"
)

func mustDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func TestRecalculateDerivesIncomeAndSpent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)
	envelope := testutil.CreateTestEnvelope(t, uow)
	testutil.CreateTestBudgetPeriod(t, uow, 2026, 3)

	txSvc := NewTransactionService()
	if _, err := txSvc.CreateInflow(ctx, uow, account.ID, mustDate(2026, 3, 1), testutil.Money(500), "Employer", ""); err != nil {
		t.Fatalf("create inflow: %v", err)
	}
	envID := envelope.ID
	if _, err := txSvc.CreateOutflow(ctx, uow, account.ID, mustDate(2026, 3, 2), testutil.Money(120), "Grocer", &envID, nil, ""); err != nil {
		t.Fatalf("create outflow: %v", err)
	}

	allocSvc := NewAllocationService(NewRecalculationService())
	if _, err := allocSvc.SetAllocation(ctx, uow, envelope.ID, testutil.Money(150), 2026, 3); err != nil {
		t.Fatalf("set allocation: %v", err)
	}

	recalc := NewRecalculationService()
	if err := recalc.Recalculate(ctx, uow, 2026, 3); err != nil {
		t.Fatalf("recalculate: %v", err)
	}

	updated, err := uow.BudgetPeriods().ByYearMonth(ctx, 2026, 3)
	if err != nil {
		t.Fatalf("reload period: %v", err)
	}
	if updated.TotalIncome.Amount().String() != "500" {
		t.Fatalf("totalIncome = %s, want 500", updated.TotalIncome.Amount())
	}
	if updated.TotalSpent.Amount().String() != "120" {
		t.Fatalf("totalSpent = %s, want 120", updated.TotalSpent.Amount())
	}
	if updated.TotalAllocated.Amount().String() != "150" {
		t.Fatalf("totalAllocated = %s, want 150", updated.TotalAllocated.Amount())
	}
}

func TestRecalculateRejectsClosedPeriod(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	period := testutil.CreateTestBudgetPeriod(t, uow, 2026, 4)
	if err := period.Close(); err != nil {
		t.Fatalf("close period: %v", err)
	}
	if err := uow.BudgetPeriods().Update(ctx, period); err != nil {
		t.Fatalf("update period: %v", err)
	}

	recalc := NewRecalculationService()
	err := recalc.Recalculate(ctx, uow, 2026, 4)
	testutil.AssertAppError(t, err, apperrors.InvalidOperation)
}
