package engine

import (
	"context"
	"testing"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/store"
	"github.com/mcp-tool-shop-org/budgetwise/internal/testutil"
)

func TestOrchestratorCreateInflowCommitsAndRecordsAuditEntry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ctx := context.Background()

	seed := testutil.NewUnitOfWork(t, db)
	account := testutil.CreateTestAccount(t, seed)
	if err := seed.Commit(ctx); err != nil {
		t.Fatalf("commit seed: %v", err)
	}

	orch := NewOrchestrator(store.NewFactory(db))
	result := orch.CreateInflow(ctx, account.ID, mustDate(2026, 9, 1), testutil.Money(250), "Employer", "")
	if !result.Success {
		t.Fatalf("expected success, got errors: %+v", result.Errors)
	}
	if result.Snapshot == nil {
		t.Fatalf("expected a snapshot on success")
	}
	if result.Snapshot.TotalIncome.Amount().String() != "250" {
		t.Fatalf("snapshot totalIncome = %s, want 250", result.Snapshot.TotalIncome.Amount())
	}

	var auditCount int64
	if err := db.Model(&store.AuditLogRow{}).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("audit log rows = %d, want 1", auditCount)
	}

	var txnCount int64
	if err := db.Model(&store.TransactionRow{}).Count(&txnCount).Error; err != nil {
		t.Fatalf("count transaction rows: %v", err)
	}
	if txnCount != 1 {
		t.Fatalf("transaction rows = %d, want 1", txnCount)
	}
}

func TestOrchestratorRollsBackOnValidationFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ctx := context.Background()

	seed := testutil.NewUnitOfWork(t, db)
	account := testutil.CreateTestAccount(t, seed)
	envelope := testutil.CreateTestEnvelope(t, seed)
	if err := seed.Commit(ctx); err != nil {
		t.Fatalf("commit seed: %v", err)
	}

	envID := envelope.ID
	orch := NewOrchestrator(store.NewFactory(db))
	result := orch.CreateOutflow(ctx, account.ID, mustDate(2026, 9, 2), testutil.Money(50), "Grocer", &envID,
		[]SplitInput{{EnvelopeID: envelope.ID, Amount: testutil.Money(50)}}, "")
	if result.Success {
		t.Fatalf("expected failure, got success")
	}
	if len(result.Errors) != 1 || result.Errors[0].Code != apperrors.Validation {
		t.Fatalf("errors = %+v, want one Validation error", result.Errors)
	}

	var txnCount int64
	if err := db.Model(&store.TransactionRow{}).Count(&txnCount).Error; err != nil {
		t.Fatalf("count transaction rows: %v", err)
	}
	if txnCount != 0 {
		t.Fatalf("transaction rows = %d, want 0 after rollback", txnCount)
	}
	var auditCount int64
	if err := db.Model(&store.AuditLogRow{}).Count(&auditCount).Error; err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if auditCount != 0 {
		t.Fatalf("audit log rows = %d, want 0 after rollback", auditCount)
	}
}

func TestOrchestratorCreateInflowOpensFreshMonthAutomatically(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ctx := context.Background()

	seed := testutil.NewUnitOfWork(t, db)
	account := testutil.CreateTestAccount(t, seed)
	if err := seed.Commit(ctx); err != nil {
		t.Fatalf("commit seed: %v", err)
	}

	orch := NewOrchestrator(store.NewFactory(db))
	result := orch.CreateInflow(ctx, account.ID, mustDate(2026, 10, 1), testutil.Money(100), "Employer", "")
	if !result.Success {
		t.Fatalf("expected success posting into a month with no budget period yet, got: %+v", result.Errors)
	}

	verify := testutil.NewUnitOfWork(t, db)
	period, err := verify.BudgetPeriods().ByYearMonth(ctx, 2026, 10)
	if err != nil {
		t.Fatalf("expected the period to have been created transparently: %v", err)
	}
	if period.TotalIncome.Amount().String() != "100" {
		t.Fatalf("totalIncome = %s, want 100", period.TotalIncome.Amount())
	}
}

func TestOrchestratorSetAllocationReportsBeforeAndAfter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ctx := context.Background()

	seed := testutil.NewUnitOfWork(t, db)
	envelope := testutil.CreateTestEnvelope(t, seed)
	if err := seed.Commit(ctx); err != nil {
		t.Fatalf("commit seed: %v", err)
	}

	orch := NewOrchestrator(store.NewFactory(db))
	result := orch.SetAllocation(ctx, envelope.ID, testutil.Money(75), 2026, 11)
	if !result.Success {
		t.Fatalf("expected success, got: %+v", result.Errors)
	}
	if len(result.AllocationChanges) != 1 {
		t.Fatalf("allocationChanges = %d, want 1", len(result.AllocationChanges))
	}
	change := result.AllocationChanges[0]
	if !change.BeforeAllocated.IsZero() {
		t.Fatalf("beforeAllocated = %s, want 0", change.BeforeAllocated.Amount())
	}
	if change.AfterAllocated.Amount().String() != "75" {
		t.Fatalf("afterAllocated = %s, want 75", change.AfterAllocated.Amount())
	}
	if result.Snapshot.TotalAllocated.Amount().String() != "75" {
		t.Fatalf("snapshot totalAllocated = %s, want 75", result.Snapshot.TotalAllocated.Amount())
	}
}

func TestOrchestratorEndToEndIncomeAllocateSpend(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ctx := context.Background()

	seed := testutil.NewUnitOfWork(t, db)
	account := testutil.CreateTestAccount(t, seed)
	envelope := testutil.CreateTestEnvelope(t, seed)
	if err := seed.Commit(ctx); err != nil {
		t.Fatalf("commit seed: %v", err)
	}

	orch := NewOrchestrator(store.NewFactory(db))

	if res := orch.CreateInflow(ctx, account.ID, mustDate(2026, 12, 1), testutil.Money(1000), "Employer", ""); !res.Success {
		t.Fatalf("create inflow: %+v", res.Errors)
	}
	if res := orch.SetAllocation(ctx, envelope.ID, testutil.Money(400), 2026, 12); !res.Success {
		t.Fatalf("set allocation: %+v", res.Errors)
	}

	envID := envelope.ID
	outflow := orch.CreateOutflow(ctx, account.ID, mustDate(2026, 12, 5), testutil.Money(120), "Grocer", &envID, nil, "")
	if !outflow.Success {
		t.Fatalf("create outflow: %+v", outflow.Errors)
	}
	if outflow.Snapshot.TotalSpent.Amount().String() != "120" {
		t.Fatalf("totalSpent = %s, want 120", outflow.Snapshot.TotalSpent.Amount())
	}

	if outflow.Snapshot.ReadyToAssign.Amount().String() != "600" {
		t.Fatalf("readyToAssign = %s, want 600", outflow.Snapshot.ReadyToAssign.Amount())
	}
}
