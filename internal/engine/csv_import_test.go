package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	"github.com/mcp-tool-shop-org/budgetwise/internal/testutil"
)

func TestPreviewClassifiesNewAndInvalidRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)

	csvData := "date,payee,amount\n2026-06-01,Grocer,-42.50\n2026-06-02,,10.00\n"
	svc := NewCSVImportService(NewTransactionService(), NewRecalculationService())
	result, err := svc.Preview(ctx, uow, account.ID, "USD", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if result.NewCount != 1 {
		t.Fatalf("newCount = %d, want 1", result.NewCount)
	}
	if result.InvalidCount != 1 {
		t.Fatalf("invalidCount = %d, want 1 (missing payee)", result.InvalidCount)
	}
}

func TestPreviewMarksExistingFingerprintAsDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)
	txSvc := NewTransactionService()
	if _, err := txSvc.CreateOutflow(ctx, uow, account.ID, mustDate(2026, 6, 1), testutil.Money(42.50), "Grocer", nil, nil, ""); err != nil {
		t.Fatalf("seed outflow: %v", err)
	}

	csvData := "date,payee,amount\n2026-06-01,Grocer,-42.50\n"
	svc := NewCSVImportService(txSvc, NewRecalculationService())
	result, err := svc.Preview(ctx, uow, account.ID, "USD", strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if result.DuplicateCount != 1 {
		t.Fatalf("duplicateCount = %d, want 1", result.DuplicateCount)
	}
}

func TestCommitIsIdempotentAcrossRepeatedRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)
	svc := NewCSVImportService(NewTransactionService(), NewRecalculationService())

	row := ConfirmedRow{
		Date: mustDate(2026, 6, 5), Amount: testutil.Money(-15), Payee: "Cafe",
	}
	row.Fingerprint = domain.Fingerprint(account.ID, row.Date, row.Amount, row.Payee, row.Memo)
	first, err := svc.Commit(ctx, uow, account.ID, []ConfirmedRow{row})
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if first.InsertedCount != 1 {
		t.Fatalf("first commit inserted = %d, want 1", first.InsertedCount)
	}

	second, err := svc.Commit(ctx, uow, account.ID, []ConfirmedRow{row})
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if second.InsertedCount != 0 {
		t.Fatalf("second commit inserted = %d, want 0", second.InsertedCount)
	}
	if second.SkippedDuplicateCount != 1 {
		t.Fatalf("second commit skipped = %d, want 1", second.SkippedDuplicateCount)
	}
}

func TestCommitOpensFreshMonthBeforeRecalculating(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)
	svc := NewCSVImportService(NewTransactionService(), NewRecalculationService())

	row := ConfirmedRow{
		Date: mustDate(2026, 9, 1), Amount: testutil.Money(250), Payee: "Employer", Fingerprint: "fp-fresh-month",
	}
	if _, err := svc.Commit(ctx, uow, account.ID, []ConfirmedRow{row}); err != nil {
		t.Fatalf("commit into a never-before-touched month: %v", err)
	}

	period, err := uow.BudgetPeriods().ByYearMonth(ctx, 2026, 9)
	if err != nil {
		t.Fatalf("expected the month to have been opened automatically: %v", err)
	}
	if period.TotalIncome.Amount().String() != "250" {
		t.Fatalf("totalIncome = %s, want 250 (recalculate should have run after opening the period)", period.TotalIncome.Amount())
	}
}
