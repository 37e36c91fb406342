package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/testutil"
)

func TestTransactionDeleteIsPersistedAsSoftDeleteOnlyThroughDomain(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)
	txn := testutil.CreateTestInflow(t, uow, account.ID, testutil.Money(40))
	if err := txn.SoftDelete(); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if err := uow.Transactions().Update(ctx, txn); err != nil {
		t.Fatalf("update soft-deleted: %v", err)
	}

	byAccount, err := uow.Transactions().ByAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("by account: %v", err)
	}
	if len(byAccount) != 0 {
		t.Fatalf("expected soft-deleted transaction excluded from ByAccount, got %d", len(byAccount))
	}

	reloaded, err := uow.Transactions().GetByID(ctx, txn.ID)
	if err != nil {
		t.Fatalf("get by id still works for a soft-deleted row: %v", err)
	}
	if !reloaded.IsDeleted {
		t.Fatalf("expected reloaded transaction to report deleted")
	}
}

func TestTransactionTotalsForRangeSeparatesIncomeAndSpent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)
	testutil.CreateTestInflow(t, uow, account.ID, testutil.Money(300))
	outflow, err := domain.NewOutflow(account.ID, time.Now().UTC(), testutil.Money(50), "Grocer", nil, "")
	if err != nil {
		t.Fatalf("build outflow: %v", err)
	}
	if err := uow.Transactions().Add(ctx, outflow); err != nil {
		t.Fatalf("add outflow: %v", err)
	}

	rng := money.DateRange{Start: time.Now().UTC().AddDate(0, 0, -1), End: time.Now().UTC().AddDate(0, 0, 1)}
	income, spent, err := uow.Transactions().TotalsForRange(ctx, rng, "USD")
	if err != nil {
		t.Fatalf("totals for range: %v", err)
	}
	if income.Amount().String() != "300" {
		t.Fatalf("income = %s, want 300", income.Amount())
	}
	if spent.Amount().String() != "50" {
		t.Fatalf("spent = %s, want 50", spent.Amount())
	}
}

func TestTransactionEnvelopeSpentInRangeIncludesSplitLines(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)
	envelope := testutil.CreateTestEnvelope(t, uow)

	now := time.Now().UTC()
	outflow, err := domain.NewOutflow(account.ID, now, testutil.Money(100), "Store", nil, "")
	if err != nil {
		t.Fatalf("build outflow: %v", err)
	}
	if err := uow.Transactions().Add(ctx, outflow); err != nil {
		t.Fatalf("add outflow: %v", err)
	}
	split, err := domain.NewSplitLine(outflow.ID, envelope.ID, testutil.Money(100), 0)
	if err != nil {
		t.Fatalf("build split: %v", err)
	}
	if err := uow.Splits().Add(ctx, split); err != nil {
		t.Fatalf("add split: %v", err)
	}

	rng := money.DateRange{Start: now.AddDate(0, 0, -1), End: now.AddDate(0, 0, 1)}
	spent, err := uow.Transactions().EnvelopeSpentInRange(ctx, envelope.ID, rng, "USD")
	if err != nil {
		t.Fatalf("envelope spent in range: %v", err)
	}
	if spent.Amount().String() != "100" {
		t.Fatalf("spent = %s, want 100", spent.Amount())
	}
}

func TestTransactionExistingFingerprintsIncludesOnlyMatchingAccountAndRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)
	other := testutil.CreateTestAccount(t, uow)
	now := time.Now().UTC()

	inAccount, err := domain.NewOutflow(account.ID, now, testutil.Money(10), "Cafe", nil, "")
	if err != nil {
		t.Fatalf("build in-account outflow: %v", err)
	}
	if err := uow.Transactions().Add(ctx, inAccount); err != nil {
		t.Fatalf("add in-account outflow: %v", err)
	}
	inOther, err := domain.NewOutflow(other.ID, now, testutil.Money(10), "Cafe", nil, "")
	if err != nil {
		t.Fatalf("build other-account outflow: %v", err)
	}
	if err := uow.Transactions().Add(ctx, inOther); err != nil {
		t.Fatalf("add other-account outflow: %v", err)
	}

	rng := money.DateRange{Start: now.AddDate(0, 0, -1), End: now.AddDate(0, 0, 1)}
	fingerprints, err := uow.Transactions().ExistingFingerprints(ctx, account.ID, rng)
	if err != nil {
		t.Fatalf("existing fingerprints: %v", err)
	}
	if len(fingerprints) != 1 {
		t.Fatalf("fingerprints = %d, want 1 (scoped to account)", len(fingerprints))
	}
}
