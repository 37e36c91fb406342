package store_test

import (
	"context"
	"testing"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	"github.com/mcp-tool-shop-org/budgetwise/internal/testutil"
)

func TestAccountRepoRoundTripsThroughGormRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account, err := domain.NewAccount("Checking", domain.AccountTypeChecking, "USD", true)
	if err != nil {
		t.Fatalf("build account: %v", err)
	}
	if err := uow.Accounts().Add(ctx, account); err != nil {
		t.Fatalf("add account: %v", err)
	}

	reloaded, err := uow.Accounts().GetByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if reloaded.Name != "Checking" || reloaded.Type != domain.AccountTypeChecking {
		t.Fatalf("reloaded account = %+v, want Checking/checking", reloaded)
	}

	exists, err := uow.Accounts().ExistsByID(ctx, account.ID)
	if err != nil || !exists {
		t.Fatalf("existsByID = %v, %v; want true, nil", exists, err)
	}

	all, err := uow.Accounts().GetAll(ctx)
	if err != nil {
		t.Fatalf("get all: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("getAll length = %d, want 1", len(all))
	}

	if err := uow.Accounts().Delete(ctx, account.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := uow.Accounts().GetByID(ctx, account.ID); err == nil {
		t.Fatalf("expected error reading deleted account")
	}
}

func TestAccountBalanceSumsClearedAndUnclearedTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)

	cleared := testutil.CreateTestInflow(t, uow, account.ID, testutil.Money(100))
	cleared.MarkCleared()
	if err := uow.Transactions().Update(ctx, cleared); err != nil {
		t.Fatalf("update cleared: %v", err)
	}
	testutil.CreateTestInflow(t, uow, account.ID, testutil.Money(25))

	total, err := uow.Accounts().AccountBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("account balance: %v", err)
	}
	if total.Amount().String() != "125" {
		t.Fatalf("balance = %s, want 125", total.Amount())
	}

	clearedTotal, err := uow.Accounts().AccountClearedBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("cleared balance: %v", err)
	}
	if clearedTotal.Amount().String() != "100" {
		t.Fatalf("clearedBalance = %s, want 100", clearedTotal.Amount())
	}
}

func TestAccountBalanceOfEmptyAccountIsZeroInAccountCurrency(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	account := testutil.CreateTestAccount(t, uow)
	balance, err := uow.Accounts().AccountBalance(ctx, account.ID)
	if err != nil {
		t.Fatalf("account balance: %v", err)
	}
	if !balance.IsZero() || balance.Currency() != "USD" {
		t.Fatalf("balance = %s %s, want 0 USD", balance.Amount(), balance.Currency())
	}
}
