package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	"github.com/mcp-tool-shop-org/budgetwise/internal/testutil"
)

func TestPayeeByNameIsCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	payee, err := domain.NewPayee("Whole Foods")
	if err != nil {
		t.Fatalf("build payee: %v", err)
	}
	if err := uow.Payees().Add(ctx, payee); err != nil {
		t.Fatalf("add payee: %v", err)
	}

	found, err := uow.Payees().ByName(ctx, "whole foods")
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if found == nil || found.ID != payee.ID {
		t.Fatalf("expected case-insensitive lookup to find %s", payee.ID)
	}

	missing, err := uow.Payees().ByName(ctx, "Trader Joe's")
	if err != nil {
		t.Fatalf("by name (missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown payee, got %+v", missing)
	}
}

func TestPayeeSearchOrdersByTransactionCountThenName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := testutil.NewUnitOfWork(t, db)
	ctx := context.Background()

	frequent, err := domain.NewPayee("Grocer Frequent")
	if err != nil {
		t.Fatalf("build payee: %v", err)
	}
	frequent.RecordUsage(time.Now().UTC())
	frequent.RecordUsage(time.Now().UTC())
	rare, err := domain.NewPayee("Grocer Rare")
	if err != nil {
		t.Fatalf("build payee: %v", err)
	}
	rare.RecordUsage(time.Now().UTC())

	if err := uow.Payees().Add(ctx, rare); err != nil {
		t.Fatalf("add rare: %v", err)
	}
	if err := uow.Payees().Add(ctx, frequent); err != nil {
		t.Fatalf("add frequent: %v", err)
	}

	results, err := uow.Payees().Search(ctx, "grocer", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].ID != frequent.ID {
		t.Fatalf("expected the more frequently used payee first, got %s", results[0].Name)
	}
}
