package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestAccount creates and persists an on-budget checking account
// with a zero USD balance.
func CreateTestAccount(t *testing.T, uow repository.UnitOfWork) *domain.Account {
	t.Helper()
	account, err := domain.NewAccount(fmt.Sprintf("Test Account %d", nextID()), domain.AccountTypeChecking, "USD", true)
	if err != nil {
		t.Fatalf("failed to build test account: %v", err)
	}
	if err := uow.Accounts().Add(context.Background(), account); err != nil {
		t.Fatalf("failed to persist test account: %v", err)
	}
	return account
}

// CreateTestEnvelope creates and persists an active envelope.
func CreateTestEnvelope(t *testing.T, uow repository.UnitOfWork) *domain.Envelope {
	t.Helper()
	env, err := domain.NewEnvelope(fmt.Sprintf("Test Envelope %d", nextID()), "Everyday", "")
	if err != nil {
		t.Fatalf("failed to build test envelope: %v", err)
	}
	if err := uow.Envelopes().Add(context.Background(), env); err != nil {
		t.Fatalf("failed to persist test envelope: %v", err)
	}
	return env
}

// Money builds a USD money.Money value from a float, for test readability.
func Money(amount float64) money.Money {
	m, err := money.New(decimal.NewFromFloat(amount), "USD")
	if err != nil {
		panic(err)
	}
	return m
}

// CreateTestBudgetPeriod creates and persists the budget period for
// (year, month).
func CreateTestBudgetPeriod(t *testing.T, uow repository.UnitOfWork, year, month int) *domain.BudgetPeriod {
	t.Helper()
	period, err := domain.NewBudgetPeriod(year, month, "USD")
	if err != nil {
		t.Fatalf("failed to build test budget period: %v", err)
	}
	if err := uow.BudgetPeriods().Add(context.Background(), period); err != nil {
		t.Fatalf("failed to persist test budget period: %v", err)
	}
	return period
}

// CreateTestInflow creates and persists an inflow transaction on account.
func CreateTestInflow(t *testing.T, uow repository.UnitOfWork, accountID string, amount money.Money) *domain.Transaction {
	t.Helper()
	txn, err := domain.NewInflow(accountID, time.Now().UTC(), amount, "Test Payee", "")
	if err != nil {
		t.Fatalf("failed to build test inflow: %v", err)
	}
	if err := uow.Transactions().Add(context.Background(), txn); err != nil {
		t.Fatalf("failed to persist test inflow: %v", err)
	}
	return txn
}
