// Package engine is the Budget Engine: the services that mutate accounts,
// transactions, allocations, and periods under invariant-preserving rules,
// and the orchestrator that wraps every mutating call in a unit of work
// (spec §4.D-I). Grounded in the reference's services package for
// constructor-injected, interface-typed dependencies and early-return
// error handling.
package engine

import (
	"context"
	"time"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
)

// RecalculationService re-derives period totals and per-allocation spent
// from raw transactions (spec §4.D). It is the only writer of
// BudgetPeriod.totalIncome/totalSpent/totalAllocated and
// EnvelopeAllocation.spent.
type RecalculationService struct{}

func NewRecalculationService() *RecalculationService {
	return &RecalculationService{}
}

// Recalculate re-derives and persists the totals for (year, month) within
// uow. A closed period rejects recalculation; rollover handles closure
// ordering (spec §4.D).
func (s *RecalculationService) Recalculate(ctx context.Context, uow repository.UnitOfWork, year, month int) error {
	period, err := uow.BudgetPeriods().ByYearMonth(ctx, year, month)
	if err != nil {
		return err
	}
	if period.IsClosed {
		return apperrors.ErrClosedPeriod
	}

	rng := money.ForMonth(year, time.Month(month))
	currency := period.TotalIncome.Currency()

	income, spentAbs, err := uow.Transactions().TotalsForRange(ctx, rng, currency)
	if err != nil {
		return err
	}

	allocations, err := uow.Allocations().ByPeriod(ctx, period.ID)
	if err != nil {
		return err
	}
	totalAllocated := money.Zero(currency)
	for _, alloc := range allocations {
		spent, err := uow.Transactions().EnvelopeSpentInRange(ctx, alloc.EnvelopeID, rng, currency)
		if err != nil {
			return err
		}
		alloc.SetSpent(spent)
		if err := uow.Allocations().Update(ctx, alloc); err != nil {
			return err
		}
		totalAllocated, err = totalAllocated.Add(alloc.Allocated)
		if err != nil {
			return err
		}
	}

	if err := period.SetDerivedTotals(income, spentAbs, totalAllocated); err != nil {
		return err
	}
	return uow.BudgetPeriods().Update(ctx, period)
}

// EnsurePeriod returns the (year, month) period, creating it in currency
// if it does not already exist.
func EnsurePeriod(ctx context.Context, uow repository.UnitOfWork, year, month int, currency string) (*domain.BudgetPeriod, error) {
	period, err := uow.BudgetPeriods().ByYearMonth(ctx, year, month)
	if err == nil {
		return period, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	p, err := domain.NewBudgetPeriod(year, month, currency)
	if err != nil {
		return nil, err
	}
	if err := uow.BudgetPeriods().Add(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func isNotFound(err error) bool {
	ae, ok := err.(*apperrors.AppError)
	return ok && ae == apperrors.ErrBudgetPeriodNotFound
}
