package engine

import (
	"sort"
	"strings"
	"time"

	"context"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
)

// AllocationService assigns and moves money between envelopes, manages
// goals, and runs month-end rollover (spec §4.F).
type AllocationService struct {
	recalc *RecalculationService
}

func NewAllocationService(recalc *RecalculationService) *AllocationService {
	return &AllocationService{recalc: recalc}
}

func (s *AllocationService) loadOrCreateAllocation(ctx context.Context, uow repository.UnitOfWork, envelopeID string, year, month int) (*domain.EnvelopeAllocation, *domain.BudgetPeriod, error) {
	env, err := uow.Envelopes().GetByID(ctx, envelopeID)
	if err != nil {
		return nil, nil, err
	}
	currency := "USD"
	if env.HasGoal() {
		currency = env.GoalAmount.Currency()
	}
	period, err := EnsurePeriod(ctx, uow, year, month, currency)
	if err != nil {
		return nil, nil, err
	}
	alloc, err := uow.Allocations().ByEnvelopeAndPeriod(ctx, envelopeID, period.ID)
	if err != nil {
		return nil, nil, err
	}
	if alloc == nil {
		alloc, err = domain.NewEnvelopeAllocation(envelopeID, period.ID, money.Zero(period.TotalIncome.Currency()))
		if err != nil {
			return nil, nil, err
		}
		if err := uow.Allocations().Add(ctx, alloc); err != nil {
			return nil, nil, err
		}
	}
	return alloc, period, nil
}

// SetAllocation writes allocated = amount for (envelope, year, month),
// creating the period/allocation if absent. Rejects negative amounts
// (spec §4.F).
func (s *AllocationService) SetAllocation(ctx context.Context, uow repository.UnitOfWork, envelopeID string, amount money.Money, year, month int) (*domain.EnvelopeAllocation, error) {
	if amount.IsNegative() {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "amount")
	}
	alloc, _, err := s.loadOrCreateAllocation(ctx, uow, envelopeID, year, month)
	if err != nil {
		return nil, err
	}
	if err := alloc.SetAllocated(amount); err != nil {
		return nil, err
	}
	if err := uow.Allocations().Update(ctx, alloc); err != nil {
		return nil, err
	}
	return alloc, nil
}

// AdjustAllocation applies delta, clamping the result at zero (spec §4.F).
func (s *AllocationService) AdjustAllocation(ctx context.Context, uow repository.UnitOfWork, envelopeID string, delta money.Money, year, month int) (*domain.EnvelopeAllocation, error) {
	alloc, _, err := s.loadOrCreateAllocation(ctx, uow, envelopeID, year, month)
	if err != nil {
		return nil, err
	}
	if err := alloc.AdjustAllocated(delta); err != nil {
		return nil, err
	}
	if err := uow.Allocations().Update(ctx, alloc); err != nil {
		return nil, err
	}
	return alloc, nil
}

// Move transfers amount of allocated quantity from fromEnv to toEnv within
// (year, month), preserving readyToAssign (spec §4.F, testable property 8).
func (s *AllocationService) Move(ctx context.Context, uow repository.UnitOfWork, fromEnvelopeID, toEnvelopeID string, amount money.Money, year, month int) error {
	if fromEnvelopeID == toEnvelopeID {
		return apperrors.WithMessage(apperrors.ErrInvalidOperation, "source and destination envelope must differ")
	}
	if !amount.IsPositive() {
		return apperrors.WithTarget(apperrors.ErrValidation, "amount")
	}
	from, _, err := s.loadOrCreateAllocation(ctx, uow, fromEnvelopeID, year, month)
	if err != nil {
		return err
	}
	available, err := from.Available()
	if err != nil {
		return err
	}
	if amount.GreaterThan(available) {
		return apperrors.ErrInsufficientFund
	}
	to, _, err := s.loadOrCreateAllocation(ctx, uow, toEnvelopeID, year, month)
	if err != nil {
		return err
	}
	// Move transfers the "allocated" quantity itself, not the derived
	// available figure the ≤ check above used; SetAllocated keeps the
	// allocated >= 0 invariant, so a move that the available check let
	// through but that would drive allocated negative (possible only when
	// rolloverFromPrevious is positive) is reported the same way.
	newFromAllocated, err := from.Allocated.Sub(amount)
	if err != nil {
		return err
	}
	if newFromAllocated.IsNegative() {
		return apperrors.ErrInsufficientFund
	}
	newToAllocated, err := to.Allocated.Add(amount)
	if err != nil {
		return err
	}
	if err := from.SetAllocated(newFromAllocated); err != nil {
		return err
	}
	if err := to.SetAllocated(newToAllocated); err != nil {
		return err
	}
	if err := uow.Allocations().Update(ctx, from); err != nil {
		return err
	}
	return uow.Allocations().Update(ctx, to)
}

// SetGoal sets envelope's savings goal (spec §4.F).
func (s *AllocationService) SetGoal(ctx context.Context, uow repository.UnitOfWork, envelopeID string, amount money.Money, targetDate *time.Time) (*domain.Envelope, error) {
	env, err := uow.Envelopes().GetByID(ctx, envelopeID)
	if err != nil {
		return nil, err
	}
	if err := env.SetGoal(amount, targetDate); err != nil {
		return nil, err
	}
	if err := uow.Envelopes().Update(ctx, env); err != nil {
		return nil, err
	}
	return env, nil
}

// AutoAssignMode orders envelopes for AutoAssignToGoals (spec §4.F).
type AutoAssignMode string

const (
	EarliestGoalDateFirst AutoAssignMode = "earliest_goal_date_first"
	SmallestGoalFirst     AutoAssignMode = "smallest_goal_first"
)

// AutoAssignToGoals forces a recalculate, then funds active goal envelopes
// in mode order until readyToAssign is exhausted (spec §4.F).
func (s *AllocationService) AutoAssignToGoals(ctx context.Context, uow repository.UnitOfWork, mode AutoAssignMode, year, month int) ([]*domain.EnvelopeAllocation, error) {
	if err := s.recalc.Recalculate(ctx, uow, year, month); err != nil {
		return nil, err
	}
	period, err := uow.BudgetPeriods().ByYearMonth(ctx, year, month)
	if err != nil {
		return nil, err
	}
	remaining, err := period.ReadyToAssign()
	if err != nil {
		return nil, err
	}

	envelopes, err := uow.Envelopes().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var goalEnvelopes []*domain.Envelope
	for _, e := range envelopes {
		if e.IsActive && e.HasGoal() {
			goalEnvelopes = append(goalEnvelopes, e)
		}
	}
	sortEnvelopesForAutoAssign(goalEnvelopes, mode, uow, ctx, period)

	var updated []*domain.EnvelopeAllocation
	for _, env := range goalEnvelopes {
		if !remaining.IsPositive() {
			break
		}
		alloc, _, err := s.loadOrCreateAllocation(ctx, uow, env.ID, year, month)
		if err != nil {
			return nil, err
		}
		available, err := alloc.Available()
		if err != nil {
			return nil, err
		}
		needed := env.Needed(available)
		toAssign, err := minMoney(needed, remaining)
		if err != nil {
			return nil, err
		}
		if !toAssign.IsPositive() {
			continue
		}
		if err := alloc.AdjustAllocated(toAssign); err != nil {
			return nil, err
		}
		if err := uow.Allocations().Update(ctx, alloc); err != nil {
			return nil, err
		}
		remaining, err = remaining.Sub(toAssign)
		if err != nil {
			return nil, err
		}
		updated = append(updated, alloc)
	}
	return updated, nil
}

func minMoney(a, b money.Money) (money.Money, error) {
	c, err := a.Cmp(b)
	if err != nil {
		return money.Money{}, err
	}
	if c <= 0 {
		return a, nil
	}
	return b, nil
}

// sortEnvelopesForAutoAssign orders envs in place per mode (spec §4.F).
func sortEnvelopesForAutoAssign(envs []*domain.Envelope, mode AutoAssignMode, uow repository.UnitOfWork, ctx context.Context, period *domain.BudgetPeriod) {
	switch mode {
	case EarliestGoalDateFirst:
		sort.SliceStable(envs, func(i, j int) bool {
			di, dj := envs[i].GoalDate, envs[j].GoalDate
			if di == nil && dj == nil {
				return strings.ToLower(envs[i].Name) < strings.ToLower(envs[j].Name)
			}
			if di == nil {
				return false
			}
			if dj == nil {
				return true
			}
			if di.Equal(*dj) {
				return strings.ToLower(envs[i].Name) < strings.ToLower(envs[j].Name)
			}
			return di.Before(*dj)
		})
	case SmallestGoalFirst:
		needed := make(map[string]money.Money, len(envs))
		for _, e := range envs {
			alloc, err := uow.Allocations().ByEnvelopeAndPeriod(ctx, e.ID, period.ID)
			available := money.Zero(e.GoalAmount.Currency())
			if err == nil && alloc != nil {
				if a, aerr := alloc.Available(); aerr == nil {
					available = a
				}
			}
			needed[e.ID] = e.Needed(available)
		}
		sort.SliceStable(envs, func(i, j int) bool {
			ni, nj := needed[envs[i].ID], needed[envs[j].ID]
			c, err := ni.Cmp(nj)
			if err != nil || c == 0 {
				return strings.ToLower(envs[i].Name) < strings.ToLower(envs[j].Name)
			}
			return c < 0
		})
	}
}

// Rollover closes (year, month), seeds the next period's carriedOver from
// the closing period's readyToAssign, and carries each allocation's
// available (possibly negative) into the next period's
// rolloverFromPrevious (spec §4.F).
func (s *AllocationService) Rollover(ctx context.Context, uow repository.UnitOfWork, year, month int) error {
	if err := s.recalc.Recalculate(ctx, uow, year, month); err != nil {
		return err
	}
	period, err := uow.BudgetPeriods().ByYearMonth(ctx, year, month)
	if err != nil {
		return err
	}
	readyToAssign, err := period.ReadyToAssign()
	if err != nil {
		return err
	}
	allocations, err := uow.Allocations().ByPeriod(ctx, period.ID)
	if err != nil {
		return err
	}

	if err := period.Close(); err != nil {
		return err
	}
	if err := uow.BudgetPeriods().Update(ctx, period); err != nil {
		return err
	}

	nextYear, nextMonth := period.NextMonth()
	nextPeriod, err := EnsurePeriod(ctx, uow, nextYear, nextMonth, period.TotalIncome.Currency())
	if err != nil {
		return err
	}
	nextPeriod.SetCarriedOver(readyToAssign)
	if err := uow.BudgetPeriods().Update(ctx, nextPeriod); err != nil {
		return err
	}

	for _, alloc := range allocations {
		available, err := alloc.Available()
		if err != nil {
			return err
		}
		nextAlloc, err := uow.Allocations().ByEnvelopeAndPeriod(ctx, alloc.EnvelopeID, nextPeriod.ID)
		if err != nil {
			return err
		}
		if nextAlloc == nil {
			nextAlloc, err = domain.NewEnvelopeAllocation(alloc.EnvelopeID, nextPeriod.ID, money.Zero(available.Currency()))
			if err != nil {
				return err
			}
			nextAlloc.SetRolloverFromPrevious(available)
			if err := uow.Allocations().Add(ctx, nextAlloc); err != nil {
				return err
			}
			continue
		}
		nextAlloc.SetRolloverFromPrevious(available)
		if err := uow.Allocations().Update(ctx, nextAlloc); err != nil {
			return err
		}
	}
	return nil
}
