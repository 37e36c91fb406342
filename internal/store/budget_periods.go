package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
)

type budgetPeriodRepo struct{ db *gorm.DB }

func (r *budgetPeriodRepo) GetByID(ctx context.Context, id string) (*domain.BudgetPeriod, error) {
	var row BudgetPeriodRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetPeriodNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return budgetPeriodFromRow(&row)
}

func (r *budgetPeriodRepo) Add(ctx context.Context, p *domain.BudgetPeriod) error {
	if err := r.db.WithContext(ctx).Create(budgetPeriodToRow(p)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *budgetPeriodRepo) Update(ctx context.Context, p *domain.BudgetPeriod) error {
	if err := r.db.WithContext(ctx).Save(budgetPeriodToRow(p)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *budgetPeriodRepo) ByYearMonth(ctx context.Context, year, month int) (*domain.BudgetPeriod, error) {
	var row BudgetPeriodRow
	if err := r.db.WithContext(ctx).First(&row, "year = ? AND month = ?", year, month).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetPeriodNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return budgetPeriodFromRow(&row)
}

func (r *budgetPeriodRepo) PeriodTotalAllocated(ctx context.Context, periodID string, currency string) (money.Money, error) {
	var sum *string
	if err := r.db.WithContext(ctx).Model(&EnvelopeAllocationRow{}).
		Select("SUM(allocated_value)").
		Where("budget_period_id = ?", periodID).
		Scan(&sum).Error; err != nil {
		return money.Money{}, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	if sum == nil {
		return money.Zero(currency), nil
	}
	amt, err := decimalFromString(*sum)
	if err != nil {
		return money.Money{}, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return money.New(amt, currency)
}
