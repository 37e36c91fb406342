package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
)

type allocationRepo struct{ db *gorm.DB }

func (r *allocationRepo) GetByID(ctx context.Context, id string) (*domain.EnvelopeAllocation, error) {
	var row EnvelopeAllocationRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithTarget(apperrors.ErrValidation, "allocationId")
		}
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return allocationFromRow(&row)
}

func (r *allocationRepo) Add(ctx context.Context, a *domain.EnvelopeAllocation) error {
	if err := r.db.WithContext(ctx).Create(allocationToRow(a)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *allocationRepo) Update(ctx context.Context, a *domain.EnvelopeAllocation) error {
	if err := r.db.WithContext(ctx).Save(allocationToRow(a)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *allocationRepo) ByEnvelopeAndPeriod(ctx context.Context, envelopeID, periodID string) (*domain.EnvelopeAllocation, error) {
	var row EnvelopeAllocationRow
	if err := r.db.WithContext(ctx).First(&row, "envelope_id = ? AND budget_period_id = ?", envelopeID, periodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return allocationFromRow(&row)
}

func (r *allocationRepo) ByPeriod(ctx context.Context, periodID string) ([]*domain.EnvelopeAllocation, error) {
	var rows []EnvelopeAllocationRow
	if err := r.db.WithContext(ctx).Where("budget_period_id = ?", periodID).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	out := make([]*domain.EnvelopeAllocation, 0, len(rows))
	for i := range rows {
		a, err := allocationFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
