package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
)

type envelopeRepo struct{ db *gorm.DB }

func (r *envelopeRepo) GetByID(ctx context.Context, id string) (*domain.Envelope, error) {
	var row EnvelopeRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrEnvelopeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return envelopeFromRow(&row)
}

func (r *envelopeRepo) GetAll(ctx context.Context) ([]*domain.Envelope, error) {
	var rows []EnvelopeRow
	if err := r.db.WithContext(ctx).Order("sort_order, name").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	out := make([]*domain.Envelope, 0, len(rows))
	for i := range rows {
		e, err := envelopeFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *envelopeRepo) Add(ctx context.Context, e *domain.Envelope) error {
	if err := r.db.WithContext(ctx).Create(envelopeToRow(e)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *envelopeRepo) Update(ctx context.Context, e *domain.Envelope) error {
	if err := r.db.WithContext(ctx).Save(envelopeToRow(e)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *envelopeRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&EnvelopeRow{}, "id = ?", id).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *envelopeRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&EnvelopeRow{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return count > 0, nil
}

func (r *envelopeRepo) DistinctGroups(ctx context.Context) ([]string, error) {
	var groups []string
	if err := r.db.WithContext(ctx).Model(&EnvelopeRow{}).
		Where("group_name <> ''").
		Distinct().Order("group_name").Pluck("group_name", &groups).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return groups, nil
}
