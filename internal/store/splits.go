package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
)

type splitRepo struct{ db *gorm.DB }

func (r *splitRepo) GetByID(ctx context.Context, id string) (*domain.SplitLine, error) {
	var row SplitLineRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithTarget(apperrors.ErrValidation, "splitId")
		}
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return splitFromRow(&row)
}

func (r *splitRepo) Add(ctx context.Context, s *domain.SplitLine) error {
	if err := r.db.WithContext(ctx).Create(splitToRow(s)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *splitRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&SplitLineRow{}, "id = ?", id).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *splitRepo) ByTransaction(ctx context.Context, transactionID string) ([]*domain.SplitLine, error) {
	var rows []SplitLineRow
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).Order("sort_order").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	out := make([]*domain.SplitLine, 0, len(rows))
	for i := range rows {
		s, err := splitFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *splitRepo) ReplaceForTransaction(ctx context.Context, transactionID string, lines []*domain.SplitLine) error {
	if err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).Delete(&SplitLineRow{}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	for _, l := range lines {
		if err := r.Add(ctx, l); err != nil {
			return err
		}
	}
	return nil
}
