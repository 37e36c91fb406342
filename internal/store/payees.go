package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
)

type payeeRepo struct{ db *gorm.DB }

func (r *payeeRepo) GetByID(ctx context.Context, id string) (*domain.Payee, error) {
	var row PayeeRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPayeeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return payeeFromRow(&row), nil
}

func (r *payeeRepo) Add(ctx context.Context, p *domain.Payee) error {
	if err := r.db.WithContext(ctx).Create(payeeToRow(p)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *payeeRepo) Update(ctx context.Context, p *domain.Payee) error {
	if err := r.db.WithContext(ctx).Save(payeeToRow(p)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *payeeRepo) ByName(ctx context.Context, name string) (*domain.Payee, error) {
	normalized := domain.NormalizePayeeName(name)
	var row PayeeRow
	if err := r.db.WithContext(ctx).First(&row, "name = ? COLLATE NOCASE", normalized).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return payeeFromRow(&row), nil
}

func (r *payeeRepo) Search(ctx context.Context, query string, limit int) ([]*domain.Payee, error) {
	var rows []PayeeRow
	like := "%" + domain.NormalizePayeeName(query) + "%"
	if err := r.db.WithContext(ctx).
		Where("name LIKE ? COLLATE NOCASE AND is_hidden = false", like).
		Order("transaction_count DESC, name").
		Limit(limit).Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	out := make([]*domain.Payee, 0, len(rows))
	for i := range rows {
		out = append(out, payeeFromRow(&rows[i]))
	}
	return out, nil
}
