package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
)

type auditRepo struct{ db *gorm.DB }

func (r *auditRepo) Add(ctx context.Context, entry *domain.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(auditToRow(entry)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}
