package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
)

type accountRepo struct{ db *gorm.DB }

func (r *accountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var row AccountRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return accountFromRow(&row)
}

func (r *accountRepo) GetAll(ctx context.Context) ([]*domain.Account, error) {
	var rows []AccountRow
	if err := r.db.WithContext(ctx).Order("sort_order, name").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	out := make([]*domain.Account, 0, len(rows))
	for i := range rows {
		a, err := accountFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *accountRepo) Add(ctx context.Context, a *domain.Account) error {
	if err := r.db.WithContext(ctx).Create(accountToRow(a)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *accountRepo) Update(ctx context.Context, a *domain.Account) error {
	if err := r.db.WithContext(ctx).Save(accountToRow(a)).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *accountRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&AccountRow{}, "id = ?", id).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *accountRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&AccountRow{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return count > 0, nil
}

func (r *accountRepo) AccountBalance(ctx context.Context, accountID string) (money.Money, error) {
	return r.sumSigned(ctx, accountID, "")
}

func (r *accountRepo) AccountClearedBalance(ctx context.Context, accountID string) (money.Money, error) {
	return r.sumSigned(ctx, accountID, "AND is_cleared = true")
}

func (r *accountRepo) sumSigned(ctx context.Context, accountID, extra string) (money.Money, error) {
	var row struct {
		Sum      *string
		Currency *string
	}
	q := r.db.WithContext(ctx).Model(&TransactionRow{}).
		Select("SUM(amount_value) as sum, MAX(amount_currency) as currency").
		Where("account_id = ? AND is_deleted = false", accountID)
	if extra != "" {
		q = q.Where("is_cleared = true")
	}
	if err := q.Scan(&row).Error; err != nil {
		return money.Money{}, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	if row.Sum == nil || row.Currency == nil {
		var acct AccountRow
		if err := r.db.WithContext(ctx).First(&acct, "id = ?", accountID).Error; err != nil {
			return money.Money{}, apperrors.ErrAccountNotFound
		}
		return money.Zero(acct.BalanceCurrency), nil
	}
	amt, err := decimalFromString(*row.Sum)
	if err != nil {
		return money.Money{}, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return money.New(amt, *row.Currency)
}
