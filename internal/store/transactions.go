package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
)

type transactionRepo struct{ db *gorm.DB }

func (r *transactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var row TransactionRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return transactionFromRow(&row)
}

func (r *transactionRepo) GetAll(ctx context.Context) ([]*domain.Transaction, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("is_deleted = false"))
}

func (r *transactionRepo) Add(ctx context.Context, t *domain.Transaction) error {
	if err := r.db.WithContext(ctx).Create(transactionToRow(t, Fingerprint(t))).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *transactionRepo) Update(ctx context.Context, t *domain.Transaction) error {
	if err := r.db.WithContext(ctx).Save(transactionToRow(t, Fingerprint(t))).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *transactionRepo) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&TransactionRow{}, "id = ?", id).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return nil
}

func (r *transactionRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&TransactionRow{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	return count > 0, nil
}

func (r *transactionRepo) ByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("account_id = ? AND is_deleted = false", accountID))
}

func (r *transactionRepo) ByEnvelope(ctx context.Context, envelopeID string) ([]*domain.Transaction, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("envelope_id = ? AND is_deleted = false", envelopeID))
}

func (r *transactionRepo) ByDateRange(ctx context.Context, rng money.DateRange) ([]*domain.Transaction, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("date BETWEEN ? AND ? AND is_deleted = false", rng.Start, rng.End))
}

func (r *transactionRepo) ByAccountAndDateRange(ctx context.Context, accountID string, rng money.DateRange) ([]*domain.Transaction, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("account_id = ? AND date BETWEEN ? AND ? AND is_deleted = false", accountID, rng.Start, rng.End))
}

func (r *transactionRepo) UnclearedByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("account_id = ? AND is_cleared = false AND is_deleted = false", accountID))
}

func (r *transactionRepo) Unassigned(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	return r.list(ctx, r.db.WithContext(ctx).
		Where("account_id = ? AND envelope_id IS NULL AND type <> ? AND is_deleted = false", accountID, string(domain.TransactionTypeTransfer)).
		Where("id NOT IN (SELECT transaction_id FROM transaction_split_lines)"))
}

func (r *transactionRepo) list(ctx context.Context, q *gorm.DB) ([]*domain.Transaction, error) {
	var rows []TransactionRow
	if err := q.Order("date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	out := make([]*domain.Transaction, 0, len(rows))
	for i := range rows {
		t, err := transactionFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *transactionRepo) EnvelopeSpentInRange(ctx context.Context, envelopeID string, rng money.DateRange, currency string) (money.Money, error) {
	spent := money.Zero(currency)

	var directSum *string
	if err := r.db.WithContext(ctx).Model(&TransactionRow{}).
		Select("SUM(-amount_value)").
		Where("envelope_id = ? AND type = ? AND date BETWEEN ? AND ? AND is_deleted = false",
			envelopeID, string(domain.TransactionTypeOutflow), rng.Start, rng.End).
		Scan(&directSum).Error; err != nil {
		return money.Money{}, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	if directSum != nil {
		amt, err := decimalFromString(*directSum)
		if err != nil {
			return money.Money{}, apperrors.Wrap(apperrors.ErrUnexpected, err)
		}
		m, err := money.New(amt, currency)
		if err != nil {
			return money.Money{}, err
		}
		spent, err = spent.Add(m)
		if err != nil {
			return money.Money{}, err
		}
	}

	var splitSum *string
	if err := r.db.WithContext(ctx).Table("transaction_split_lines AS s").
		Joins("JOIN transactions t ON t.id = s.transaction_id").
		Select("SUM(s.amount_value)").
		Where("s.envelope_id = ? AND t.date BETWEEN ? AND ? AND t.is_deleted = false", envelopeID, rng.Start, rng.End).
		Scan(&splitSum).Error; err != nil {
		return money.Money{}, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	if splitSum != nil {
		amt, err := decimalFromString(*splitSum)
		if err != nil {
			return money.Money{}, apperrors.Wrap(apperrors.ErrUnexpected, err)
		}
		m, err := money.New(amt, currency)
		if err != nil {
			return money.Money{}, err
		}
		spent, err = spent.Add(m)
		if err != nil {
			return money.Money{}, err
		}
	}
	return spent, nil
}

func (r *transactionRepo) TotalsForRange(ctx context.Context, rng money.DateRange, currency string) (income, spentAbs money.Money, err error) {
	income = money.Zero(currency)
	spentAbs = money.Zero(currency)

	var incomeSum *string
	if err = r.db.WithContext(ctx).Model(&TransactionRow{}).
		Select("SUM(amount_value)").
		Where("type = ? AND date BETWEEN ? AND ? AND is_deleted = false", string(domain.TransactionTypeInflow), rng.Start, rng.End).
		Scan(&incomeSum).Error; err != nil {
		return money.Money{}, money.Money{}, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	if incomeSum != nil {
		amt, derr := decimalFromString(*incomeSum)
		if derr != nil {
			return money.Money{}, money.Money{}, apperrors.Wrap(apperrors.ErrUnexpected, derr)
		}
		income, err = money.New(amt, currency)
		if err != nil {
			return money.Money{}, money.Money{}, err
		}
	}

	var spentSum *string
	if err = r.db.WithContext(ctx).Model(&TransactionRow{}).
		Select("SUM(-amount_value)").
		Where("type = ? AND date BETWEEN ? AND ? AND is_deleted = false", string(domain.TransactionTypeOutflow), rng.Start, rng.End).
		Scan(&spentSum).Error; err != nil {
		return money.Money{}, money.Money{}, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	if spentSum != nil {
		amt, derr := decimalFromString(*spentSum)
		if derr != nil {
			return money.Money{}, money.Money{}, apperrors.Wrap(apperrors.ErrUnexpected, derr)
		}
		spentAbs, err = money.New(amt, currency)
		if err != nil {
			return money.Money{}, money.Money{}, err
		}
	}
	return income, spentAbs, nil
}

func (r *transactionRepo) ExistingFingerprints(ctx context.Context, accountID string, rng money.DateRange) (map[string]struct{}, error) {
	var fps []string
	if err := r.db.WithContext(ctx).Model(&TransactionRow{}).
		Where("account_id = ? AND date BETWEEN ? AND ? AND is_deleted = false", accountID, rng.Start, rng.End).
		Pluck("fingerprint", &fps).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUnexpected, err)
	}
	out := make(map[string]struct{}, len(fps))
	for _, fp := range fps {
		out[fp] = struct{}{}
	}
	return out, nil
}
