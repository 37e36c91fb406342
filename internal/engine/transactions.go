package engine

import (
	"context"
	"time"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
)

// TransactionService creates, edits, clears, and deletes transactions,
// keeping account balance caches and payee usage in sync (spec §4.E).
type TransactionService struct{}

func NewTransactionService() *TransactionService {
	return &TransactionService{}
}

// SplitInput is one caller-supplied split line of a createOutflow/
// updateTransaction call.
type SplitInput struct {
	EnvelopeID string
	Amount     money.Money
}

func (s *TransactionService) loadAccount(ctx context.Context, uow repository.UnitOfWork, accountID string) (*domain.Account, error) {
	return uow.Accounts().GetByID(ctx, accountID)
}

// CreateOutflow inserts an outflow, optionally split across envelopes.
// envelopeID and splits are mutually exclusive; at most one may be set.
func (s *TransactionService) CreateOutflow(
	ctx context.Context, uow repository.UnitOfWork,
	accountID string, date time.Time, amount money.Money, payee string,
	envelopeID *string, splits []SplitInput, memo string,
) (*domain.Transaction, error) {
	if _, err := s.loadAccount(ctx, uow, accountID); err != nil {
		return nil, err
	}
	if len(splits) > 0 && envelopeID != nil {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "envelopeId and splits are mutually exclusive")
	}

	var assignedEnvelope *string
	if len(splits) == 0 {
		assignedEnvelope = envelopeID
		if envelopeID != nil {
			if _, err := uow.Envelopes().GetByID(ctx, *envelopeID); err != nil {
				return nil, err
			}
		}
	}

	txn, err := domain.NewOutflow(accountID, date, amount, payee, assignedEnvelope, memo)
	if err != nil {
		return nil, err
	}

	if len(splits) > 0 {
		lines := make([]*domain.SplitLine, 0, len(splits))
		for i, in := range splits {
			if _, err := uow.Envelopes().GetByID(ctx, in.EnvelopeID); err != nil {
				return nil, err
			}
			line, err := domain.NewSplitLine(txn.ID, in.EnvelopeID, in.Amount, i)
			if err != nil {
				return nil, err
			}
			lines = append(lines, line)
		}
		if err := domain.ValidateSplitSum(txn.SignedAbs(), lines); err != nil {
			return nil, err
		}
		for _, line := range lines {
			if err := uow.Splits().Add(ctx, line); err != nil {
				return nil, err
			}
		}
	}

	if err := uow.Transactions().Add(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.upsertPayeeUsage(ctx, uow, payee, txn.Date, assignedEnvelope); err != nil {
		return nil, err
	}
	if err := s.refreshAccountBalances(ctx, uow, accountID); err != nil {
		return nil, err
	}
	return txn, nil
}

// CreateInflow inserts an inflow. Inflows are never envelope-assigned and
// never split (spec §4.E).
func (s *TransactionService) CreateInflow(
	ctx context.Context, uow repository.UnitOfWork,
	accountID string, date time.Time, amount money.Money, payee, memo string,
) (*domain.Transaction, error) {
	if _, err := s.loadAccount(ctx, uow, accountID); err != nil {
		return nil, err
	}
	txn, err := domain.NewInflow(accountID, date, amount, payee, memo)
	if err != nil {
		return nil, err
	}
	if err := uow.Transactions().Add(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.upsertPayeeUsage(ctx, uow, payee, txn.Date, nil); err != nil {
		return nil, err
	}
	if err := s.refreshAccountBalances(ctx, uow, accountID); err != nil {
		return nil, err
	}
	return txn, nil
}

// CreateTransfer inserts two linked transactions (spec §4.E, §9's
// two-phase insert).
func (s *TransactionService) CreateTransfer(
	ctx context.Context, uow repository.UnitOfWork,
	fromAccountID, toAccountID string, date time.Time, amount money.Money, memo string,
) (from, to *domain.Transaction, err error) {
	if _, err = s.loadAccount(ctx, uow, fromAccountID); err != nil {
		return nil, nil, err
	}
	if _, err = s.loadAccount(ctx, uow, toAccountID); err != nil {
		return nil, nil, err
	}

	from, err = domain.NewTransferLeg(fromAccountID, toAccountID, date, amount.Negate(), memo)
	if err != nil {
		return nil, nil, err
	}
	to, err = domain.NewTransferLeg(toAccountID, fromAccountID, date, amount, memo)
	if err != nil {
		return nil, nil, err
	}

	if err = uow.Transactions().Add(ctx, from); err != nil {
		return nil, nil, err
	}
	if err = uow.Transactions().Add(ctx, to); err != nil {
		return nil, nil, err
	}

	from.Link(to.ID)
	to.Link(from.ID)
	if err = uow.Transactions().Update(ctx, from); err != nil {
		return nil, nil, err
	}
	if err = uow.Transactions().Update(ctx, to); err != nil {
		return nil, nil, err
	}

	if err = s.refreshAccountBalances(ctx, uow, fromAccountID); err != nil {
		return nil, nil, err
	}
	if err = s.refreshAccountBalances(ctx, uow, toAccountID); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// TransactionPatch carries the optional fields updateTransaction may change.
type TransactionPatch struct {
	Date       *time.Time
	Amount     *money.Money
	Payee      *string
	Memo       *string
	EnvelopeID *string
	Splits     []SplitInput
}

// UpdateTransaction applies patch, rejecting reconciled transactions and
// any amount/split change that would break the split-sum invariant
// (spec §4.E).
func (s *TransactionService) UpdateTransaction(ctx context.Context, uow repository.UnitOfWork, id string, patch TransactionPatch) (*domain.Transaction, error) {
	txn, err := uow.Transactions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.IsReconciled {
		return nil, apperrors.ErrReconciled
	}

	existingSplits, err := uow.Splits().ByTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	hasSplits := len(existingSplits) > 0

	if patch.Date != nil {
		if err := txn.SetDate(*patch.Date); err != nil {
			return nil, err
		}
	}
	if patch.Payee != nil {
		if err := txn.SetPayee(*patch.Payee); err != nil {
			return nil, err
		}
	}
	if patch.Memo != nil {
		txn.SetMemo(*patch.Memo)
	}
	if patch.EnvelopeID != nil {
		if hasSplits || len(patch.Splits) > 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidOperation, "cannot assign an envelope to a split transaction")
		}
		if err := txn.AssignEnvelope(*patch.EnvelopeID); err != nil {
			return nil, err
		}
	}

	if patch.Amount != nil || len(patch.Splits) > 0 {
		if hasSplits && len(patch.Splits) == 0 {
			return nil, apperrors.WithMessage(apperrors.ErrValidation, "amount change on a split transaction requires replacement splits")
		}
		if patch.Amount != nil {
			if err := txn.SetAmount(*patch.Amount); err != nil {
				return nil, err
			}
		}
		if len(patch.Splits) > 0 {
			lines := make([]*domain.SplitLine, 0, len(patch.Splits))
			for i, in := range patch.Splits {
				if _, err := uow.Envelopes().GetByID(ctx, in.EnvelopeID); err != nil {
					return nil, err
				}
				line, err := domain.NewSplitLine(txn.ID, in.EnvelopeID, in.Amount, i)
				if err != nil {
					return nil, err
				}
				lines = append(lines, line)
			}
			if err := domain.ValidateSplitSum(txn.SignedAbs(), lines); err != nil {
				return nil, err
			}
			if err := uow.Splits().ReplaceForTransaction(ctx, txn.ID, lines); err != nil {
				return nil, err
			}
			txn.ClearEnvelope()
		}
	}

	if err := uow.Transactions().Update(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.refreshAccountBalances(ctx, uow, txn.AccountID); err != nil {
		return nil, err
	}
	return txn, nil
}

// DeleteTransaction soft-deletes id, and its transfer counterpart if any
// (spec §4.E, §9's "link preserved" open-question resolution).
func (s *TransactionService) DeleteTransaction(ctx context.Context, uow repository.UnitOfWork, id string) error {
	txn, err := uow.Transactions().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := txn.SoftDelete(); err != nil {
		return err
	}
	if err := uow.Transactions().Update(ctx, txn); err != nil {
		return err
	}
	affected := []string{txn.AccountID}

	if txn.LinkedTransactionID != nil {
		linked, err := uow.Transactions().GetByID(ctx, *txn.LinkedTransactionID)
		if err != nil {
			return err
		}
		if !linked.IsDeleted {
			if err := linked.SoftDelete(); err != nil {
				return err
			}
			if err := uow.Transactions().Update(ctx, linked); err != nil {
				return err
			}
			affected = append(affected, linked.AccountID)
		}
	}
	for _, accountID := range affected {
		if err := s.refreshAccountBalances(ctx, uow, accountID); err != nil {
			return err
		}
	}
	return nil
}

// MarkCleared transitions a transaction to cleared.
func (s *TransactionService) MarkCleared(ctx context.Context, uow repository.UnitOfWork, id string) (*domain.Transaction, error) {
	txn, err := uow.Transactions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	txn.MarkCleared()
	if err := uow.Transactions().Update(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.refreshAccountBalances(ctx, uow, txn.AccountID); err != nil {
		return nil, err
	}
	return txn, nil
}

// MarkUncleared reverses MarkCleared; rejected once reconciled (spec §4.E,
// §9's "uniform INVALID_OPERATION" resolution).
func (s *TransactionService) MarkUncleared(ctx context.Context, uow repository.UnitOfWork, id string) (*domain.Transaction, error) {
	txn, err := uow.Transactions().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := txn.MarkUncleared(); err != nil {
		return nil, err
	}
	if err := uow.Transactions().Update(ctx, txn); err != nil {
		return nil, err
	}
	if err := s.refreshAccountBalances(ctx, uow, txn.AccountID); err != nil {
		return nil, err
	}
	return txn, nil
}

// AssignToEnvelope assigns envelopeID to a non-split, non-transfer,
// non-reconciled transaction, and records the payee's default envelope if
// it had none (spec §4.E).
func (s *TransactionService) AssignToEnvelope(ctx context.Context, uow repository.UnitOfWork, txID, envelopeID string) (*domain.Transaction, error) {
	txn, err := uow.Transactions().GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	splits, err := uow.Splits().ByTransaction(ctx, txID)
	if err != nil {
		return nil, err
	}
	if len(splits) > 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidOperation, "transaction already has splits")
	}
	if _, err := uow.Envelopes().GetByID(ctx, envelopeID); err != nil {
		return nil, err
	}
	if err := txn.AssignEnvelope(envelopeID); err != nil {
		return nil, err
	}
	if err := uow.Transactions().Update(ctx, txn); err != nil {
		return nil, err
	}

	payee, err := uow.Payees().ByName(ctx, txn.Payee)
	if err != nil {
		return nil, err
	}
	if payee != nil {
		payee.SetDefaultEnvelope(envelopeID)
		if err := uow.Payees().Update(ctx, payee); err != nil {
			return nil, err
		}
	}
	return txn, nil
}

// refreshAccountBalances recomputes and persists an account's cached
// cleared/uncleared/total balances from its non-deleted transactions.
func (s *TransactionService) refreshAccountBalances(ctx context.Context, uow repository.UnitOfWork, accountID string) error {
	acct, err := uow.Accounts().GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	cleared, err := uow.Accounts().AccountClearedBalance(ctx, accountID)
	if err != nil {
		return err
	}
	total, err := uow.Accounts().AccountBalance(ctx, accountID)
	if err != nil {
		return err
	}
	uncleared, err := total.Sub(cleared)
	if err != nil {
		return err
	}
	if err := acct.SetCachedBalances(cleared, uncleared); err != nil {
		return err
	}
	return uow.Accounts().Update(ctx, acct)
}

// upsertPayeeUsage records usage against payeeName, creating the payee if
// it doesn't exist, and learns envelopeID as its default if it had none.
func (s *TransactionService) upsertPayeeUsage(ctx context.Context, uow repository.UnitOfWork, payeeName string, at time.Time, envelopeID *string) error {
	payee, err := uow.Payees().ByName(ctx, payeeName)
	if err != nil {
		return err
	}
	if payee == nil {
		payee, err = domain.NewPayee(payeeName)
		if err != nil {
			return err
		}
		payee.RecordUsage(at)
		if envelopeID != nil {
			payee.SetDefaultEnvelope(*envelopeID)
		}
		return uow.Payees().Add(ctx, payee)
	}
	payee.RecordUsage(at)
	if envelopeID != nil {
		payee.SetDefaultEnvelope(*envelopeID)
	}
	return uow.Payees().Update(ctx, payee)
}
