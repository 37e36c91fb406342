package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/uuid"
)

// TransactionType distinguishes inflows, outflows, and transfers. Sign
// convention (spec §3): outflows are stored negative, inflows positive,
// transfers carry one of each, linked by id.
type TransactionType string

const (
	TransactionTypeInflow   TransactionType = "inflow"
	TransactionTypeOutflow  TransactionType = "outflow"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Transaction is a single ledger entry against an Account.
type Transaction struct {
	ID                  string          `json:"id"`
	AccountID           string          `json:"accountId"`
	EnvelopeID          *string         `json:"envelopeId,omitempty"`
	TransferAccountID   *string         `json:"transferAccountId,omitempty"`
	LinkedTransactionID *string         `json:"linkedTransactionId,omitempty"`
	Date                time.Time       `json:"date"`
	Amount              money.Money     `json:"amount"`
	Payee               string          `json:"payee"`
	Memo                string          `json:"memo,omitempty"`
	Type                TransactionType `json:"type"`
	IsCleared           bool            `json:"isCleared"`
	IsReconciled        bool            `json:"isReconciled"`
	IsApproved          bool            `json:"isApproved"`
	IsDeleted           bool            `json:"isDeleted"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// NewOutflow builds an outflow transaction with amount stored as -|amount|.
// envelopeID may be nil (unassigned); see spec §4.E for split mutual
// exclusion, enforced by the Transaction Service, not here.
func NewOutflow(accountID string, date time.Time, amount money.Money, payee string, envelopeID *string, memo string) (*Transaction, error) {
	if accountID == "" {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "accountId")
	}
	if payee == "" {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "payee")
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "amount")
	}
	now := time.Now().UTC()
	return &Transaction{
		ID: uuid.New(), AccountID: accountID, EnvelopeID: envelopeID,
		Date: date, Amount: amount.Negate(), Payee: payee, Memo: memo,
		Type: TransactionTypeOutflow, IsApproved: true,
		CreatedAt: now, UpdatedAt: now,
	}, nil
}

// NewInflow builds an inflow transaction. Inflows are never
// envelope-assigned and never split (spec §4.E).
func NewInflow(accountID string, date time.Time, amount money.Money, payee string, memo string) (*Transaction, error) {
	if accountID == "" {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "accountId")
	}
	if payee == "" {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "payee")
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "amount")
	}
	now := time.Now().UTC()
	return &Transaction{
		ID: uuid.New(), AccountID: accountID,
		Date: date, Amount: amount, Payee: payee, Memo: memo,
		Type: TransactionTypeInflow, IsApproved: true,
		CreatedAt: now, UpdatedAt: now,
	}, nil
}

// NewTransferLeg builds one leg of a transfer: -amount on the source side,
// +amount on the destination side. Both legs are created uncleared and
// unlinked; TransactionService.CreateTransfer links them in a second
// phase (spec §4.E, §9 "entity identity cycles").
func NewTransferLeg(accountID, counterpartyAccountID string, date time.Time, signedAmount money.Money, memo string) (*Transaction, error) {
	if accountID == "" || counterpartyAccountID == "" {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "accountId")
	}
	if accountID == counterpartyAccountID {
		return nil, apperrors.ErrSameAccount
	}
	now := time.Now().UTC()
	return &Transaction{
		ID: uuid.New(), AccountID: accountID, TransferAccountID: &counterpartyAccountID,
		Date: date, Amount: signedAmount, Payee: "Transfer", Memo: memo,
		Type: TransactionTypeTransfer, IsApproved: true,
		CreatedAt: now, UpdatedAt: now,
	}, nil
}

// TransactionFromPersistedState rehydrates a Transaction from stored columns.
func TransactionFromPersistedState(
	id, accountID string, envelopeID, transferAccountID, linkedTransactionID *string,
	date time.Time, amount money.Money, payee, memo string, txType TransactionType,
	isCleared, isReconciled, isApproved, isDeleted bool, createdAt, updatedAt time.Time,
) *Transaction {
	return &Transaction{
		ID: id, AccountID: accountID, EnvelopeID: envelopeID, TransferAccountID: transferAccountID,
		LinkedTransactionID: linkedTransactionID, Date: date, Amount: amount, Payee: payee, Memo: memo,
		Type: txType, IsCleared: isCleared, IsReconciled: isReconciled, IsApproved: isApproved,
		IsDeleted: isDeleted, CreatedAt: createdAt, UpdatedAt: updatedAt,
	}
}

// Link records the counterpart of a transfer pair once both legs exist in
// the store (two-phase insert, spec §4.E/§9).
func (t *Transaction) Link(counterpartID string) {
	t.LinkedTransactionID = &counterpartID
	t.UpdatedAt = time.Now().UTC()
}

// SetAmount replaces the transaction's amount, re-applying the sign
// convention for its Type. Rejected once the transaction is reconciled.
func (t *Transaction) SetAmount(amount money.Money) error {
	if t.IsReconciled {
		return apperrors.ErrReconciled
	}
	if !amount.IsPositive() && !amount.IsZero() {
		amount = amount.Abs()
	}
	switch t.Type {
	case TransactionTypeOutflow:
		t.Amount = amount.Negate()
	default:
		t.Amount = amount
	}
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// SetPayee replaces the payee name. Rejected once reconciled.
func (t *Transaction) SetPayee(payee string) error {
	if t.IsReconciled {
		return apperrors.ErrReconciled
	}
	if payee == "" {
		return apperrors.WithTarget(apperrors.ErrValidation, "payee")
	}
	t.Payee = payee
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// SetMemo replaces the memo. Memo edits are allowed even when reconciled,
// since they don't affect any of the invariants spec §3 lists as frozen.
func (t *Transaction) SetMemo(memo string) {
	t.Memo = memo
	t.UpdatedAt = time.Now().UTC()
}

// SetDate replaces the transaction date. Rejected once reconciled.
func (t *Transaction) SetDate(date time.Time) error {
	if t.IsReconciled {
		return apperrors.ErrReconciled
	}
	t.Date = date
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// AssignEnvelope sets the transaction's envelope. Rejected on transfers,
// on reconciled transactions, and on split transactions (spec §4.E);
// split-exclusivity is enforced by the Transaction Service, which knows
// whether split rows exist.
func (t *Transaction) AssignEnvelope(envelopeID string) error {
	if t.Type == TransactionTypeTransfer {
		return apperrors.ErrInvalidOperation
	}
	if t.IsReconciled {
		return apperrors.ErrReconciled
	}
	t.EnvelopeID = &envelopeID
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// ClearEnvelope removes the transaction's envelope assignment.
func (t *Transaction) ClearEnvelope() {
	t.EnvelopeID = nil
	t.UpdatedAt = time.Now().UTC()
}

// MarkCleared transitions (uncleared, !reconciled) -> (cleared, !reconciled).
func (t *Transaction) MarkCleared() {
	t.IsCleared = true
	t.UpdatedAt = time.Now().UTC()
}

// MarkUncleared reverses MarkCleared. Rejected once reconciled: there is
// no transition out of reconciled except administrative ones (spec §4.H,
// §9 open question).
func (t *Transaction) MarkUncleared() error {
	if t.IsReconciled {
		return apperrors.ErrReconciled
	}
	t.IsCleared = false
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkReconciled transitions (cleared, !reconciled) -> (cleared, reconciled).
// Reconciling also clears the transaction, matching spec §3's
// "reconciled implies cleared" invariant.
func (t *Transaction) MarkReconciled() {
	t.IsCleared = true
	t.IsReconciled = true
	t.UpdatedAt = time.Now().UTC()
}

// SoftDelete flags the transaction as deleted. Rejected once reconciled.
// Per spec §9's open question, the link to a transfer counterpart is left
// in place; it is the caller's (Transaction Service's) job to soft-delete
// the linked transaction too.
func (t *Transaction) SoftDelete() error {
	if t.IsReconciled {
		return apperrors.ErrReconciled
	}
	t.IsDeleted = true
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// SignedAbs returns the absolute value of the transaction's amount,
// preserving currency. Used wherever spec.md calls for "|amount|".
func (t *Transaction) SignedAbs() money.Money {
	return t.Amount.Abs()
}

// Fingerprint derives the deterministic dedup key used by both the store
// (every inserted transaction) and the CSV Import Pipeline (every
// previewed/committed row), so the two agree on what counts as a
// duplicate: SHA-256 of accountId-as-hex-without-dashes | ISO date |
// amount at exact 2-digit scale | currency | normalized(payee) |
// normalized(memo) (spec §4.G).
func Fingerprint(accountID string, date time.Time, amount money.Money, payee, memo string) string {
	hexAccount := strings.ReplaceAll(accountID, "-", "")
	raw := fmt.Sprintf("%s|%s|%s|%s|%s|%s",
		hexAccount, date.Format("2006-01-02"), amount.Amount().StringFixed(2), amount.Currency(),
		normalizeForFingerprint(payee), normalizeForFingerprint(memo))
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func normalizeForFingerprint(s string) string {
	return strings.ToUpper(NormalizePayeeName(s))
}
