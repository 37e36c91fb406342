package store

import (
	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
)

// accountFromRow rehydrates a domain.Account via its FromPersistedState
// constructor, never by assigning struct fields directly (spec §9).
func accountFromRow(r *AccountRow) (*domain.Account, error) {
	balance, err := money.New(r.BalanceAmount, r.BalanceCurrency)
	if err != nil {
		return nil, err
	}
	cleared, err := money.New(r.ClearedAmount, r.ClearedCurrency)
	if err != nil {
		return nil, err
	}
	uncleared, err := money.New(r.UnclearedAmount, r.UnclearedCurrency)
	if err != nil {
		return nil, err
	}
	return domain.AccountFromPersistedState(
		r.ID, r.Name, domain.AccountType(r.Type),
		balance, cleared, uncleared,
		r.IsActive, r.IsOnBudget, r.SortOrder, r.Note,
		r.LastReconciledAt, r.CreatedAt, r.UpdatedAt,
	), nil
}

func accountToRow(a *domain.Account) *AccountRow {
	return &AccountRow{
		ID: a.ID, Name: a.Name, Type: string(a.Type),
		BalanceAmount: a.Balance.Amount(), BalanceCurrency: a.Balance.Currency(),
		ClearedAmount: a.ClearedBalance.Amount(), ClearedCurrency: a.ClearedBalance.Currency(),
		UnclearedAmount: a.UnclearedBalance.Amount(), UnclearedCurrency: a.UnclearedBalance.Currency(),
		IsActive: a.IsActive, IsOnBudget: a.IsOnBudget, SortOrder: a.SortOrder, Note: a.Note,
		LastReconciledAt: a.LastReconciledAt, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
}

func envelopeFromRow(r *EnvelopeRow) (*domain.Envelope, error) {
	var goal *money.Money
	if r.GoalAmount != nil && r.GoalCurrency != nil {
		g, err := money.New(*r.GoalAmount, *r.GoalCurrency)
		if err != nil {
			return nil, err
		}
		goal = &g
	}
	return domain.EnvelopeFromPersistedState(
		r.ID, r.Name, r.GroupName, r.Color, r.SortOrder, r.IsActive, r.IsHidden,
		goal, r.GoalDate, r.Note, r.CreatedAt, r.UpdatedAt,
	), nil
}

func envelopeToRow(e *domain.Envelope) *EnvelopeRow {
	row := &EnvelopeRow{
		ID: e.ID, Name: e.Name, GroupName: e.Group, Color: e.Color, SortOrder: e.SortOrder,
		IsActive: e.IsActive, IsHidden: e.IsHidden, GoalDate: e.GoalDate, Note: e.Note,
		CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
	if e.GoalAmount != nil {
		amt := e.GoalAmount.Amount()
		cur := e.GoalAmount.Currency()
		row.GoalAmount = &amt
		row.GoalCurrency = &cur
	}
	return row
}

func transactionFromRow(r *TransactionRow) (*domain.Transaction, error) {
	amount, err := money.New(r.AmountValue, r.AmountCurrency)
	if err != nil {
		return nil, err
	}
	return domain.TransactionFromPersistedState(
		r.ID, r.AccountID, r.EnvelopeID, r.TransferAccountID, r.LinkedTransactionID,
		r.Date, amount, r.Payee, r.Memo, domain.TransactionType(r.Type),
		r.IsCleared, r.IsReconciled, r.IsApproved, r.IsDeleted, r.CreatedAt, r.UpdatedAt,
	), nil
}

func transactionToRow(t *domain.Transaction, fingerprint string) *TransactionRow {
	return &TransactionRow{
		ID: t.ID, AccountID: t.AccountID, EnvelopeID: t.EnvelopeID,
		TransferAccountID: t.TransferAccountID, LinkedTransactionID: t.LinkedTransactionID,
		Date: t.Date, AmountValue: t.Amount.Amount(), AmountCurrency: t.Amount.Currency(),
		Payee: t.Payee, Memo: t.Memo, Type: string(t.Type),
		IsCleared: t.IsCleared, IsReconciled: t.IsReconciled, IsApproved: t.IsApproved,
		IsDeleted: t.IsDeleted, Fingerprint: fingerprint, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt,
	}
}

func splitFromRow(r *SplitLineRow) (*domain.SplitLine, error) {
	amount, err := money.New(r.AmountValue, r.AmountCurrency)
	if err != nil {
		return nil, err
	}
	return domain.SplitLineFromPersistedState(r.ID, r.TransactionID, r.EnvelopeID, amount, r.SortOrder), nil
}

func splitToRow(s *domain.SplitLine) *SplitLineRow {
	return &SplitLineRow{
		ID: s.ID, TransactionID: s.TransactionID, EnvelopeID: s.EnvelopeID,
		AmountValue: s.Amount.Amount(), AmountCurrency: s.Amount.Currency(), SortOrder: s.SortOrder,
	}
}

func budgetPeriodFromRow(r *BudgetPeriodRow) (*domain.BudgetPeriod, error) {
	currency := r.TotalIncomeCurrency
	income, err := money.New(r.TotalIncomeValue, currency)
	if err != nil {
		return nil, err
	}
	allocated, err := money.New(r.TotalAllocatedValue, currency)
	if err != nil {
		return nil, err
	}
	spent, err := money.New(r.TotalSpentValue, currency)
	if err != nil {
		return nil, err
	}
	carried, err := money.New(r.CarriedOverValue, currency)
	if err != nil {
		return nil, err
	}
	return domain.BudgetPeriodFromPersistedState(
		r.ID, r.Year, r.Month, income, allocated, spent, carried, r.IsClosed, r.CreatedAt, r.UpdatedAt,
	), nil
}

func budgetPeriodToRow(p *domain.BudgetPeriod) *BudgetPeriodRow {
	return &BudgetPeriodRow{
		ID: p.ID, Year: p.Year, Month: p.Month,
		TotalIncomeValue: p.TotalIncome.Amount(), TotalIncomeCurrency: p.TotalIncome.Currency(),
		TotalAllocatedValue: p.TotalAllocated.Amount(), TotalSpentValue: p.TotalSpent.Amount(),
		CarriedOverValue: p.CarriedOver.Amount(), IsClosed: p.IsClosed,
		CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func allocationFromRow(r *EnvelopeAllocationRow) (*domain.EnvelopeAllocation, error) {
	currency := r.AllocatedCurrency
	allocated, err := money.New(r.AllocatedValue, currency)
	if err != nil {
		return nil, err
	}
	rollover, err := money.New(r.RolloverFromPreviousValue, currency)
	if err != nil {
		return nil, err
	}
	spent, err := money.New(r.SpentValue, currency)
	if err != nil {
		return nil, err
	}
	return domain.EnvelopeAllocationFromPersistedState(
		r.ID, r.EnvelopeID, r.BudgetPeriodID, allocated, rollover, spent, r.CreatedAt, r.UpdatedAt,
	), nil
}

func allocationToRow(a *domain.EnvelopeAllocation) *EnvelopeAllocationRow {
	return &EnvelopeAllocationRow{
		ID: a.ID, EnvelopeID: a.EnvelopeID, BudgetPeriodID: a.BudgetPeriodID,
		AllocatedValue: a.Allocated.Amount(), AllocatedCurrency: a.Allocated.Currency(),
		RolloverFromPreviousValue: a.RolloverFromPrevious.Amount(), SpentValue: a.Spent.Amount(),
		CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
}

func payeeFromRow(r *PayeeRow) *domain.Payee {
	return domain.PayeeFromPersistedState(
		r.ID, r.Name, r.DefaultEnvelopeID, r.IsHidden, r.TransactionCount, r.LastUsedAt, r.CreatedAt, r.UpdatedAt,
	)
}

func payeeToRow(p *domain.Payee) *PayeeRow {
	return &PayeeRow{
		ID: p.ID, Name: p.Name, DefaultEnvelopeID: p.DefaultEnvelopeID, IsHidden: p.IsHidden,
		TransactionCount: p.TransactionCount, LastUsedAt: p.LastUsedAt, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func auditToRow(a *domain.AuditLog) *AuditLogRow {
	return &AuditLogRow{
		ID: a.ID, Action: a.Action, ResourceType: a.ResourceType, ResourceID: a.ResourceID,
		Details: a.Details, CreatedAt: a.CreatedAt,
	}
}
