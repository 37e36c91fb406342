// Package store is the GORM+SQLite adapter that implements the
// internal/repository contracts. Row types here carry only GORM-friendly
// primitive columns (decimal.Decimal, string, *time.Time); domain.Money
// values are split into an amount/currency column pair on the way in and
// reassembled on the way out, since GORM's reflection-based mapping cannot
// see the domain package's unexported Money fields (grounded in
// internal/database's plain-struct row style, adapted from Postgres to
// SQLite columns).
package store

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountRow is the Accounts table row.
type AccountRow struct {
	ID                   string `gorm:"primaryKey"`
	Name                 string
	Type                 string
	BalanceAmount        decimal.Decimal
	BalanceCurrency      string
	ClearedAmount        decimal.Decimal
	ClearedCurrency      string
	UnclearedAmount      decimal.Decimal
	UnclearedCurrency    string
	IsActive             bool
	IsOnBudget           bool
	SortOrder            int
	Note                 string
	LastReconciledAt     *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (AccountRow) TableName() string { return "accounts" }

// EnvelopeRow is the Envelopes table row.
type EnvelopeRow struct {
	ID               string `gorm:"primaryKey"`
	Name             string
	GroupName        string
	Color            string
	SortOrder        int
	IsActive         bool
	IsHidden         bool
	GoalAmount       *decimal.Decimal
	GoalCurrency     *string
	GoalDate         *time.Time
	Note             string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (EnvelopeRow) TableName() string { return "envelopes" }

// TransactionRow is the Transactions table row.
type TransactionRow struct {
	ID                  string `gorm:"primaryKey"`
	AccountID           string `gorm:"index"`
	EnvelopeID          *string `gorm:"index"`
	TransferAccountID   *string
	LinkedTransactionID *string
	Date                time.Time `gorm:"index"`
	AmountValue         decimal.Decimal
	AmountCurrency      string
	Payee               string
	Memo                string
	Type                string
	IsCleared           bool
	IsReconciled        bool
	IsApproved          bool
	IsDeleted           bool `gorm:"index"`
	Fingerprint         string `gorm:"index"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (TransactionRow) TableName() string { return "transactions" }

// SplitLineRow is the TransactionSplitLines table row.
type SplitLineRow struct {
	ID             string `gorm:"primaryKey"`
	TransactionID  string `gorm:"index"`
	EnvelopeID     string `gorm:"index"`
	AmountValue    decimal.Decimal
	AmountCurrency string
	SortOrder      int
}

func (SplitLineRow) TableName() string { return "transaction_split_lines" }

// BudgetPeriodRow is the BudgetPeriods table row.
type BudgetPeriodRow struct {
	ID                   string `gorm:"primaryKey"`
	Year                 int    `gorm:"uniqueIndex:idx_budget_periods_year_month"`
	Month                int    `gorm:"uniqueIndex:idx_budget_periods_year_month"`
	TotalIncomeValue     decimal.Decimal
	TotalIncomeCurrency  string
	TotalAllocatedValue  decimal.Decimal
	TotalSpentValue      decimal.Decimal
	CarriedOverValue     decimal.Decimal
	IsClosed             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (BudgetPeriodRow) TableName() string { return "budget_periods" }

// EnvelopeAllocationRow is the EnvelopeAllocations table row.
type EnvelopeAllocationRow struct {
	ID                         string `gorm:"primaryKey"`
	EnvelopeID                 string `gorm:"uniqueIndex:idx_allocations_envelope_period"`
	BudgetPeriodID              string `gorm:"uniqueIndex:idx_allocations_envelope_period"`
	AllocatedValue              decimal.Decimal
	AllocatedCurrency           string
	RolloverFromPreviousValue   decimal.Decimal
	SpentValue                  decimal.Decimal
	CreatedAt                   time.Time
	UpdatedAt                   time.Time
}

func (EnvelopeAllocationRow) TableName() string { return "envelope_allocations" }

// PayeeRow is the Payees table row.
type PayeeRow struct {
	ID                string `gorm:"primaryKey"`
	Name              string `gorm:"uniqueIndex"`
	DefaultEnvelopeID *string
	IsHidden          bool
	TransactionCount  int
	LastUsedAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (PayeeRow) TableName() string { return "payees" }

// AuditLogRow is the AuditLogs table row.
type AuditLogRow struct {
	ID           string `gorm:"primaryKey"`
	Action       string
	ResourceType string
	ResourceID   string
	Details      string
	CreatedAt    time.Time `gorm:"index"`
}

func (AuditLogRow) TableName() string { return "audit_logs" }

// AllRows lists every row type, for the AutoMigrate call sites in the test
// helpers.
func AllRows() []interface{} {
	return []interface{}{
		&AccountRow{}, &EnvelopeRow{}, &TransactionRow{}, &SplitLineRow{},
		&BudgetPeriodRow{}, &EnvelopeAllocationRow{}, &PayeeRow{}, &AuditLogRow{},
	}
}
