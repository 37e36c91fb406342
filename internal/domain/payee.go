package domain

import (
	"strings"
	"time"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/uuid"
)

// NormalizePayeeName trims and collapses internal whitespace, the
// canonical form used for uniqueness and fingerprinting (spec §3, §4.G).
func NormalizePayeeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

// Payee is a unique counterparty name, optionally carrying a default
// envelope learned from past assignments (spec §4.E).
type Payee struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	DefaultEnvelopeID *string    `json:"defaultEnvelopeId,omitempty"`
	IsHidden          bool       `json:"isHidden"`
	TransactionCount  int        `json:"transactionCount"`
	LastUsedAt        *time.Time `json:"lastUsedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// NewPayee enforces a non-empty, normalized name.
func NewPayee(name string) (*Payee, error) {
	normalized := NormalizePayeeName(name)
	if normalized == "" {
		return nil, apperrors.WithTarget(apperrors.ErrValidation, "name")
	}
	now := time.Now().UTC()
	return &Payee{ID: uuid.New(), Name: normalized, CreatedAt: now, UpdatedAt: now}, nil
}

// PayeeFromPersistedState rehydrates a Payee from stored columns.
func PayeeFromPersistedState(
	id, name string, defaultEnvelopeID *string, isHidden bool, transactionCount int,
	lastUsedAt *time.Time, createdAt, updatedAt time.Time,
) *Payee {
	return &Payee{
		ID: id, Name: name, DefaultEnvelopeID: defaultEnvelopeID, IsHidden: isHidden,
		TransactionCount: transactionCount, LastUsedAt: lastUsedAt, CreatedAt: createdAt, UpdatedAt: updatedAt,
	}
}

// RecordUsage bumps the usage counter and stamps LastUsedAt; called every
// time a transaction is created against this payee (spec §4.E).
func (p *Payee) RecordUsage(at time.Time) {
	p.TransactionCount++
	p.LastUsedAt = &at
	p.UpdatedAt = time.Now().UTC()
}

// SetDefaultEnvelope records envelopeID as the payee's learned default,
// only if one is not already set (spec §4.E: "if the payee had no default
// envelope, record this assignment as the payee's default").
func (p *Payee) SetDefaultEnvelope(envelopeID string) {
	if p.DefaultEnvelopeID != nil {
		return
	}
	p.DefaultEnvelopeID = &envelopeID
	p.UpdatedAt = time.Now().UTC()
}

// Hide marks the payee hidden from default pickers without deleting it.
func (p *Payee) Hide() {
	p.IsHidden = true
	p.UpdatedAt = time.Now().UTC()
}
