package domain

import (
	"time"

	"github.com/mcp-tool-shop-org/budgetwise/internal/uuid"
)

// AuditLog records one mutating Budget Engine Orchestrator operation.
// Grounded in the reference's models.AuditLog/services.AuditService;
// adapted here to a single-user engine with no actor identity to record
// beyond the action itself (SPEC_FULL.md §SUPPLEMENTED FEATURES #3).
type AuditLog struct {
	ID           string    `json:"id"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId"`
	Details      string    `json:"details,omitempty"` // JSON-encoded before/after summary, informational only
	CreatedAt    time.Time `json:"createdAt"`
}

// NewAuditLog builds an audit entry for one orchestrator operation.
func NewAuditLog(action, resourceType, resourceID, details string) *AuditLog {
	return &AuditLog{
		ID:           uuid.New(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		CreatedAt:    time.Now().UTC(),
	}
}
