package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mcp-tool-shop-org/budgetwise/internal/engine"
)

// ReconciliationHandler wraps the reconciliation state machine (spec §4.H).
type ReconciliationHandler struct {
	orchestrator *engine.Orchestrator
}

func NewReconciliationHandler(orchestrator *engine.Orchestrator) *ReconciliationHandler {
	return &ReconciliationHandler{orchestrator: orchestrator}
}

type reconcileRequest struct {
	StatementDate            time.Time `json:"statementDate" binding:"required"`
	StatementEndingBalance   string    `json:"statementEndingBalance" binding:"required"`
	Currency                 string    `json:"currency" binding:"required,len=3,iso4217"`
	TransactionIDs           []string  `json:"transactionIds" binding:"required"`
	CreateAdjustmentIfNeeded bool      `json:"createAdjustmentIfNeeded"`
}

// Reconcile handles POST /accounts/:id/reconcile.
func (h *ReconciliationHandler) Reconcile(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}

	balance, err := goalAmount(req.StatementEndingBalance, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	in := engine.ReconcileInput{
		AccountID:                c.Param("id"),
		StatementDate:            req.StatementDate,
		StatementEndingBalance:   balance,
		TransactionIDs:           req.TransactionIDs,
		CreateAdjustmentIfNeeded: req.CreateAdjustmentIfNeeded,
	}
	respondResult(c, h.orchestrator.Reconcile(c.Request.Context(), in), http.StatusOK)
}
