package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func setupReconciliationRouter(r *gin.Engine, h *ReconciliationHandler) {
	r.POST("/accounts/:id/reconcile", h.Reconcile)
}

func TestReconciliationHandlerReconcileAgainstUnknownAccountFails(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewReconciliationHandler(newHandlerOrchestrator(db))
	r := gin.New()
	setupReconciliationRouter(r, h)

	body := `{"statementDate":"2026-08-01T00:00:00Z","statementEndingBalance":"100.00","currency":"USD","transactionIds":[]}`
	rec := doRequest(r, "POST", "/accounts/does-not-exist/reconcile", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 (respondResult maps a VALIDATION error code to 400), got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["success"] != false {
		t.Fatalf("expected success=false for unknown account, got %+v", result)
	}
}

func TestReconciliationHandlerReconcileMatchesStatementBalanceWithNoTransactions(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewReconciliationHandler(newHandlerOrchestrator(db))
	r := gin.New()
	setupReconciliationRouter(r, h)

	accountID := seedAccount(t, db)
	body := `{"statementDate":"2026-08-01T00:00:00Z","statementEndingBalance":"0.00","currency":"USD","transactionIds":[]}`
	rec := doRequest(r, "POST", "/accounts/"+accountID+"/reconcile", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["success"] != true {
		t.Fatalf("expected success=true reconciling a zero-balance account against zero statement, got %+v", result)
	}
}
