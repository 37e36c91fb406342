package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	"github.com/mcp-tool-shop-org/budgetwise/internal/testutil"
)

func setupPayeeRouter(r *gin.Engine, h *PayeeHandler) {
	r.GET("/payees", h.SearchPayees)
	r.GET("/payees/:id", h.GetPayee)
}

func TestPayeeHandlerSearchPayeesFiltersByQuery(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewPayeeHandler(newHandlerFactory(db))
	r := gin.New()
	setupPayeeRouter(r, h)

	uow := testutil.NewUnitOfWork(t, db)
	grocer, err := domain.NewPayee("Corner Grocer")
	if err != nil {
		t.Fatalf("build payee: %v", err)
	}
	if err := uow.Payees().Add(context.Background(), grocer); err != nil {
		t.Fatalf("add payee: %v", err)
	}
	cafe, err := domain.NewPayee("Downtown Cafe")
	if err != nil {
		t.Fatalf("build payee: %v", err)
	}
	if err := uow.Payees().Add(context.Background(), cafe); err != nil {
		t.Fatalf("add payee: %v", err)
	}
	if err := uow.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	rec := doRequest(r, "GET", "/payees?q=Grocer", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payees []map[string]interface{}
	if err := parseJSONList(t, rec, &payees); err != nil {
		t.Fatalf("parse payees: %v", err)
	}
	if len(payees) != 1 || payees[0]["name"] != "Corner Grocer" {
		t.Fatalf("payees = %+v, want just Corner Grocer", payees)
	}
}

func TestPayeeHandlerGetPayeeReturns404ForUnknownID(t *testing.T) {
	db := setupHandlerDB(t)
	h := NewPayeeHandler(newHandlerFactory(db))
	r := gin.New()
	setupPayeeRouter(r, h)

	rec := doRequest(r, "GET", "/payees/does-not-exist", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}
