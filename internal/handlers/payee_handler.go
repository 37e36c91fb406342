package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
)

// PayeeHandler exposes read access to payees and the typeahead payee
// search (SPEC_FULL.md's supplemented payee-search feature).
type PayeeHandler struct {
	factory repository.UnitOfWorkFactory
}

func NewPayeeHandler(factory repository.UnitOfWorkFactory) *PayeeHandler {
	return &PayeeHandler{factory: factory}
}

// SearchPayees handles GET /payees?q=.
func (h *PayeeHandler) SearchPayees(c *gin.Context) {
	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer uow.Rollback(c.Request.Context())

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	payees, err := uow.Payees().Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payees)
}

// GetPayee handles GET /payees/:id.
func (h *PayeeHandler) GetPayee(c *gin.Context) {
	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer uow.Rollback(c.Request.Context())

	payee, err := uow.Payees().GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, payee)
}
