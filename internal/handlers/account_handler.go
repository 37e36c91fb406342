package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
)

// AccountHandler exposes plain CRUD over accounts. Account creation and
// renaming don't touch a budget period, so they bypass the orchestrator
// and go straight through a single-repository unit of work (spec §4.A).
type AccountHandler struct {
	factory repository.UnitOfWorkFactory
}

func NewAccountHandler(factory repository.UnitOfWorkFactory) *AccountHandler {
	return &AccountHandler{factory: factory}
}

type createAccountRequest struct {
	Name       string `json:"name" binding:"required"`
	Type       string `json:"type" binding:"required,account_type"`
	Currency   string `json:"currency" binding:"required,len=3,iso4217"`
	IsOnBudget bool   `json:"isOnBudget"`
}

// CreateAccount handles POST /accounts.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}

	account, err := domain.NewAccount(req.Name, domain.AccountType(req.Type), req.Currency, req.IsOnBudget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := uow.Accounts().Add(c.Request.Context(), account); err != nil {
		_ = uow.Rollback(c.Request.Context())
		respondWithError(c, err)
		return
	}
	if err := uow.Commit(c.Request.Context()); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// ListAccounts handles GET /accounts.
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer uow.Rollback(c.Request.Context())

	accounts, err := uow.Accounts().GetAll(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

// GetAccount handles GET /accounts/:id.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer uow.Rollback(c.Request.Context())

	account, err := uow.Accounts().GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

type updateAccountRequest struct {
	Name *string `json:"name"`
	Note *string `json:"note"`
}

// UpdateAccount handles PATCH /accounts/:id.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}

	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := uow.Accounts().GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = uow.Rollback(c.Request.Context())
		respondWithError(c, err)
		return
	}
	if req.Name != nil {
		if err := account.Rename(*req.Name); err != nil {
			_ = uow.Rollback(c.Request.Context())
			respondWithError(c, err)
			return
		}
	}
	if req.Note != nil {
		account.Note = *req.Note
	}
	if err := uow.Accounts().Update(c.Request.Context(), account); err != nil {
		_ = uow.Rollback(c.Request.Context())
		respondWithError(c, err)
		return
	}
	if err := uow.Commit(c.Request.Context()); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// CloseAccount handles POST /accounts/:id/close.
func (h *AccountHandler) CloseAccount(c *gin.Context) {
	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	account, err := uow.Accounts().GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = uow.Rollback(c.Request.Context())
		respondWithError(c, err)
		return
	}
	if err := account.Close(); err != nil {
		_ = uow.Rollback(c.Request.Context())
		respondWithError(c, err)
		return
	}
	if err := uow.Accounts().Update(c.Request.Context(), account); err != nil {
		_ = uow.Rollback(c.Request.Context())
		respondWithError(c, err)
		return
	}
	if err := uow.Commit(c.Request.Context()); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}
