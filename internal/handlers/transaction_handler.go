package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mcp-tool-shop-org/budgetwise/internal/engine"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/pagination"
	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
)

// TransactionHandler wraps every mutating transaction operation through
// the Orchestrator and every read directly through a unit of work
// (spec §4.E, §4.I).
type TransactionHandler struct {
	orchestrator *engine.Orchestrator
	factory      repository.UnitOfWorkFactory
}

func NewTransactionHandler(orchestrator *engine.Orchestrator, factory repository.UnitOfWorkFactory) *TransactionHandler {
	return &TransactionHandler{orchestrator: orchestrator, factory: factory}
}

type splitRequest struct {
	EnvelopeID string `json:"envelopeId" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
}

type createTransactionRequest struct {
	Type       string          `json:"type" binding:"required,transaction_type"`
	AccountID  string          `json:"accountId"`
	ToAccountID string         `json:"toAccountId"`
	Date       time.Time       `json:"date" binding:"required"`
	Amount     string          `json:"amount" binding:"required"`
	Currency   string          `json:"currency" binding:"required,len=3,iso4217"`
	Payee      string          `json:"payee"`
	Memo       string          `json:"memo"`
	EnvelopeID *string         `json:"envelopeId"`
	Splits     []splitRequest  `json:"splits"`
}

func parseSplits(raw []splitRequest, currency string) ([]engine.SplitInput, error) {
	splits := make([]engine.SplitInput, 0, len(raw))
	for _, s := range raw {
		d, err := decimal.NewFromString(s.Amount)
		if err != nil {
			return nil, apperrors.WithTarget(apperrors.ErrValidation, "splits.amount")
		}
		amount, err := money.New(d, currency)
		if err != nil {
			return nil, err
		}
		splits = append(splits, engine.SplitInput{EnvelopeID: s.EnvelopeID, Amount: amount})
	}
	return splits, nil
}

// CreateTransaction handles POST /transactions, dispatching on type to
// CreateInflow, CreateOutflow, or CreateTransfer.
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}

	d, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondWithError(c, apperrors.WithTarget(apperrors.ErrValidation, "amount"))
		return
	}
	amount, err := money.New(d, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	switch req.Type {
	case "inflow":
		respondResult(c, h.orchestrator.CreateInflow(ctx, req.AccountID, req.Date, amount, req.Payee, req.Memo), http.StatusCreated)
	case "outflow":
		splits, err := parseSplits(req.Splits, req.Currency)
		if err != nil {
			respondWithError(c, err)
			return
		}
		respondResult(c, h.orchestrator.CreateOutflow(ctx, req.AccountID, req.Date, amount, req.Payee, req.EnvelopeID, splits, req.Memo), http.StatusCreated)
	case "transfer":
		respondResult(c, h.orchestrator.CreateTransfer(ctx, req.AccountID, req.ToAccountID, req.Date, amount, req.Memo), http.StatusCreated)
	}
}

type updateTransactionRequest struct {
	Date       *time.Time     `json:"date"`
	Amount     *string        `json:"amount"`
	Currency   string         `json:"currency"`
	Payee      *string        `json:"payee"`
	Memo       *string        `json:"memo"`
	EnvelopeID *string        `json:"envelopeId"`
	Splits     []splitRequest `json:"splits"`
}

// UpdateTransaction handles PATCH /transactions/:id.
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var req updateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}

	patch := engine.TransactionPatch{Date: req.Date, Payee: req.Payee, Memo: req.Memo, EnvelopeID: req.EnvelopeID}
	if req.Amount != nil {
		d, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			respondWithError(c, apperrors.WithTarget(apperrors.ErrValidation, "amount"))
			return
		}
		amount, err := money.New(d, req.Currency)
		if err != nil {
			respondWithError(c, err)
			return
		}
		patch.Amount = &amount
	}
	if len(req.Splits) > 0 {
		splits, err := parseSplits(req.Splits, req.Currency)
		if err != nil {
			respondWithError(c, err)
			return
		}
		patch.Splits = splits
	}

	respondResult(c, h.orchestrator.UpdateTransaction(c.Request.Context(), c.Param("id"), patch), http.StatusOK)
}

// DeleteTransaction handles DELETE /transactions/:id.
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	respondResult(c, h.orchestrator.DeleteTransaction(c.Request.Context(), c.Param("id")), http.StatusOK)
}

// MarkCleared handles POST /transactions/:id/clear.
func (h *TransactionHandler) MarkCleared(c *gin.Context) {
	respondResult(c, h.orchestrator.MarkCleared(c.Request.Context(), c.Param("id")), http.StatusOK)
}

// MarkUncleared handles POST /transactions/:id/unclear.
func (h *TransactionHandler) MarkUncleared(c *gin.Context) {
	respondResult(c, h.orchestrator.MarkUncleared(c.Request.Context(), c.Param("id")), http.StatusOK)
}

type assignEnvelopeRequest struct {
	EnvelopeID string `json:"envelopeId" binding:"required"`
}

// AssignToEnvelope handles POST /transactions/:id/envelope.
func (h *TransactionHandler) AssignToEnvelope(c *gin.Context) {
	var req assignEnvelopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}
	respondResult(c, h.orchestrator.AssignToEnvelope(c.Request.Context(), c.Param("id"), req.EnvelopeID), http.StatusOK)
}

// ListAccountTransactions handles GET /accounts/:id/transactions.
func (h *TransactionHandler) ListAccountTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}
	page.Defaults()

	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer uow.Rollback(c.Request.Context())

	txns, err := uow.Transactions().ByAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	start, end := page.Slice(len(txns))
	c.JSON(http.StatusOK, pagination.NewPageResponse(txns[start:end], page.Page, page.PageSize, int64(len(txns))))
}

// GetTransaction handles GET /transactions/:id.
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer uow.Rollback(c.Request.Context())

	txn, err := uow.Transactions().GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}
