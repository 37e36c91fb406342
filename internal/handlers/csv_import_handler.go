package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mcp-tool-shop-org/budgetwise/internal/engine"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
)

// CSVImportHandler exposes the two-phase preview/commit CSV Import
// Pipeline (spec §4.G).
type CSVImportHandler struct {
	orchestrator *engine.Orchestrator
}

func NewCSVImportHandler(orchestrator *engine.Orchestrator) *CSVImportHandler {
	return &CSVImportHandler{orchestrator: orchestrator}
}

// PreviewImport handles POST /accounts/:id/import/preview (multipart
// file upload, field name "file").
func (h *CSVImportHandler) PreviewImport(c *gin.Context) {
	currency := c.DefaultPostForm("currency", "USD")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrValidation, "missing file upload"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrUnexpected, err))
		return
	}
	defer file.Close()

	result, err := h.orchestrator.PreviewCSVImport(c.Request.Context(), c.Param("id"), currency, file)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type confirmedRowRequest struct {
	Date        time.Time `json:"date" binding:"required"`
	Amount      string    `json:"amount" binding:"required"`
	Currency    string    `json:"currency" binding:"required,len=3,iso4217"`
	Payee       string    `json:"payee" binding:"required"`
	Memo        string    `json:"memo"`
	Fingerprint string    `json:"fingerprint" binding:"required"`
}

type commitImportRequest struct {
	Rows []confirmedRowRequest `json:"rows" binding:"required"`
}

// CommitImport handles POST /accounts/:id/import/commit.
func (h *CSVImportHandler) CommitImport(c *gin.Context) {
	var req commitImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}

	rows := make([]engine.ConfirmedRow, 0, len(req.Rows))
	for _, r := range req.Rows {
		d, err := decimal.NewFromString(r.Amount)
		if err != nil {
			respondWithError(c, apperrors.WithTarget(apperrors.ErrValidation, "rows.amount"))
			return
		}
		amount, err := money.New(d, r.Currency)
		if err != nil {
			respondWithError(c, err)
			return
		}
		rows = append(rows, engine.ConfirmedRow{
			Date: r.Date, Amount: amount, Payee: r.Payee, Memo: r.Memo, Fingerprint: r.Fingerprint,
		})
	}

	respondResult(c, h.orchestrator.CommitCSVImport(c.Request.Context(), c.Param("id"), rows), http.StatusOK)
}
