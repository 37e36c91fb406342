package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mcp-tool-shop-org/budgetwise/internal/domain"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/money"
	"github.com/mcp-tool-shop-org/budgetwise/internal/repository"
)

// EnvelopeHandler exposes plain CRUD over envelopes and their group
// listing; savings-goal changes go through the Orchestrator since they
// are allocation concerns (spec §4.B, §4.F).
type EnvelopeHandler struct {
	factory repository.UnitOfWorkFactory
}

func NewEnvelopeHandler(factory repository.UnitOfWorkFactory) *EnvelopeHandler {
	return &EnvelopeHandler{factory: factory}
}

type createEnvelopeRequest struct {
	Name  string `json:"name" binding:"required"`
	Group string `json:"group"`
	Color string `json:"color" binding:"hex_color"`
}

// CreateEnvelope handles POST /envelopes.
func (h *EnvelopeHandler) CreateEnvelope(c *gin.Context) {
	var req createEnvelopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}

	envelope, err := domain.NewEnvelope(req.Name, req.Group, req.Color)
	if err != nil {
		respondWithError(c, err)
		return
	}

	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	if err := uow.Envelopes().Add(c.Request.Context(), envelope); err != nil {
		_ = uow.Rollback(c.Request.Context())
		respondWithError(c, err)
		return
	}
	if err := uow.Commit(c.Request.Context()); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, envelope)
}

// ListEnvelopes handles GET /envelopes.
func (h *EnvelopeHandler) ListEnvelopes(c *gin.Context) {
	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer uow.Rollback(c.Request.Context())

	envelopes, err := uow.Envelopes().GetAll(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelopes)
}

// ListGroups handles GET /envelopes/groups.
func (h *EnvelopeHandler) ListGroups(c *gin.Context) {
	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer uow.Rollback(c.Request.Context())

	groups, err := uow.Envelopes().DistinctGroups(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

// GetEnvelope handles GET /envelopes/:id.
func (h *EnvelopeHandler) GetEnvelope(c *gin.Context) {
	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}
	defer uow.Rollback(c.Request.Context())

	envelope, err := uow.Envelopes().GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope)
}

type updateEnvelopeRequest struct {
	Name    *string `json:"name"`
	Group   *string `json:"group"`
	Color   *string `json:"color"`
	Archive bool    `json:"archive"`
}

// UpdateEnvelope handles PATCH /envelopes/:id.
func (h *EnvelopeHandler) UpdateEnvelope(c *gin.Context) {
	var req updateEnvelopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}

	uow, err := h.factory.Begin(c.Request.Context())
	if err != nil {
		respondWithError(c, err)
		return
	}

	envelope, err := uow.Envelopes().GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = uow.Rollback(c.Request.Context())
		respondWithError(c, err)
		return
	}
	if req.Name != nil {
		if err := envelope.Rename(*req.Name); err != nil {
			_ = uow.Rollback(c.Request.Context())
			respondWithError(c, err)
			return
		}
	}
	if req.Group != nil {
		envelope.Group = *req.Group
	}
	if req.Color != nil {
		envelope.Color = *req.Color
	}
	if req.Archive {
		envelope.Archive()
	}
	if err := uow.Envelopes().Update(c.Request.Context(), envelope); err != nil {
		_ = uow.Rollback(c.Request.Context())
		respondWithError(c, err)
		return
	}
	if err := uow.Commit(c.Request.Context()); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope)
}

// goalAmount converts a request's decimal string amount into money.Money,
// a small shared helper for the handlers that accept goal/allocation
// amounts over JSON.
func goalAmount(raw, currency string) (money.Money, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return money.Money{}, apperrors.WithTarget(apperrors.ErrValidation, "amount")
	}
	return money.New(d, currency)
}
