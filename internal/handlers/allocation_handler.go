package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mcp-tool-shop-org/budgetwise/internal/engine"
)

// AllocationHandler wraps the allocation-side operations of the Budget
// Engine Orchestrator: setting/adjusting/moving allocated amounts,
// savings goals, auto-assign, and month-end rollover (spec §4.F, §4.I).
type AllocationHandler struct {
	orchestrator *engine.Orchestrator
}

func NewAllocationHandler(orchestrator *engine.Orchestrator) *AllocationHandler {
	return &AllocationHandler{orchestrator: orchestrator}
}

type setAllocationRequest struct {
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency" binding:"required,len=3,iso4217"`
	Year     int    `json:"year" binding:"required"`
	Month    int    `json:"month" binding:"required,min=1,max=12"`
}

// SetAllocation handles PUT /envelopes/:id/allocation.
func (h *AllocationHandler) SetAllocation(c *gin.Context) {
	var req setAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}
	amount, err := goalAmount(req.Amount, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondResult(c, h.orchestrator.SetAllocation(c.Request.Context(), c.Param("id"), amount, req.Year, req.Month), http.StatusOK)
}

type adjustAllocationRequest struct {
	Delta    string `json:"delta" binding:"required"`
	Currency string `json:"currency" binding:"required,len=3,iso4217"`
	Year     int    `json:"year" binding:"required"`
	Month    int    `json:"month" binding:"required,min=1,max=12"`
}

// AdjustAllocation handles POST /envelopes/:id/allocation/adjust.
func (h *AllocationHandler) AdjustAllocation(c *gin.Context) {
	var req adjustAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}
	delta, err := goalAmount(req.Delta, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondResult(c, h.orchestrator.AdjustAllocation(c.Request.Context(), c.Param("id"), delta, req.Year, req.Month), http.StatusOK)
}

type moveAllocationRequest struct {
	ToEnvelopeID string `json:"toEnvelopeId" binding:"required"`
	Amount       string `json:"amount" binding:"required"`
	Currency     string `json:"currency" binding:"required,len=3,iso4217"`
	Year         int    `json:"year" binding:"required"`
	Month        int    `json:"month" binding:"required,min=1,max=12"`
}

// MoveAllocation handles POST /envelopes/:id/allocation/move.
func (h *AllocationHandler) MoveAllocation(c *gin.Context) {
	var req moveAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}
	amount, err := goalAmount(req.Amount, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondResult(c, h.orchestrator.Move(c.Request.Context(), c.Param("id"), req.ToEnvelopeID, amount, req.Year, req.Month), http.StatusOK)
}

type setGoalRequest struct {
	Amount     string     `json:"amount" binding:"required"`
	Currency   string     `json:"currency" binding:"required,len=3,iso4217"`
	TargetDate *time.Time `json:"targetDate"`
}

// SetGoal handles PUT /envelopes/:id/goal.
func (h *AllocationHandler) SetGoal(c *gin.Context) {
	var req setGoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}
	amount, err := goalAmount(req.Amount, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}
	respondResult(c, h.orchestrator.SetGoal(c.Request.Context(), c.Param("id"), amount, req.TargetDate), http.StatusOK)
}

type autoAssignRequest struct {
	Mode  string `json:"mode" binding:"required,auto_assign_mode"`
	Year  int    `json:"year" binding:"required"`
	Month int    `json:"month" binding:"required,min=1,max=12"`
}

// AutoAssignToGoals handles POST /budget-periods/auto-assign; the year and
// month come from the JSON body.
func (h *AllocationHandler) AutoAssignToGoals(c *gin.Context) {
	var req autoAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}
	respondResult(c, h.orchestrator.AutoAssignToGoals(c.Request.Context(), engine.AutoAssignMode(req.Mode), req.Year, req.Month), http.StatusOK)
}

type rolloverRequest struct {
	Year  int `json:"year" binding:"required"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// Rollover handles POST /budget-periods/rollover.
func (h *AllocationHandler) Rollover(c *gin.Context) {
	var req rolloverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "errors": []gin.H{{"message": err.Error()}}})
		return
	}
	respondResult(c, h.orchestrator.Rollover(c.Request.Context(), req.Year, req.Month), http.StatusOK)
}
