package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/mcp-tool-shop-org/budgetwise/internal/engine"
	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/logger"
)

// respondWithError writes a consistent JSON error response in the same
// {success, errors} envelope engine.Result uses, so every failure this
// API returns — whether it came from request binding or the orchestrator
// itself — has one shape.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"success": false,
			"errors":  []gin.H{{"code": appErr.Code, "message": appErr.Message, "target": appErr.Target}},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrUnexpected.StatusCode, gin.H{
		"success": false,
		"errors":  []gin.H{{"code": apperrors.ErrUnexpected.Code, "message": apperrors.ErrUnexpected.Message}},
	})
}

// respondResult maps an engine.Result to its HTTP response: okStatus on
// success, or the first error's mapped status on failure.
func respondResult(c *gin.Context, result *engine.Result, okStatus int) {
	if result.Success {
		c.JSON(okStatus, result)
		return
	}
	status := 422
	if len(result.Errors) > 0 {
		switch result.Errors[0].Code {
		case apperrors.Validation:
			status = 400
		case apperrors.InvalidOperation:
			status = 409
		case apperrors.NotImplemented:
			status = 501
		case apperrors.Unexpected:
			status = 500
		}
	}
	c.JSON(status, result)
}
