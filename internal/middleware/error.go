package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "github.com/mcp-tool-shop-org/budgetwise/internal/errors"
	"github.com/mcp-tool-shop-org/budgetwise/internal/logger"
)

// ErrorHandler returns a Gin middleware that converts errors set on the Gin
// context into consistent JSON error responses. Orchestrator calls already
// report failures through their own Result envelope; this middleware only
// catches errors from request parsing and binding that happen before the
// orchestrator is ever reached.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			if appErr.Internal != nil {
				logger.Get().Errorw("app error",
					"code", appErr.Code,
					"message", appErr.Message,
					"internal", appErr.Internal.Error(),
					"path", c.Request.URL.Path,
				)
			}
			c.JSON(appErr.StatusCode, gin.H{
				"success": false,
				"errors": []gin.H{{
					"code":    appErr.Code,
					"message": appErr.Message,
					"target":  appErr.Target,
				}},
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
			"errors": []gin.H{{
				"code":    apperrors.ErrUnexpected.Code,
				"message": apperrors.ErrUnexpected.Message,
			}},
		})
	}
}
