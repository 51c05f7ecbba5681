package middleware

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storerating-backend/internal/errors"
)

// RecoveryMiddleware turns panics into the generic 500 response and logs the
// stack through the request logger.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered interface{}) {
		GetLoggerFromContext(c).Error("Panic recovered", fmt.Errorf("%v", recovered), map[string]interface{}{
			"path":  c.Request.URL.Path,
			"stack": string(debug.Stack()),
		})
		errors.InternalError(c, nil)
	})
}
