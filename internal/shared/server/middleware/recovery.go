package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"tirescan-backend/internal/shared/metrics"
	"tirescan-backend/internal/shared/server/respond"
	"tirescan-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into the standard 500 envelope. Gin's own
// recovery output is discarded; the panic is logged once, with the stack.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		metrics.IncHTTPPanic()
		telemetry.Error("http.panic", map[string]any{
			"request_id": RequestIDFromContext(c),
			"error":      rec,
			"route":      c.FullPath(),
			"method":     c.Request.Method,
			"stack":      string(debug.Stack()),
		})
		respond.Error(c, http.StatusInternalServerError, respond.CodeInternal, "Unexpected server error")
	})
}
