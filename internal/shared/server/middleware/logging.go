package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tirescan-backend/internal/shared/metrics"
	"tirescan-backend/internal/shared/telemetry"
)

// quietRoutes are scraped or probed constantly; they log at debug.
var quietRoutes = map[string]bool{
	"/metrics":       true,
	"/api/v1/health": true,
}

// Logging writes one structured line per request and counts the response
// by status class. The route template is logged rather than the raw path
// so shop ids do not explode log cardinality; the ids travel as fields.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		metrics.ObserveHTTPResponse(status)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"route":       route,
			"status":      status,
			"bytes":       c.Writer.Size(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":   c.ClientIP(),
		}
		for key, field := range map[string]string{"analysisId": "analysis_id", "shopId": "shop_id"} {
			if v := c.GetString(key); v != "" {
				fields[field] = v
			}
		}

		switch {
		case status >= http.StatusInternalServerError:
			telemetry.Error("http.request", fields)
		case quietRoutes[route]:
			telemetry.Debug("http.request", fields)
		default:
			telemetry.Info("http.request", fields)
		}
	}
}
