package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tirescan-backend/internal/analysis"
	"tirescan-backend/internal/services/health"
	"tirescan-backend/internal/shared/config"
	"tirescan-backend/internal/shared/metrics"
	"tirescan-backend/internal/shared/server/middleware"
	"tirescan-backend/internal/shared/server/respond"
	"tirescan-backend/internal/shops"
)

// RouterDeps carries handlers and dependencies for routing.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analysis.Handler
	ShopsHandler    *shops.Handler
	Health          *health.Service
	AnalyzeThrottle *middleware.Throttle
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if config.IsDevLike(deps.Config.Env) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(deps.Health))

	if deps.AnalysisHandler != nil {
		throttle := deps.AnalyzeThrottle
		if throttle == nil {
			throttle = middleware.NewThrottle("analyze", deps.Config.AnalyzeRate, deps.Config.AnalyzeBurst, nil)
		}
		deps.AnalysisHandler.RegisterRoutes(api, throttle.Handler())
	}
	if deps.ShopsHandler != nil {
		deps.ShopsHandler.RegisterRoutes(api)
	}

	return r
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	if svc == nil {
		svc = health.NewService(nil)
	}
	return func(c *gin.Context) {
		results, ok := svc.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.Status(c, status, gin.H{"ok": ok, "checks": results})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
