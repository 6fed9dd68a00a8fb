package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tender-backend/internal/analysis"
	"tender-backend/internal/budget"
	"tender-backend/internal/cache"
	"tender-backend/internal/classification"
	"tender-backend/internal/config"
	"tender-backend/internal/session"
	"tender-backend/internal/shared/metrics"
	"tender-backend/internal/shared/server/middleware"
	"tender-backend/internal/shared/server/respond"
	"tender-backend/internal/tenders"
)

// RouterDeps carries the wired handlers the router mounts.
type RouterDeps struct {
	Config                config.Config
	AnalysisHandler       *analysis.Handler
	ClassificationHandler *classification.Handler
	TendersHandler        *tenders.Handler
	BudgetHandler         *budget.Handler
	CacheHandler          *cache.Handler
	SessionHandler        *session.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(rateLimits()),
	)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.ClassificationHandler != nil {
		deps.ClassificationHandler.RegisterRoutes(api)
	}
	if deps.TendersHandler != nil {
		deps.TendersHandler.RegisterRoutes(api)
	}
	if deps.BudgetHandler != nil {
		deps.BudgetHandler.RegisterRoutes(api)
	}
	if deps.CacheHandler != nil {
		deps.CacheHandler.RegisterRoutes(api)
	}
	if deps.SessionHandler != nil {
		deps.SessionHandler.RegisterRoutes(api)
	}

	return r
}

// rateLimits throttles the endpoints that fan out paid work. Status
// polling runs every 2 seconds per in-flight tender, so its bucket is
// generous.
func rateLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"analyze": {Rate: 1, Burst: 12},
			"status":  {Rate: 20, Burst: 60},
		},
		GroupFor: func(c *gin.Context) string {
			path := c.FullPath()
			switch {
			case path == "/api/tender/:id/analyze" || path == "/api/batch-analyze":
				return "analyze"
			case path == "/api/tender/:id/analysis-status":
				return "status"
			default:
				return ""
			}
		},
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
