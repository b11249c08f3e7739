package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"jobextract/internal/handler"
	"jobextract/internal/metrics"
	"jobextract/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware. recordsH
// may be nil when no database is configured; validator may be nil to leave
// the API unauthenticated.
func Setup(
	validator *middleware.TokenValidator,
	m *metrics.Metrics,
	logger *slog.Logger,
	extractH *handler.ExtractHandler,
	recordsH *handler.RecordsHandler,
	statsH *handler.StatsHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger, m))

	// Health checks and metrics
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", gin.WrapH(m.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(validator))

	extract := v1.Group("/extract")
	extract.POST("/text", extractH.ExtractText)
	extract.POST("/json", extractH.ExtractJSON)

	v1.GET("/stats", statsH.GetStats)
	if recordsH != nil {
		v1.GET("/records", recordsH.List)
	}

	return r
}
