package handler

import (
	"github.com/gin-gonic/gin"

	"jobextract/internal/service"
)

// StatsProvider reports ingest worker counters.
type StatsProvider interface {
	Stats() service.WorkerStats
}

// StatsHandler handles worker statistics endpoints.
type StatsHandler struct {
	stats StatsProvider
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats StatsProvider) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(c *gin.Context) {
	RespondOK(c, h.stats.Stats())
}
