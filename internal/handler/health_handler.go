package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobextract/internal/port"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	repo port.JobPostingRepository
}

// NewHealthHandler creates a new HealthHandler. repo may be nil when no
// database is configured; readiness then only reports the process is up.
func NewHealthHandler(repo port.JobPostingRepository) *HealthHandler {
	return &HealthHandler{repo: repo}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.repo != nil {
		if err := h.repo.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
