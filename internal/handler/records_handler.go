package handler

import (
	"github.com/gin-gonic/gin"

	"jobextract/internal/domain"
	"jobextract/internal/port"
)

// RecordsHandler serves records persisted by the Postgres sink.
type RecordsHandler struct {
	repo port.JobPostingRepository
}

// NewRecordsHandler creates a new RecordsHandler.
func NewRecordsHandler(repo port.JobPostingRepository) *RecordsHandler {
	return &RecordsHandler{repo: repo}
}

// List handles GET /api/v1/records
func (h *RecordsHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	filter := domain.RecordFilter{FileName: c.Query("file_name")}

	records, total, err := h.repo.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, records, PagMeta{Total: total, Offset: offset, Limit: limit})
}
