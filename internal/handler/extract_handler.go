package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobextract/internal/domain"
	"jobextract/internal/service"
	"jobextract/internal/splitter"
)

// ExtractHandler runs documents posted to the API through extraction
// without writing them to any sink.
type ExtractHandler struct {
	svc      service.ExtractionService
	maxBytes int64
}

// NewExtractHandler creates a new ExtractHandler. Request bodies larger
// than maxBytes are rejected; a non-positive maxBytes uses the splitter's
// default limit.
func NewExtractHandler(svc service.ExtractionService, maxBytes int64) *ExtractHandler {
	if maxBytes <= 0 {
		maxBytes = splitter.DefaultMaxBytes
	}
	return &ExtractHandler{svc: svc, maxBytes: maxBytes}
}

// warningResponse is one dropped field in a text extraction response.
type warningResponse struct {
	Posting int    `json:"posting"`
	Field   string `json:"field"`
	Cue     string `json:"cue"`
	Snippet string `json:"snippet"`
	Error   string `json:"error"`
}

type textResponse struct {
	Label    string            `json:"label"`
	Postings int               `json:"postings"`
	Records  []domain.Record   `json:"records"`
	Warnings []warningResponse `json:"warnings"`
}

type jsonResponse struct {
	Records    []domain.Record `json:"records"`
	Mismatches []string        `json:"mismatches"`
}

// ExtractText handles POST /api/v1/extract/text
func (h *ExtractHandler) ExtractText(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes))
	if err != nil {
		HandleError(c, err)
		return
	}
	if len(body) == 0 {
		HandleError(c, domain.ErrEmptyDocument)
		return
	}

	res, err := h.svc.ExtractText(c.Request.Context(), domain.RawDocument{
		Source:  c.DefaultQuery("source", "request"),
		Content: string(body),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	resp := textResponse{
		Label:    res.Label,
		Postings: res.Postings,
		Records:  nonNil(res.Records),
		Warnings: make([]warningResponse, 0, len(res.Warnings)),
	}
	for _, w := range res.Warnings {
		resp.Warnings = append(resp.Warnings, warningResponse{
			Posting: w.Posting,
			Field:   w.Field,
			Cue:     w.Cue,
			Snippet: w.Snippet,
			Error:   w.Err.Error(),
		})
	}
	RespondOK(c, resp)
}

// ExtractJSON handles POST /api/v1/extract/json
func (h *ExtractHandler) ExtractJSON(c *gin.Context) {
	source := c.DefaultQuery("source", "request")
	res, err := h.svc.ExtractJSON(c.Request.Context(), source, http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes))
	if err != nil {
		HandleError(c, err)
		return
	}

	resp := jsonResponse{
		Records:    nonNil(res.Records),
		Mismatches: make([]string, 0, len(res.Mismatches)),
	}
	for _, m := range res.Mismatches {
		resp.Mismatches = append(resp.Mismatches, m.Error())
	}
	RespondOK(c, resp)
}

func nonNil(records []domain.Record) []domain.Record {
	if records == nil {
		return []domain.Record{}
	}
	return records
}
