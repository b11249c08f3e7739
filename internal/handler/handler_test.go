package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jobextract/internal/assembler"
	"jobextract/internal/converge"
	"jobextract/internal/domain"
	"jobextract/internal/extractor"
	"jobextract/internal/handler"
	"jobextract/internal/service"
	"jobextract/internal/splitter"
	"jobextract/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newExtractHandler(t *testing.T, maxBytes int64) *handler.ExtractHandler {
	t.Helper()
	dec, err := converge.NewDecoder()
	require.NoError(t, err)
	svc := service.NewExtractionService(splitter.Default(), assembler.New(extractor.DefaultRegistry(), nil), dec, nil, nil)
	return handler.NewExtractHandler(svc, maxBytes)
}

func post(h gin.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, target, strings.NewReader(body))
	h(c)
	return w
}

type textData struct {
	Label    string `json:"label"`
	Postings int    `json:"postings"`
	Records  []map[string]any
	Warnings []map[string]any
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, data any) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	resp.Data = data
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestExtractHandler_Text(t *testing.T) {
	h := newExtractHandler(t, 1<<20)
	body := "CATEGORY_LABEL\nJob Posting: job001.txt\nPosition: Engineer\nclasscode: 1234X\n" +
		"Salary starts at 50,000 and ends at 70,000\nRequired skills: Python.\n" +
		"Job Posting: job002.txt\nPosition: Tester\nSalary starts at ,,,\n"

	w := post(h.ExtractText, "/api/v1/extract/text?source=upload.txt", body)
	require.Equal(t, http.StatusOK, w.Code)

	var data textData
	resp := decodeData(t, w, &data)
	assert.True(t, resp.Success)
	assert.Equal(t, "CATEGORY_LABEL", data.Label)
	assert.Equal(t, 2, data.Postings)
	require.Len(t, data.Records, 2)
	assert.Equal(t, "Engineer", data.Records[0]["position"])
	assert.Equal(t, 50000.0, data.Records[0]["salary_start"])
	assert.Nil(t, data.Records[0]["notes"])
	assert.Len(t, data.Records[0], 16)

	require.Len(t, data.Warnings, 1)
	assert.Equal(t, float64(1), data.Warnings[0]["posting"])
	assert.Equal(t, "salary_start", data.Warnings[0]["field"])
	assert.Equal(t, ",", data.Warnings[0]["snippet"])
}

func TestExtractHandler_TextErrors(t *testing.T) {
	h := newExtractHandler(t, 64)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty", "", http.StatusBadRequest, "EMPTY_DOCUMENT"},
		{"binary", "X\n\x00", http.StatusUnprocessableEntity, "BINARY_DOCUMENT"},
		{"too large", strings.Repeat("a", 100), http.StatusRequestEntityTooLarge, "DOCUMENT_TOO_LARGE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(h.ExtractText, "/api/v1/extract/text", tt.body)
			assert.Equal(t, tt.status, w.Code)

			var resp handler.APIResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestExtractHandler_NonPositiveLimitUsesDefault(t *testing.T) {
	h := newExtractHandler(t, 0)

	w := post(h.ExtractText, "/api/v1/extract/text", "IT\nJob Posting: job1.txt\nPosition: Engineer\n")
	require.Equal(t, http.StatusOK, w.Code)

	var data textData
	decodeData(t, w, &data)
	require.Len(t, data.Records, 1)
	assert.Equal(t, "Engineer", data.Records[0]["position"])
}

func TestExtractHandler_JSON(t *testing.T) {
	h := newExtractHandler(t, 1<<20)
	body := `{"file_name":"A","position":"Dev","experience_length":"3"}
{"file_name":"A","duties":["x"]}`

	w := post(h.ExtractJSON, "/api/v1/extract/json", body)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Records    []map[string]any `json:"records"`
		Mismatches []string         `json:"mismatches"`
	}
	decodeData(t, w, &data)
	require.Len(t, data.Records, 1)
	assert.Equal(t, "Dev", data.Records[0]["position"])
	assert.Equal(t, float64(3), data.Records[0]["experience_length"])
	require.Len(t, data.Mismatches, 1)
	assert.Contains(t, data.Mismatches[0], "request[1]")
}

func TestExtractHandler_JSONSyntaxError(t *testing.T) {
	h := newExtractHandler(t, 1<<20)
	w := post(h.ExtractJSON, "/api/v1/extract/json", `{"file_name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNSUPPORTED_FORMAT")
}

func TestRecordsHandler_List(t *testing.T) {
	repo := new(mocks.MockJobPostingRepo)
	pos := "Engineer"
	stored := []domain.StoredRecord{{ID: uuid.New(), Record: domain.Record{FileName: "IT", Position: &pos}}}
	repo.On("List", mock.Anything, domain.RecordFilter{FileName: "IT"}, 10, 5).Return(stored, 11, nil)

	h := handler.NewRecordsHandler(repo)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/records?file_name=IT&offset=10&limit=5", http.NoBody)
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	var data []map[string]any
	resp := decodeData(t, w, &data)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, handler.PagMeta{Total: 11, Offset: 10, Limit: 5}, *resp.Meta)
	require.Len(t, data, 1)
	assert.Equal(t, "Engineer", data[0]["position"])
	assert.Equal(t, stored[0].ID.String(), data[0]["id"])
	repo.AssertExpectations(t)
}

func TestRecordsHandler_ListDefaultsAndError(t *testing.T) {
	repo := new(mocks.MockJobPostingRepo)
	repo.On("List", mock.Anything, domain.RecordFilter{}, 0, 20).Return(nil, 0, errors.New("db down"))

	h := handler.NewRecordsHandler(repo)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/records?limit=500&offset=-3", http.NoBody)
	h.List(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	repo.AssertExpectations(t)
}

type fixedStats service.WorkerStats

func (f fixedStats) Stats() service.WorkerStats { return service.WorkerStats(f) }

func TestStatsHandler(t *testing.T) {
	h := handler.NewStatsHandler(fixedStats{Batches: 2, Documents: 5, Records: 9, Skipped: 1})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/stats", http.NoBody)
	h.GetStats(c)

	require.Equal(t, http.StatusOK, w.Code)
	var data service.WorkerStats
	decodeData(t, w, &data)
	assert.Equal(t, service.WorkerStats{Batches: 2, Documents: 5, Records: 9, Skipped: 1}, data)
}

func TestHealthHandler(t *testing.T) {
	repo := new(mocks.MockJobPostingRepo)
	repo.On("Ping", mock.Anything).Return(errors.New("refused")).Once()
	repo.On("Ping", mock.Anything).Return(nil).Once()
	h := handler.NewHealthHandler(repo)

	get := func(fn gin.HandlerFunc) int {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request, _ = http.NewRequest(http.MethodGet, "/", http.NoBody)
		fn(c)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, get(h.Liveness))
	assert.Equal(t, http.StatusServiceUnavailable, get(h.Readiness))
	assert.Equal(t, http.StatusOK, get(h.Readiness))
	assert.Equal(t, http.StatusOK, get(handler.NewHealthHandler(nil).Readiness))
	repo.AssertExpectations(t)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{&domain.SplitError{Label: "x", Err: domain.ErrDocumentTooLarge}, http.StatusRequestEntityTooLarge},
		{&domain.SplitError{Label: "x", Err: domain.ErrBinaryDocument}, http.StatusUnprocessableEntity},
		{errors.Join(domain.ErrSinkUnavailable, errors.New("x")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _, _ := handler.MapDomainError(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}
