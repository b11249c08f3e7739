package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobextract/internal/assembler"
	"jobextract/internal/converge"
	"jobextract/internal/extractor"
	"jobextract/internal/handler"
	"jobextract/internal/metrics"
	"jobextract/internal/middleware"
	"jobextract/internal/router"
	"jobextract/internal/service"
	"jobextract/internal/splitter"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type noStats struct{}

func (noStats) Stats() service.WorkerStats { return service.WorkerStats{} }

func newEngine(t *testing.T, v *middleware.TokenValidator) *gin.Engine {
	t.Helper()
	dec, err := converge.NewDecoder()
	require.NoError(t, err)
	m := metrics.New(nil)
	svc := service.NewExtractionService(splitter.Default(), assembler.New(extractor.DefaultRegistry(), nil), dec, m, nil)
	return router.Setup(v, m, nil,
		handler.NewExtractHandler(svc, 1<<20),
		nil,
		handler.NewStatsHandler(noStats{}),
		handler.NewHealthHandler(nil),
	)
}

func serve(r *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_PublicRoutes(t *testing.T) {
	r := newEngine(t, middleware.NewTokenValidator("secret", "jobextract"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/readyz", "", "").Code)

	w := serve(r, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRouter_APIRequiresToken(t *testing.T) {
	v := middleware.NewTokenValidator("secret", "jobextract")
	r := newEngine(t, v)

	doc := "L\nJob Posting: job1.txt\nPosition: Clerk\n"
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/api/v1/extract/text", doc, "").Code)

	token, err := v.IssueToken("tester", time.Minute)
	require.NoError(t, err)
	w := serve(r, http.MethodPost, "/api/v1/extract/text", doc, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"position":"Clerk"`)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/api/v1/stats", "", token).Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/v1/records", "", token).Code)
}

func TestRouter_OpenWithoutValidator(t *testing.T) {
	r := newEngine(t, nil)
	w := serve(r, http.MethodPost, "/api/v1/extract/json", `{"file_name":"X"}`, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"file_name":"X"`)
}
