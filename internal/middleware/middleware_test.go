package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobextract/internal/logger"
	"jobextract/internal/metrics"
	"jobextract/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedEngine(v *middleware.TokenValidator) *gin.Engine {
	r := gin.New()
	r.Use(middleware.AuthMiddleware(v))
	r.GET("/test", func(c *gin.Context) {
		sub, _ := middleware.GetSubject(c)
		c.JSON(http.StatusOK, gin.H{"subject": sub})
	})
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	v := middleware.NewTokenValidator("secret", "jobextract")
	token, err := v.IssueToken("ingest-bot", time.Hour)
	require.NoError(t, err)

	w := doGet(protectedEngine(v), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ingest-bot", resp["subject"])
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	v := middleware.NewTokenValidator("secret", "jobextract")
	w := doGet(protectedEngine(v), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doGet(protectedEngine(v), "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	v := middleware.NewTokenValidator("secret", "jobextract")

	expired, err := v.IssueToken("bot", -time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(protectedEngine(v), "Bearer "+expired).Code)

	other, err := middleware.NewTokenValidator("other-secret", "jobextract").IssueToken("bot", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(protectedEngine(v), "Bearer "+other).Code)

	wrongIssuer, err := middleware.NewTokenValidator("secret", "someone-else").IssueToken("bot", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(protectedEngine(v), "Bearer "+wrongIssuer).Code)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "bot", Issuer: "jobextract"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, doGet(protectedEngine(v), "Bearer "+none).Code)
}

func TestAuthMiddleware_DisabledWithoutValidator(t *testing.T) {
	w := doGet(protectedEngine(nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDAndLogger(t *testing.T) {
	var logs bytes.Buffer
	m := metrics.New(nil)

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger.New(&logs, "info", "json"), m))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/items/42", http.NoBody)
	req.Header.Set("X-Request-ID", "req-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "/items/42", entry["path"])
	assert.Equal(t, float64(http.StatusNoContent), entry["status"])

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "204")))

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/items/43", http.NoBody)
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
