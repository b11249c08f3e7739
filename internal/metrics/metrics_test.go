package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobextract/internal/metrics"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := metrics.New(nil)
	b := metrics.New(nil)

	a.PostingsTotal.Add(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(a.PostingsTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PostingsTotal))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := metrics.New(nil)
	m.DocumentsTotal.WithLabelValues("text", "ok").Inc()
	m.FieldWarningsTotal.WithLabelValues("salary_start").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `jobextract_documents_total{kind="text",status="ok"} 1`)
	assert.Contains(t, body, `jobextract_field_warnings_total{field="salary_start"} 1`)
}
