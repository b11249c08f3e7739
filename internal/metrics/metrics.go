// Package metrics defines the Prometheus collectors for the extraction
// pipeline and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	DocumentsTotal        *prometheus.CounterVec
	PostingsTotal         prometheus.Counter
	RecordsTotal          *prometheus.CounterVec
	FieldWarningsTotal    *prometheus.CounterVec
	SchemaMismatchesTotal prometheus.Counter
	BatchesTotal          *prometheus.CounterVec
	BatchDuration         prometheus.Histogram
	SinkWritesTotal       *prometheus.CounterVec
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh registry, which keeps tests independent of the global one.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		DocumentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobextract_documents_total",
				Help: "Input documents processed, by source kind and outcome (ok, skipped, failed).",
			},
			[]string{"kind", "status"},
		),
		PostingsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jobextract_postings_total",
				Help: "Postings split out of text documents.",
			},
		),
		RecordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobextract_records_total",
				Help: "Canonical records produced, by source kind.",
			},
			[]string{"kind"},
		),
		FieldWarningsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobextract_field_warnings_total",
				Help: "Fields dropped because the cue matched but the value could not be converted.",
			},
			[]string{"field"},
		),
		SchemaMismatchesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "jobextract_schema_mismatches_total",
				Help: "JSON objects dropped for not matching the canonical schema.",
			},
		),
		BatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobextract_batches_total",
				Help: "Micro-batches run by the ingest worker, by outcome.",
			},
			[]string{"status"},
		),
		BatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "jobextract_batch_duration_seconds",
				Help:    "Wall time of one micro-batch.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		SinkWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobextract_sink_writes_total",
				Help: "Record batches written to sinks, by sink and outcome.",
			},
			[]string{"sink", "status"},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.DocumentsTotal,
		m.PostingsTotal,
		m.RecordsTotal,
		m.FieldWarningsTotal,
		m.SchemaMismatchesTotal,
		m.BatchesTotal,
		m.BatchDuration,
		m.SinkWritesTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
	)
	return m
}

// Handler returns the scrape handler for the registry the metrics were
// registered with.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
