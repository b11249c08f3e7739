package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"jobextract/internal/domain"
	"jobextract/internal/logger"
	"jobextract/internal/metrics"
	"jobextract/internal/port"
)

type namedSink struct {
	kind domain.SinkKind
	sink port.RecordSink
}

// Multi fans each batch out to every configured sink, in configuration
// order. A failing sink does not stop the others; the batch fails if any
// sink failed.
type Multi struct {
	sinks   []namedSink
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewMulti(m *metrics.Metrics, l *slog.Logger) *Multi {
	return &Multi{metrics: m, logger: logger.OrDefault(l).With("component", "sink")}
}

// Add appends a sink under the given kind.
func (m *Multi) Add(kind domain.SinkKind, s port.RecordSink) {
	m.sinks = append(m.sinks, namedSink{kind: kind, sink: s})
}

// Kinds returns the configured sink kinds in order.
func (m *Multi) Kinds() []domain.SinkKind {
	out := make([]domain.SinkKind, len(m.sinks))
	for i, s := range m.sinks {
		out[i] = s.kind
	}
	return out
}

func (m *Multi) Write(ctx context.Context, records []domain.Record) error {
	var errs []error
	for _, s := range m.sinks {
		status := "ok"
		if err := s.sink.Write(ctx, records); err != nil {
			status = "error"
			m.logger.Error("sink write failed", "sink", s.kind, "records", len(records), "error", err)
			errs = append(errs, fmt.Errorf("%w: %s: %w", domain.ErrSinkUnavailable, s.kind, err))
		}
		if m.metrics != nil {
			m.metrics.SinkWritesTotal.WithLabelValues(string(s.kind), status).Inc()
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink, even after a failure.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s sink: %w", s.kind, err))
		}
	}
	return errors.Join(errs...)
}
