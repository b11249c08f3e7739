package noop

import (
	"context"
	"log/slog"

	"jobextract/internal/domain"
	"jobextract/internal/logger"
	"jobextract/internal/port"
)

type noopSender struct {
	logger *slog.Logger
}

// NewNoopSender creates a ReportSender that only logs the report summary.
func NewNoopSender(l *slog.Logger) port.ReportSender {
	return &noopSender{logger: logger.OrDefault(l).With("component", "noop_email")}
}

func (s *noopSender) SendBatchReport(_ context.Context, r *domain.BatchReport) error {
	s.logger.Info("batch report",
		"batch_id", r.BatchID,
		"documents", r.Documents,
		"records", r.Records,
		"skipped_documents", len(r.SkippedDocuments),
		"dropped_records", len(r.DroppedRecords),
		"field_warnings", r.FieldWarnings,
	)
	return nil
}
