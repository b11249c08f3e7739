package port

import (
	"context"

	"jobextract/internal/domain"
)

// ReportSender delivers batch reports to operators.
type ReportSender interface {
	SendBatchReport(ctx context.Context, report *domain.BatchReport) error
}
