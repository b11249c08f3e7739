package port

import (
	"context"

	"jobextract/internal/domain"
)

// RecordSink receives the merged record stream, one batch at a time.
type RecordSink interface {
	Write(ctx context.Context, records []domain.Record) error
	Close() error
}
