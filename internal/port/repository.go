package port

import (
	"context"

	"jobextract/internal/domain"
)

// JobPostingRepository defines the contract for canonical record persistence.
type JobPostingRepository interface {
	InsertBatch(ctx context.Context, records []domain.Record) error
	List(ctx context.Context, filter domain.RecordFilter, offset, limit int) ([]domain.StoredRecord, int, error)
	Ping(ctx context.Context) error
}
