package port

import (
	"context"

	"jobextract/internal/domain"
)

// CheckpointStore remembers which input files have already been processed.
type CheckpointStore interface {
	// Seen reports whether f was processed with its current fingerprint.
	Seen(ctx context.Context, f domain.InputFile) (bool, error)
	Mark(ctx context.Context, files []domain.InputFile) error
	Close() error
}
