package port

import (
	"context"
	"io"

	"jobextract/internal/domain"
)

// DocumentSource discovers input files and opens them for reading.
type DocumentSource interface {
	Discover(ctx context.Context) ([]domain.InputFile, error)
	Open(ctx context.Context, f domain.InputFile) (io.ReadCloser, error)
	// Handles reports whether f was discovered by this source.
	Handles(f domain.InputFile) bool
}
