package ingest

import (
	"context"
	"fmt"
	"io"

	"jobextract/internal/domain"
	"jobextract/internal/port"
)

// MultiSource combines several sources into one.
type MultiSource []port.DocumentSource

// Discover concatenates every source's files, keeping a stable overall order.
func (m MultiSource) Discover(ctx context.Context) ([]domain.InputFile, error) {
	var all []domain.InputFile
	for _, s := range m {
		files, err := s.Discover(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, files...)
	}
	SortFiles(all)
	return all, nil
}

// Open routes f to the source that discovered it.
func (m MultiSource) Open(ctx context.Context, f domain.InputFile) (io.ReadCloser, error) {
	for _, s := range m {
		if s.Handles(f) {
			return s.Open(ctx, f)
		}
	}
	return nil, fmt.Errorf("no source handles %s: %w", f.Location, domain.ErrNotFound)
}

func (m MultiSource) Handles(f domain.InputFile) bool {
	for _, s := range m {
		if s.Handles(f) {
			return true
		}
	}
	return false
}
