package sink

import (
	"context"
	"fmt"

	"jobextract/internal/domain"
	"jobextract/internal/port"
)

// Postgres inserts each batch into job_postings in one transaction.
type Postgres struct {
	repo port.JobPostingRepository
}

func NewPostgres(repo port.JobPostingRepository) *Postgres {
	return &Postgres{repo: repo}
}

func (p *Postgres) Write(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	if err := p.repo.InsertBatch(ctx, records); err != nil {
		return fmt.Errorf("postgres sink: %w", err)
	}
	return nil
}

// Close is a no-op; the database handle is owned by the caller.
func (p *Postgres) Close() error { return nil }
