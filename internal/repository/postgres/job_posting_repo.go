package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"jobextract/internal/domain"
	"jobextract/internal/port"
)

type jobPostingRepo struct {
	db *sqlx.DB
}

// NewJobPostingRepo creates a new PostgreSQL-backed JobPostingRepository.
func NewJobPostingRepo(db *sqlx.DB) port.JobPostingRepository {
	return &jobPostingRepo{db: db}
}

// InsertQuery is the single-row insert used for every record of a batch.
var InsertQuery = buildInsertQuery()

func buildInsertQuery() string {
	cols := append([]string{"id", "created_at"}, domain.ColumnNames()...)
	params := make([]string, len(cols))
	for i := range cols {
		params[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO job_postings (%s) VALUES (%s)",
		strings.Join(cols, ", "), strings.Join(params, ", "))
}

// InsertBatch stores all records in one transaction; either every record of
// the batch is written or none is.
func (r *jobPostingRepo) InsertBatch(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("jobPostingRepo.InsertBatch begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, InsertQuery)
	if err != nil {
		return fmt.Errorf("jobPostingRepo.InsertBatch prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range records {
		args := append([]any{uuid.New(), now}, records[i].Values()...)
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("jobPostingRepo.InsertBatch record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("jobPostingRepo.InsertBatch commit: %w", err)
	}
	return nil
}

func (r *jobPostingRepo) List(ctx context.Context, filter domain.RecordFilter, offset, limit int) ([]domain.StoredRecord, int, error) {
	where := ""
	var args []any
	if filter.FileName != "" {
		where = " WHERE file_name = $1"
		args = append(args, filter.FileName)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM job_postings"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("jobPostingRepo.List count: %w", err)
	}

	query := fmt.Sprintf("SELECT * FROM job_postings%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	records := []domain.StoredRecord{}
	if err := r.db.SelectContext(ctx, &records, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("jobPostingRepo.List: %w", err)
	}
	return records, total, nil
}

func (r *jobPostingRepo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("jobPostingRepo.Ping: %w", err)
	}
	return nil
}
