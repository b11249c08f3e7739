package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"jobextract/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS processed_files (
	location     TEXT PRIMARY KEY,
	kind         TEXT NOT NULL,
	fingerprint  TEXT NOT NULL,
	processed_at TIMESTAMP NOT NULL
)`

// SQLiteStore keeps checkpoints in a local SQLite file. A lock file next to
// the database keeps two workers from sharing it.
type SQLiteStore struct {
	db   *sql.DB
	lock *flock.Flock
	now  func() time.Time
}

// OpenSQLite opens or creates the checkpoint database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("checkpoint: mkdir: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("checkpoint: lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("checkpoint: %s: %w", path, domain.ErrCheckpointLocked)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("checkpoint: open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("checkpoint: schema: %w", err)
	}
	return &SQLiteStore{db: db, lock: lock, now: time.Now}, nil
}

func (s *SQLiteStore) Seen(ctx context.Context, f domain.InputFile) (bool, error) {
	var fingerprint string
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint FROM processed_files WHERE location = ?`, f.Location,
	).Scan(&fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqliteStore.Seen: %w", err)
	}
	return fingerprint == f.Fingerprint(), nil
}

func (s *SQLiteStore) Mark(ctx context.Context, files []domain.InputFile) error {
	if len(files) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqliteStore.Mark: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO processed_files (location, kind, fingerprint, processed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(location) DO UPDATE SET
			kind = excluded.kind,
			fingerprint = excluded.fingerprint,
			processed_at = excluded.processed_at`)
	if err != nil {
		return fmt.Errorf("sqliteStore.Mark: %w", err)
	}
	defer stmt.Close()

	now := s.now().UTC()
	for _, f := range files {
		if _, err := stmt.ExecContext(ctx, f.Location, string(f.Kind), f.Fingerprint(), now); err != nil {
			return fmt.Errorf("sqliteStore.Mark %s: %w", f.Location, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqliteStore.Mark: %w", err)
	}
	return nil
}

// Count returns the number of checkpointed files.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processed_files`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqliteStore.Count: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	if uerr := s.lock.Unlock(); err == nil {
		err = uerr
	}
	return err
}
