package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/docgen/internal/document"
)

// SQLiteStore persists records in a SQLite database. Use ":memory:" for
// an in-memory database or a file path for persistent storage.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens the database and creates the schema if needed.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		needs_content_update INTEGER NOT NULL DEFAULT 0,
		file_path TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_requests_updated_at ON requests(updated_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Put(ctx context.Context, rec *Record) error {
	if !ValidID(rec.ID) {
		return errInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	stateJSON, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("marshal state for %s: %w", rec.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO requests (id, state, needs_content_update, file_path, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			needs_content_update = excluded.needs_content_update,
			file_path = excluded.file_path,
			updated_at = excluded.updated_at`,
		rec.ID, string(stateJSON), boolInt(rec.NeedsContentUpdate), rec.FilePath,
		rec.CreatedAt.Unix(), rec.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert record %s: %w", rec.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*Record, error) {
	if !ValidID(id) {
		return nil, errInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, state, needs_content_update, file_path, created_at, updated_at
		FROM requests WHERE id = ?`, id)
	return scanRecord(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var stateJSON string
	var needsUpdate int
	var createdAt, updatedAt int64

	err := row.Scan(&rec.ID, &stateJSON, &needsUpdate, &rec.FilePath, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}

	rec.State = &document.State{}
	if err := json.Unmarshal([]byte(stateJSON), rec.State); err != nil {
		return nil, fmt.Errorf("decode state for %s: %w", rec.ID, err)
	}
	rec.NeedsContentUpdate = needsUpdate != 0
	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.UpdatedAt = time.Unix(updatedAt, 0)
	return &rec, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if !ValidID(id) {
		return errInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM requests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query(ctx, `
		SELECT id, state, needs_content_update, file_path, created_at, updated_at
		FROM requests ORDER BY updated_at DESC`)
}

func (s *SQLiteStore) ListStale(ctx context.Context, cutoff time.Time) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query(ctx, `
		SELECT id, state, needs_content_update, file_path, created_at, updated_at
		FROM requests WHERE updated_at < ? ORDER BY updated_at DESC`, cutoff.Unix())
}

func (s *SQLiteStore) query(ctx context.Context, q string, args ...any) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
