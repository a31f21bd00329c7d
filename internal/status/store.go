package status

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lexfield/docpipe/constants"
	"github.com/lexfield/docpipe/internal/common"
)

// Record is the persisted state of one processing job.
type Record struct {
	DocumentID string
	Status     constants.JobStatus
	Error      string // failure message, empty otherwise
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Store persists job status in a sqlite table so status survives restarts and
// can be queried while the job runs. One row per document; re-submission of
// the same document id overwrites the previous row.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS job_status (
	document_id TEXT PRIMARY KEY,
	status      TEXT NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_job_status_status ON job_status (status);
`

// Open opens (and migrates) the status database. An empty path keeps the
// table in memory, which is what tests and one-shot CLI runs want.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "file:docpipe-status?mode=memory&cache=shared"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open status db: %w", err)
	}
	// sqlite allows one writer; serializing through a single connection
	// avoids SQLITE_BUSY under concurrent workers
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate status db: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SetStatus upserts the row for a document.
func (s *Store) SetStatus(ctx context.Context, documentID string, status constants.JobStatus, errMsg string) error {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_status (document_id, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (document_id) DO UPDATE SET
			status = excluded.status,
			error = excluded.error,
			updated_at = excluded.updated_at`,
		documentID, string(status), errMsg, now, now)
	if err != nil {
		return fmt.Errorf("set status for %s: %w", documentID, err)
	}
	return nil
}

// Get returns the record for a document, or common.ErrNotFound.
func (s *Store) Get(ctx context.Context, documentID string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT document_id, status, error, created_at, updated_at
		FROM job_status WHERE document_id = ?`, documentID)

	var rec Record
	var st string
	err := row.Scan(&rec.DocumentID, &st, &rec.Error, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("job %s: %w", documentID, common.ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get status for %s: %w", documentID, err)
	}
	rec.Status = constants.JobStatus(st)
	return rec, nil
}

// List returns records filtered by status, newest first. An empty status
// returns everything.
func (s *Store) List(ctx context.Context, status constants.JobStatus) ([]Record, error) {
	query := `SELECT document_id, status, error, created_at, updated_at FROM job_status`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list job status: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var st string
		if err := rows.Scan(&rec.DocumentID, &st, &rec.Error, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan job status row: %w", err)
		}
		rec.Status = constants.JobStatus(st)
		out = append(out, rec)
	}
	return out, rows.Err()
}
