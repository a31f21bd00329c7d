package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/lexfield/docpipe/internal/pipeline"
)

// DocumentStore persists finished processing results to Postgres: one row per
// document plus its chunks, with pgvector embeddings where present.
// Persistence is a downstream sink; a failed save never fails the job.
type DocumentStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func New(ctx context.Context, databaseURL string, logger *slog.Logger) (*DocumentStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DocumentStore{pool: pool, logger: logger}, nil
}

func (s *DocumentStore) Close() {
	s.pool.Close()
}

// Migrate creates the result tables. The embedding dimension matches
// text-embedding-ada-002.
func (s *DocumentStore) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS documents (
			id BIGSERIAL PRIMARY KEY,
			document_id TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			pages INT NOT NULL,
			language TEXT NOT NULL DEFAULT '',
			document_type TEXT NOT NULL,
			quality TEXT NOT NULL,
			extraction_method TEXT NOT NULL,
			processing_ms BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS document_chunks (
			id BIGSERIAL PRIMARY KEY,
			document_ref BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			chunk_index INT NOT NULL,
			content TEXT NOT NULL,
			embedding vector(1536),
			UNIQUE (document_ref, chunk_index)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate result tables: %w", err)
		}
	}
	return nil
}

// SaveResult writes the document and its chunks in one transaction.
// Re-processing the same document id replaces the previous rows.
func (s *DocumentStore) SaveResult(ctx context.Context, res *pipeline.Result) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var rowID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO documents (document_id, content, confidence, pages, language,
			document_type, quality, extraction_method, processing_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (document_id) DO UPDATE SET
			content = excluded.content,
			confidence = excluded.confidence,
			pages = excluded.pages,
			language = excluded.language,
			document_type = excluded.document_type,
			quality = excluded.quality,
			extraction_method = excluded.extraction_method,
			processing_ms = excluded.processing_ms,
			created_at = now()
		RETURNING id`,
		res.DocumentID, res.Text, res.Confidence, res.Pages, res.Metadata.Language,
		string(res.Metadata.DocumentType), string(res.Metadata.Quality),
		string(res.Metadata.ExtractionMethod), res.ProcessingTime.Milliseconds(),
	).Scan(&rowID)
	if err != nil {
		return fmt.Errorf("store document %s: %w", res.DocumentID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM document_chunks WHERE document_ref = $1`, rowID); err != nil {
		return fmt.Errorf("clear previous chunks for %s: %w", res.DocumentID, err)
	}
	for _, chunk := range res.Chunks {
		var embedding any
		if chunk.Embedding != nil {
			embedding = pgvector.NewVector(chunk.Embedding)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO document_chunks (document_ref, chunk_index, content, embedding)
			VALUES ($1, $2, $3, $4)`,
			rowID, chunk.Index, chunk.Text, embedding)
		if err != nil {
			return fmt.Errorf("store chunk %d of %s: %w", chunk.Index, res.DocumentID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save for %s: %w", res.DocumentID, err)
	}
	s.logger.Debug("result persisted",
		"document_id", res.DocumentID, "chunks", len(res.Chunks))
	return nil
}

// SinkHandler adapts the store to the scheduler's completion hook. Failed
// jobs have no result and are skipped; save errors are logged, not raised.
func (s *DocumentStore) SinkHandler(timeout time.Duration) func(string, *pipeline.Result, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return func(documentID string, res *pipeline.Result, jobErr error) {
		if jobErr != nil || res == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := s.SaveResult(ctx, res); err != nil {
			s.logger.Error("failed to persist result", "document_id", documentID, "error", err)
		}
	}
}
