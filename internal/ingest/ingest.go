package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lexfield/docpipe/constants"
	"github.com/lexfield/docpipe/internal/pipeline"
	"github.com/lexfield/docpipe/internal/scheduler"
)

// Admission is the per-file outcome of ingestion.
type Admission struct {
	SourcePath   string
	DocumentID   string
	MimeType     string
	Deduplicated bool // content hash already seen; not enqueued
	HashHex      string
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Enqueuer admits jobs for processing. Satisfied by *scheduler.Scheduler.
type Enqueuer interface {
	Enqueue(ctx context.Context, job scheduler.Job) error
}

// Ingestor turns filesystem paths into processing jobs. Duplicate content
// (by sha256) is reported but not re-enqueued.
type Ingestor struct {
	queue       Enqueuer
	opts        pipeline.Options
	logger      *slog.Logger
	allowedExts map[string]struct{}

	mu   sync.Mutex
	seen map[string]string // content hash -> document id
}

func NewIngestor(queue Enqueuer, opts pipeline.Options, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		queue:       queue,
		opts:        opts,
		logger:      logger,
		allowedExts: constants.AllowedExtensions,
		seen:        make(map[string]string),
	}
}

// IngestPath admits a single file. Unsupported extensions are an error;
// duplicates return the original document id with Deduplicated set.
func (i *Ingestor) IngestPath(ctx context.Context, path string) (Admission, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Admission{SourcePath: path}, fmt.Errorf("resolve path: %w", err)
	}
	out := Admission{SourcePath: abs}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if _, ok := i.allowedExts[ext]; !ok {
		return out, fmt.Errorf("extension %q is not allowed", ext)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return out, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() {
		return out, errors.New("path is a directory, use IngestDirectory")
	}

	hash, err := hashFile(abs)
	if err != nil {
		return out, fmt.Errorf("hash file: %w", err)
	}
	out.HashHex = hash

	i.mu.Lock()
	if prior, ok := i.seen[hash]; ok {
		i.mu.Unlock()
		out.DocumentID = prior
		out.Deduplicated = true
		i.logger.Info("duplicate content skipped", "path", abs, "document_id", prior)
		return out, nil
	}
	documentID := uuid.NewString()
	i.seen[hash] = documentID
	i.mu.Unlock()

	out.DocumentID = documentID
	out.MimeType = constants.MimeTypeForExt(ext)

	err = i.queue.Enqueue(ctx, scheduler.Job{
		DocumentID: documentID,
		FilePath:   abs,
		MimeType:   out.MimeType,
		Options:    i.opts,
	})
	if err != nil {
		i.mu.Lock()
		delete(i.seen, hash)
		i.mu.Unlock()
		return out, fmt.Errorf("enqueue %s: %w", abs, err)
	}
	i.logger.Info("file admitted", "path", abs, "document_id", documentID, "mime_type", out.MimeType)
	return out, nil
}

// IngestDirectory walks root and admits every allowed file. Per-file failures
// are recorded in the admissions, not raised.
func (i *Ingestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]Admission, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var admissions []Admission
	var stats DirStats
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if skipHidden && IsHidden(path) && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		stats.Scanned++
		if skipHidden && IsHidden(path) {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		adm, err := i.IngestPath(ctx, path)
		switch {
		case err != nil:
			adm.Err = err.Error()
			stats.Failed++
		case adm.Deduplicated:
			stats.Deduplicated++
		default:
			stats.Succeeded++
		}
		admissions = append(admissions, adm)
		return nil
	})
	if err != nil {
		return admissions, stats, fmt.Errorf("walk %s: %w", root, err)
	}

	i.logger.Info("directory ingested", "root", root,
		"scanned", stats.Scanned, "matched", stats.Matched,
		"succeeded", stats.Succeeded, "deduplicated", stats.Deduplicated, "failed", stats.Failed)
	return admissions, stats, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
