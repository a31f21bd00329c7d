package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lexfield/docpipe/internal/pipeline"
	"github.com/lexfield/docpipe/internal/scheduler"
)

type fakeQueue struct {
	mu   sync.Mutex
	jobs []scheduler.Job
}

func (f *fakeQueue) Enqueue(_ context.Context, job scheduler.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, job)
	return nil
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIngestPathEnqueuesJob(t *testing.T) {
	q := &fakeQueue{}
	ing := NewIngestor(q, pipeline.DefaultOptions(), nil)
	path := writeFile(t, t.TempDir(), "brief.pdf", "pdf bytes")

	adm, err := ing.IngestPath(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestPath error: %v", err)
	}
	if adm.DocumentID == "" || adm.Deduplicated {
		t.Errorf("admission = %+v", adm)
	}
	if adm.MimeType != "application/pdf" {
		t.Errorf("mime = %q, want application/pdf", adm.MimeType)
	}
	if len(q.jobs) != 1 || q.jobs[0].DocumentID != adm.DocumentID {
		t.Errorf("jobs = %+v", q.jobs)
	}
}

func TestIngestPathRejectsDisallowedExtension(t *testing.T) {
	q := &fakeQueue{}
	ing := NewIngestor(q, pipeline.Options{}, nil)
	path := writeFile(t, t.TempDir(), "archive.zip", "zip bytes")

	if _, err := ing.IngestPath(context.Background(), path); err == nil {
		t.Fatal("expected error for disallowed extension")
	}
	if len(q.jobs) != 0 {
		t.Errorf("disallowed file was enqueued: %+v", q.jobs)
	}
}

func TestIngestPathDeduplicatesByContent(t *testing.T) {
	q := &fakeQueue{}
	ing := NewIngestor(q, pipeline.Options{}, nil)
	dir := t.TempDir()
	a := writeFile(t, dir, "a.pdf", "identical bytes")
	b := writeFile(t, dir, "b.pdf", "identical bytes")

	first, err := ing.IngestPath(context.Background(), a)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ing.IngestPath(context.Background(), b)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Deduplicated {
		t.Error("duplicate content not detected")
	}
	if second.DocumentID != first.DocumentID {
		t.Errorf("duplicate mapped to %s, want %s", second.DocumentID, first.DocumentID)
	}
	if len(q.jobs) != 1 {
		t.Errorf("enqueued %d jobs, want 1", len(q.jobs))
	}
}

func TestIngestDirectoryFiltersAndCounts(t *testing.T) {
	q := &fakeQueue{}
	ing := NewIngestor(q, pipeline.Options{}, nil)
	dir := t.TempDir()
	writeFile(t, dir, "claim.pdf", "claim")
	writeFile(t, dir, "scan.png", "scan")
	writeFile(t, dir, "notes.txt", "notes")
	writeFile(t, dir, "ignore.exe", "binary")
	writeFile(t, dir, ".hidden.pdf", "hidden")

	admissions, stats, err := ing.IngestDirectory(context.Background(), dir, true)
	if err != nil {
		t.Fatalf("IngestDirectory error: %v", err)
	}
	if stats.Matched != 3 {
		t.Errorf("matched = %d, want 3", stats.Matched)
	}
	if stats.Succeeded != 3 {
		t.Errorf("succeeded = %d, want 3", stats.Succeeded)
	}
	if len(admissions) != 3 {
		t.Errorf("admissions = %d, want 3", len(admissions))
	}
	if len(q.jobs) != 3 {
		t.Errorf("enqueued %d jobs, want 3", len(q.jobs))
	}
}
