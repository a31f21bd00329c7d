package status

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/lexfield/docpipe/constants"
	"github.com/lexfield/docpipe/internal/common"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "status.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStatusLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SetStatus(ctx, "doc-1", constants.JobStatusQueued, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.SetStatus(ctx, "doc-1", constants.JobStatusRunning, ""); err != nil {
		t.Fatal(err)
	}
	if err := s.SetStatus(ctx, "doc-1", constants.JobStatusFailed, "no text extracted"); err != nil {
		t.Fatal(err)
	}

	rec, err := s.Get(ctx, "doc-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != constants.JobStatusFailed {
		t.Errorf("status = %s, want FAILED", rec.Status)
	}
	if rec.Error != "no text extracted" {
		t.Errorf("error = %q", rec.Error)
	}
}

func TestStatusGetUnknown(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestStatusListFilter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, doc := range []struct {
		id string
		st constants.JobStatus
	}{
		{"doc-a", constants.JobStatusCompleted},
		{"doc-b", constants.JobStatusRunning},
		{"doc-c", constants.JobStatusCompleted},
	} {
		if err := s.SetStatus(ctx, doc.id, doc.st, ""); err != nil {
			t.Fatal(err)
		}
	}

	completed, err := s.List(ctx, constants.JobStatusCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if len(completed) != 2 {
		t.Errorf("completed count = %d, want 2", len(completed))
	}

	all, err := s.List(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("all count = %d, want 3", len(all))
	}
}
