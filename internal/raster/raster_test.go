package raster

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// stubRunner fakes pdftoppm by writing page files into the output directory.
type stubRunner struct {
	pages int
	err   error
	args  []string
}

func (s *stubRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.args = args
	if s.err != nil {
		return nil, []byte("stub failure"), s.err
	}
	prefix := args[len(args)-1]
	for i := 1; i <= s.pages; i++ {
		path := prefix + "-" + pad(i, s.pages) + ".png"
		if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

// pad mimics pdftoppm's zero-padding relative to the total page count.
func pad(n, total int) string {
	if total >= 10 && n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func TestRasterizeReturnsPagesInOrder(t *testing.T) {
	stub := &stubRunner{pages: 12}
	r := NewRasterizerWithRunner(Config{TempRoot: t.TempDir(), DPI: 300}, stub, nil)

	pages, cleanup, err := r.Rasterize(context.Background(), "in.pdf")
	if err != nil {
		t.Fatalf("Rasterize error: %v", err)
	}
	defer cleanup()

	if len(pages) != 12 {
		t.Fatalf("got %d pages, want 12", len(pages))
	}
	for i, p := range pages {
		if want := i + 1; pageNumber(p) != want {
			t.Errorf("pages[%d] = %s, want page %d", i, filepath.Base(p), want)
		}
	}
	// DPI flag passed through
	joined := strings.Join(stub.args, " ")
	if !strings.Contains(joined, "-r 300") {
		t.Errorf("pdftoppm args missing dpi: %v", stub.args)
	}
}

func TestRasterizeMaxPagesTruncates(t *testing.T) {
	stub := &stubRunner{pages: 5}
	r := NewRasterizerWithRunner(Config{TempRoot: t.TempDir(), MaxPages: 3}, stub, nil)

	pages, cleanup, err := r.Rasterize(context.Background(), "in.pdf")
	if err != nil {
		t.Fatalf("Rasterize error: %v", err)
	}
	defer cleanup()
	if len(pages) != 3 {
		t.Errorf("got %d pages, want 3", len(pages))
	}
}

func TestRasterizeCommandFailure(t *testing.T) {
	stub := &stubRunner{err: errors.New("exit status 1")}
	r := NewRasterizerWithRunner(Config{TempRoot: t.TempDir()}, stub, nil)

	_, cleanup, err := r.Rasterize(context.Background(), "in.pdf")
	if err == nil {
		t.Fatal("expected error from failing pdftoppm")
	}
	if cleanup == nil {
		t.Fatal("cleanup must be usable after command failure")
	}
	cleanup()
}

func TestRasterizeNoOutputIsError(t *testing.T) {
	stub := &stubRunner{pages: 0}
	r := NewRasterizerWithRunner(Config{TempRoot: t.TempDir()}, stub, nil)

	_, cleanup, err := r.Rasterize(context.Background(), "in.pdf")
	if err == nil {
		t.Fatal("expected error when no pages are rendered")
	}
	if cleanup != nil {
		cleanup()
	}
}

func TestCleanupRemovesTempDir(t *testing.T) {
	root := t.TempDir()
	stub := &stubRunner{pages: 2}
	r := NewRasterizerWithRunner(Config{TempRoot: root}, stub, nil)

	pages, cleanup, err := r.Rasterize(context.Background(), "in.pdf")
	if err != nil {
		t.Fatalf("Rasterize error: %v", err)
	}
	dir := filepath.Dir(pages[0])
	cleanup()
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("temp dir %s still exists after cleanup", dir)
	}
}
