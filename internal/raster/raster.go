package raster

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/lexfield/docpipe/internal/common"
)

// Config holds rasterization settings.
type Config struct {
	Pdftoppm string // binary name or absolute path; if empty -> "pdftoppm"
	DPI      int    // render resolution, default 300
	MaxPages int    // 0 = no limit
	TempRoot string // parent for job-scoped temp dirs; if empty -> os.TempDir()
}

// Rasterizer converts paged documents into per-page PNG images inside a
// job-scoped temporary directory. Each job gets its own directory; no
// cross-job reuse or deletion.
type Rasterizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewRasterizer(cfg Config, logger *slog.Logger) *Rasterizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.TempRoot == "" {
		cfg.TempRoot = os.TempDir()
	}
	return &Rasterizer{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// NewRasterizerWithRunner is for tests that stub the external command.
func NewRasterizerWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Rasterizer {
	r := NewRasterizer(cfg, logger)
	r.runner = runner
	return r
}

var rePageNum = regexp.MustCompile(`-(\d+)\.png$`)

// Rasterize renders every page of the PDF at the configured DPI.
// It returns the page image paths in strict page-number order and a cleanup
// function that removes the job's temporary directory. cleanup is non-nil
// even on error once the directory exists.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath string) (pages []string, cleanup func(), err error) {
	prefix := "docpipe-"
	if id := common.DocumentIDFromContext(ctx); id != "" {
		prefix = "docpipe-" + id + "-"
	}
	tmpDir, err := os.MkdirTemp(r.cfg.TempRoot, prefix+"*")
	if err != nil {
		return nil, nil, fmt.Errorf("create raster temp dir: %w", err)
	}
	cleanup = func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("failed to remove raster temp dir", "dir", tmpDir, "error", err)
		}
	}

	out := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, "-r", strconv.Itoa(r.cfg.DPI), "-png", pdfPath, out)
	if err != nil {
		return nil, cleanup, fmt.Errorf("pdftoppm: %w (stderr: %s)", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(out + "-*.png")
	sortByPageNumber(matches)
	if r.cfg.MaxPages > 0 && len(matches) > r.cfg.MaxPages {
		matches = matches[:r.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, cleanup, fmt.Errorf("pdftoppm produced no page images for %s", pdfPath)
	}

	r.logger.Debug("rasterized document", "path", pdfPath, "pages", len(matches), "dpi", r.cfg.DPI)
	return matches, cleanup, nil
}

// sortByPageNumber orders page files numerically. pdftoppm zero-pads page
// numbers, but only relative to the page count it saw; numeric sort is safe
// either way.
func sortByPageNumber(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		return pageNumber(paths[i]) < pageNumber(paths[j])
	})
}

func pageNumber(path string) int {
	m := rePageNum.FindStringSubmatch(path)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}
