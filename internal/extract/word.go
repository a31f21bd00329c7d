package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"code.sajari.com/docconv/v2"

	"github.com/lexfield/docpipe/constants"
)

// WordExtractor converts .doc/.docx documents to text via docconv.
type WordExtractor struct {
	logger *slog.Logger
}

func NewWordExtractor(logger *slog.Logger) *WordExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &WordExtractor{logger: logger}
}

func (e *WordExtractor) Extract(ctx context.Context, path string) (NativeResult, error) {
	select {
	case <-ctx.Done():
		return NativeResult{}, ctx.Err()
	default:
	}

	f, err := os.Open(path)
	if err != nil {
		return NativeResult{}, fmt.Errorf("open word document: %w", err)
	}
	defer f.Close()

	mimeType := constants.MimeTypeForExt(filepath.Ext(path))
	result, err := docconv.Convert(f, mimeType, false)
	if err != nil {
		return NativeResult{}, fmt.Errorf("convert word document: %w", err)
	}
	if len(result.Body) == 0 {
		return NativeResult{}, fmt.Errorf("no text content extracted from word document")
	}

	e.logger.Debug("word document converted",
		slog.String("path", path),
		slog.Int("text_length", len(result.Body)))

	return NativeResult{Text: result.Body, Pages: 1}, nil
}
