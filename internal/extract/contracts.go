package extract

import (
	"context"
)

// NativeResult is the outcome of direct text extraction (no OCR involved).
type NativeResult struct {
	Text  string
	Pages int
}

// NativeExtractor attempts to read text straight from the source file:
// a PDF's embedded text layer, a plain text file, a word-processor document.
// An error (or a short yield) is a fallback trigger for paged formats, not a
// job failure; the router decides.
type NativeExtractor interface {
	Extract(ctx context.Context, path string) (NativeResult, error)
}
