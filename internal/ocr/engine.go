package ocr

import "context"

// PageText is the outcome of recognizing a single page image.
type PageText struct {
	Text       string
	Confidence float64 // engine self-reported accuracy, 0-100
}

// Engine is one OCR engine instance. An engine is bound to a single job:
// created lazily on the job's first page, never shared across jobs, and
// closed exactly once when the job's page loop exits.
// Implementations are not required to be safe for concurrent use.
type Engine interface {
	Recognize(ctx context.Context, imagePath string) (PageText, error)
	Close() error
}

// Factory creates a fresh engine for a job. An error here is fatal for the
// job — there is no fallback recognizer.
type Factory func() (Engine, error)
