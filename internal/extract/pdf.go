package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor reads the embedded text layer of a PDF. Scanned PDFs yield
// little or no text here; the caller falls back to OCR in that case.
type PDFExtractor struct {
	logger *slog.Logger
}

func NewPDFExtractor(logger *slog.Logger) *PDFExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFExtractor{logger: logger}
}

func (e *PDFExtractor) Extract(ctx context.Context, path string) (NativeResult, error) {
	select {
	case <-ctx.Done():
		return NativeResult{}, ctx.Err()
	default:
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return NativeResult{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	var parts []string
	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			e.logger.Warn("null page encountered", "path", path, "page_number", pageIndex)
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A broken page in the text layer is a fallback trigger for the
			// whole document, not a partial result.
			return NativeResult{}, fmt.Errorf("extract text from page %d: %w", pageIndex, err)
		}
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	e.logger.Debug("pdf text layer read",
		slog.Int("total_pages", totalPages),
		slog.Int("pages_with_text", len(parts)))

	return NativeResult{Text: strings.Join(parts, "\n\n"), Pages: totalPages}, nil
}
