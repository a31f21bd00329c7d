package extract

import (
	"context"
	"fmt"
	"os"
)

// TextExtractor is the passthrough reader for text/* files.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

func (e *TextExtractor) Extract(ctx context.Context, path string) (NativeResult, error) {
	select {
	case <-ctx.Done():
		return NativeResult{}, ctx.Err()
	default:
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return NativeResult{}, fmt.Errorf("read text file: %w", err)
	}
	return NativeResult{Text: string(data), Pages: 1}, nil
}
