package embed

import "context"

// Embedder turns a text chunk into a dense vector. Invoked once per chunk;
// failures are non-fatal for the owning job.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
