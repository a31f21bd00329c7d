package pipeline

import (
	"time"

	"github.com/lexfield/docpipe/constants"
	"github.com/lexfield/docpipe/internal/classify"
)

// Metadata summarizes how the text was obtained and what it looks like.
type Metadata struct {
	Language         string
	DocumentType     constants.DocumentType
	Quality          constants.Quality
	ExtractionMethod constants.ExtractionMethod
}

// Chunk is a text fragment sized for embedding generation. Embedding is nil
// unless embeddings were requested and the generator succeeded for it.
type Chunk struct {
	Index     int
	Text      string
	Embedding []float32
}

// Result is the sole artifact returned to callers. Immutable once built:
// either the caller gets a complete Result (possibly with warnings in
// ProcessingLog) or an error, never both.
type Result struct {
	DocumentID     string
	Text           string
	Confidence     float64 // aggregate, 0-100
	Pages          int     // >= 1 for any returned result
	ProcessingTime time.Duration
	Metadata       Metadata
	LegalEntities  *classify.Entities
	Chunks         []Chunk
	ProcessingLog  []string // ordered human-readable trace
}

// pageResult is the per-page outcome inside the OCR loop. Aggregated then
// discarded; only the summary survives in Result.
type pageResult struct {
	PageNumber int // 1-based
	Text       string
	Confidence float64
}
