package textproc

import "strings"

// Chunking defaults tuned for embedding generation.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	MinChunkSize        = 100
)

// separators in preference order: paragraph break, line break, sentence end, word.
var separators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", ", ", " "}

// Chunk splits normalized text into overlapping fragments sized for embedding
// generation. Break points prefer paragraph and sentence boundaries; fragments
// shorter than MinChunkSize are dropped.
func Chunk(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
	}
	text = strings.TrimSpace(text)
	if len(text) < MinChunkSize {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			end = breakBefore(text, start, end)
		}
		piece := strings.TrimSpace(text[start:end])
		if len(piece) >= MinChunkSize {
			chunks = append(chunks, piece)
		}
		if end >= len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return chunks
}

// breakBefore finds the best split position in text[start:limit], scanning the
// separator list in preference order. Falls back to the hard limit when the
// window contains no separator.
func breakBefore(text string, start, limit int) int {
	window := text[start:limit]
	for _, sep := range separators {
		if i := strings.LastIndex(window, sep); i > 0 {
			cut := start + i + len(sep)
			// avoid degenerate tiny head pieces
			if cut-start >= MinChunkSize {
				return cut
			}
		}
	}
	return limit
}
