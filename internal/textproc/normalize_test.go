package textproc

import (
	"strings"
	"testing"
)

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"spaces", "hello    world", "hello world"},
		{"tabs", "hello\t\tworld", "hello world"},
		{"crlf", "line one\r\nline two", "line one\nline two"},
		{"blank lines", "a\n\n\n\n\nb", "a\n\nb"},
		{"trim", "   padded   ", "padded"},
		{"trailing line space", "a   \nb", "a\nb"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeStripsNonPrintable(t *testing.T) {
	in := "case\x00 ref\x07erence\x1b"
	want := "case reference"
	if got := Normalize(in); got != want {
		t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"WITNESS   STATEMENT\r\n\r\n\r\nof John\tDoe\x0c dated 2024-01-01",
		"already normalized text\n\nwith a paragraph break",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent: first %q, second %q", once, twice)
		}
	}
}

func TestChunkRespectsSizes(t *testing.T) {
	text := strings.Repeat("The claimant served notice on the defendant. ", 120) // ~5400 chars
	chunks := Chunk(text, DefaultChunkSize, DefaultChunkOverlap)
	if len(chunks) < 4 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) < MinChunkSize {
			t.Errorf("chunk %d below minimum size: %d", i, len(c))
		}
		if len(c) > DefaultChunkSize {
			t.Errorf("chunk %d exceeds target size: %d", i, len(c))
		}
	}
}

func TestChunkShortTextYieldsNothing(t *testing.T) {
	if got := Chunk("too short", DefaultChunkSize, DefaultChunkOverlap); got != nil {
		t.Errorf("expected no chunks for short text, got %d", len(got))
	}
}

func TestChunkPrefersSentenceBoundaries(t *testing.T) {
	text := strings.Repeat("First sentence here. ", 100)
	chunks := Chunk(text, 300, 50)
	for i, c := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(c, ".") {
			t.Errorf("chunk %d does not end on a sentence boundary: %q", i, c[len(c)-20:])
		}
	}
}
