package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lexfield/docpipe/internal/common"
)

func TestOpenAIEmbedderParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Input != "chunk text" {
			t.Errorf("input = %q", req.Input)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data":  []map[string]any{{"embedding": []float32{0.5, -0.25}}},
			"usage": map[string]int{"total_tokens": 7},
		})
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder(common.EmbeddingConfig{APIKey: "test-key"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	vec, err := e.WithEndpoint(srv.URL).Embed(context.Background(), "chunk text")
	if err != nil {
		t.Fatalf("Embed error: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.5 || vec[1] != -0.25 {
		t.Errorf("vector = %v", vec)
	}
}

func TestOpenAIEmbedderNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limit"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e, _ := NewOpenAIEmbedder(common.EmbeddingConfig{APIKey: "test-key"}, nil)
	if _, err := e.WithEndpoint(srv.URL).Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestOpenAIEmbedderRequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIEmbedder(common.EmbeddingConfig{}, nil); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
