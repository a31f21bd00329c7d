package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/lexfield/docpipe/internal/common"
)

const defaultEndpoint = "https://api.openai.com/v1/embeddings"

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// OpenAIEmbedder calls the OpenAI embeddings endpoint. One chunk per request;
// the pipeline treats a failed chunk as a warning, so no internal retry.
type OpenAIEmbedder struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

func NewOpenAIEmbedder(cfg common.EmbeddingConfig, logger *slog.Logger) (*OpenAIEmbedder, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding api key not configured: %w", common.ErrInvalidInput)
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-ada-002"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIEmbedder{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}, nil
}

// WithEndpoint overrides the API endpoint. Used by tests and proxies.
func (e *OpenAIEmbedder) WithEndpoint(url string) *OpenAIEmbedder {
	e.endpoint = url
	return e
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	payload, err := json.Marshal(embeddingRequest{Input: text, Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embedding service returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("no embedding data received")
	}

	e.logger.Debug("embedding generated",
		slog.Int("dimensions", len(parsed.Data[0].Embedding)),
		slog.Int("total_tokens", parsed.Usage.TotalTokens))
	return parsed.Data[0].Embedding, nil
}
