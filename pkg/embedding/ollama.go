package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/jobscout/jobscout/internal/config"
)

// OllamaClient embeds via a local Ollama instance. No credential is involved,
// so Available is always true; reachability problems surface as transient
// errors from EmbedBatch.
type OllamaClient struct {
	api   *api.Client
	model string
}

func NewOllamaClient(cfg config.EmbeddingConfig) (*OllamaClient, error) {
	base := cfg.BaseURL
	if base == "" {
		base = "http://localhost:11434"
	}
	u, err := url.ParseRequestURI(base)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &OllamaClient{api: api.NewClient(u, httpClient), model: cfg.Model}, nil
}

func (c *OllamaClient) Available() bool { return true }

func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (c *OllamaClient) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	resp, err := c.api.Embed(ctx, &api.EmbedRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama returned %d vectors for %d inputs", len(resp.Embeddings), len(texts))
	}

	out := make([][]float64, len(resp.Embeddings))
	for i, v := range resp.Embeddings {
		vec := make([]float64, len(v))
		for j, f := range v {
			vec[j] = float64(f)
		}
		out[i] = vec
	}
	return out, nil
}
