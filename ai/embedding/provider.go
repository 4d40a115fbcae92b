// Package embedding produces dense vectors for turn text via an
// OpenAI-compatible embeddings endpoint.
package embedding

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Config represents embedding service configuration.
type Config struct {
	Model   string
	APIKey  string
	BaseURL string
}

// Provider embeds text into fixed-dimension vectors.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

type provider struct {
	client *openai.Client
	model  string
}

// NewProvider creates an embeddings Provider.
func NewProvider(cfg *Config) Provider {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &provider{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

func (p *provider) Model() string {
	return p.model
}

func (p *provider) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}

	return resp.Data[0].Embedding, nil
}
