// Package openai implements pkg/embeddings' Embedder over the OpenAI
// embeddings API, or any server that speaks it.
package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/papercomputeco/kotori/pkg/embeddings"
	"github.com/papercomputeco/kotori/pkg/vector"
)

// DefaultEmbeddingModel is used when no model is configured.
const DefaultEmbeddingModel = "text-embedding-ada-002"

// Embedder wraps the go-openai embeddings client.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
}

// EmbedderConfig holds configuration for the OpenAI embedder.
type EmbedderConfig struct {
	APIKey string

	// BaseURL overrides the API root, e.g. for a compatible local server.
	BaseURL string
	Model   string
}

// NewEmbedder creates an embedder. An API key is required.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai embedder requires an API key")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	model, err := ParseModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}, nil
}

// ParseModel maps a model name onto the client's model enum. An empty name
// selects DefaultEmbeddingModel; names the client does not know are rejected.
func ParseModel(name string) (openai.EmbeddingModel, error) {
	if name == "" {
		name = DefaultEmbeddingModel
	}

	var model openai.EmbeddingModel
	if err := model.UnmarshalText([]byte(name)); err != nil || model == openai.Unknown {
		return openai.Unknown, fmt.Errorf("unsupported openai embedding model: %q", name)
	}
	return model, nil
}

// Embed converts text into a vector embedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty input", vector.ErrEmbedding)
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrEmbedding, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", vector.ErrEmbedding)
	}

	return resp.Data[0].Embedding, nil
}

// Close releases resources held by the embedder.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
