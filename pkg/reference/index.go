// Package reference indexes background documents about empty nest syndrome
// and searches them for generation context.
package reference

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/kotori/pkg/embeddings"
	"github.com/papercomputeco/kotori/pkg/vector"
)

// Type tags reference chunks.
const Type = "reference"

// Metadata keys.
const (
	KeySource = "source"
	KeyType   = "type"
	KeyPath   = "path"
	KeyIndex  = "chunk"
)

// Chunk is a retrieved piece of a reference document.
type Chunk struct {
	Content string  `json:"content"`
	Score   float32 `json:"score"`
	Source  string  `json:"source"`
	Type    string  `json:"type"`
}

// Index searches reference chunks in a vector collection.
type Index struct {
	driver   vector.Driver
	embedder embeddings.Embedder
	logger   *slog.Logger
}

// NewIndex creates an index over driver. The index owns driver.
func NewIndex(driver vector.Driver, embedder embeddings.Embedder, logger *slog.Logger) *Index {
	if logger == nil {
		logger = slog.Default()
	}
	return &Index{driver: driver, embedder: embedder, logger: logger}
}

// Search returns up to k reference chunks nearest to query. Failures are
// logged and yield no chunks.
func (x *Index) Search(ctx context.Context, query string, k int) []Chunk {
	if x == nil {
		return nil
	}
	chunks, err := x.search(ctx, query, k)
	if err != nil {
		x.logger.Warn("reference search failed", "error", err)
		return nil
	}
	x.logger.Debug("retrieved reference chunks", "count", len(chunks))
	return chunks
}

func (x *Index) search(ctx context.Context, query string, k int) ([]Chunk, error) {
	if k <= 0 {
		return nil, nil
	}
	if x == nil || x.driver == nil || x.embedder == nil {
		return nil, fmt.Errorf("reference index not configured")
	}

	emb, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := x.driver.Query(ctx, emb, k, vector.Filter{KeyType: Type})
	if err != nil {
		return nil, fmt.Errorf("querying reference: %w", err)
	}

	chunks := make([]Chunk, 0, len(results))
	for _, r := range results {
		chunks = append(chunks, Chunk{
			Content: r.Content,
			Score:   r.Score,
			Source:  r.Metadata[KeySource],
			Type:    r.Metadata[KeyType],
		})
	}
	return chunks, nil
}

// Documents lists every reference chunk.
func (x *Index) Documents(ctx context.Context) ([]vector.Document, error) {
	return x.driver.List(ctx, vector.Filter{KeyType: Type})
}

// Close releases the underlying driver.
func (x *Index) Close() error {
	if x == nil || x.driver == nil {
		return nil
	}
	return x.driver.Close()
}
