// Package vector provides interfaces and implementations for vector storage and embedding.
package vector

import "context"

// Document represents a stored item with its embedding and metadata.
type Document struct {
	// ID is a unique identifier for the document within its collection.
	ID string

	// Content is the text the embedding was computed from.
	Content string

	// Metadata holds flat string attributes (agent, timestamp, source, ...).
	// Drivers must round-trip it unchanged and support equality filtering on it.
	Metadata map[string]string

	// Embedding is the vector representation of the document content.
	Embedding []float32
}

// QueryResult represents a search result with similarity score.
type QueryResult struct {
	Document

	// Score represents the similarity score (higher = more similar).
	Score float32

	// Distance is the cosine distance to the query (lower = more similar).
	Distance float32
}

// Filter restricts a query to documents whose metadata matches every
// key/value pair. A nil or empty filter matches everything.
type Filter map[string]string

// Matches reports whether metadata satisfies the filter.
func (f Filter) Matches(metadata map[string]string) bool {
	for k, v := range f {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// Driver handles storage and retrieval of vector embeddings for a single
// collection.
type Driver interface {
	// Add stores documents with their embeddings.
	// If a document with the same ID already exists, implementers should update
	// the document.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding,
	// ordered by ascending distance.
	Query(ctx context.Context, embedding []float32, topK int, filter Filter) ([]QueryResult, error)

	// List returns every stored document matching filter. Order is unspecified.
	List(ctx context.Context, filter Filter) ([]Document, error)

	// Get retrieves documents by their IDs. Missing IDs are skipped.
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}
