package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/kotori/pkg/embeddings"
	"github.com/papercomputeco/kotori/pkg/vector"
)

// ErrNotConfigured is returned when memory operations are attempted
// but no vector driver or embedder has been configured.
var ErrNotConfigured = errors.New("memory not configured")

// Store saves and recalls conversation turns. Save and Retrieve never
// return errors: failures are logged and degrade to no-ops.
type Store struct {
	driver   vector.Driver
	embedder embeddings.Embedder
	logger   *slog.Logger
}

// NewStore wraps a vector collection. The store owns driver and closes it.
func NewStore(driver vector.Driver, embedder embeddings.Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{driver: driver, embedder: embedder, logger: logger}
}

func (s *Store) configured() bool {
	return s != nil && s.driver != nil && s.embedder != nil
}

// Put embeds and upserts a record.
func (s *Store) Put(ctx context.Context, r Record) error {
	if !s.configured() {
		return ErrNotConfigured
	}

	emb, err := s.embedder.Embed(ctx, r.Content)
	if err != nil {
		return fmt.Errorf("embedding memory %s: %w", r.ID, err)
	}

	return s.driver.Add(ctx, []vector.Document{{
		ID:        r.ID,
		Content:   r.Content,
		Metadata:  r.Metadata(),
		Embedding: emb,
	}})
}

// Save records a turn under the query's stable ID and returns that ID.
// Failures are logged and return "".
func (s *Store) Save(ctx context.Context, query, response string, t Type) string {
	r := NewRecord(query, response, t)
	if err := s.Put(ctx, r); err != nil {
		s.log().Warn("could not save to memory", "id", r.ID, "type", t, "error", err)
		return ""
	}
	s.log().Debug("saved to memory", "id", r.ID, "type", t)
	return r.ID
}

// Search returns up to limit memory candidates nearest to query.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if !s.configured() {
		return nil, ErrNotConfigured
	}

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	results, err := s.driver.Query(ctx, emb, limit, vector.Filter{KeySource: Source})
	if err != nil {
		return nil, fmt.Errorf("querying memory: %w", err)
	}

	out := make([]Candidate, 0, len(results))
	for _, r := range results {
		out = append(out, Candidate{
			Content:  r.Content,
			Type:     Type(r.Metadata[KeyType]),
			Distance: r.Distance,
		})
	}
	return out, nil
}

// Retrieve returns at most k remembered turns relevant to query, spread
// across memory types. It returns nil on any failure.
func (s *Store) Retrieve(ctx context.Context, query string, k int) []string {
	if k <= 0 {
		return nil
	}

	candidates, err := s.Search(ctx, query, k+2)
	if err != nil {
		s.log().Warn("could not retrieve memory", "error", err)
		return nil
	}

	texts := SelectDiverse(candidates, k)
	s.log().Debug("retrieved memories", "candidates", len(candidates), "selected", len(texts))
	return texts
}

// All lists every memory record.
func (s *Store) All(ctx context.Context) ([]Record, error) {
	if !s.configured() {
		return nil, ErrNotConfigured
	}

	docs, err := s.driver.List(ctx, vector.Filter{KeySource: Source})
	if err != nil {
		return nil, fmt.Errorf("listing memory: %w", err)
	}

	records := make([]Record, 0, len(docs))
	for _, d := range docs {
		id := d.Metadata[KeyID]
		if id == "" {
			id = d.ID
		}
		records = append(records, Record{ID: id, Content: d.Content, Type: Type(d.Metadata[KeyType])})
	}
	return records, nil
}

// Close releases the underlying driver.
func (s *Store) Close() error {
	if s == nil || s.driver == nil {
		return nil
	}
	return s.driver.Close()
}

func (s *Store) log() *slog.Logger {
	if s == nil || s.logger == nil {
		return slog.Default()
	}
	return s.logger
}
