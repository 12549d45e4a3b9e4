// Package inmemory provides a process-local vector driver with exact cosine
// search. Contents are lost on exit.
package inmemory

import (
	"context"
	"maps"
	"math"
	"slices"
	"sort"
	"sync"

	"github.com/papercomputeco/kotori/pkg/vector"
)

// Driver implements vector.Driver using an in-memory map.
type Driver struct {
	mu sync.RWMutex

	// docs is keyed by document ID; order records insertion order so List
	// is deterministic.
	docs  map[string]vector.Document
	order []string
}

// NewDriver creates a new in-memory vector driver.
func NewDriver() *Driver {
	return &Driver{docs: make(map[string]vector.Document)}
}

func clone(doc vector.Document) vector.Document {
	doc.Metadata = maps.Clone(doc.Metadata)
	doc.Embedding = slices.Clone(doc.Embedding)
	return doc
}

// Add stores documents, replacing any with the same ID.
func (d *Driver) Add(_ context.Context, docs []vector.Document) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, doc := range docs {
		if _, ok := d.docs[doc.ID]; !ok {
			d.order = append(d.order, doc.ID)
		}
		d.docs[doc.ID] = clone(doc)
	}
	return nil
}

// Query performs an exact scan ordered by ascending cosine distance. Ties
// keep insertion order.
func (d *Driver) Query(_ context.Context, embedding []float32, topK int, filter vector.Filter) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	results := make([]vector.QueryResult, 0, len(d.docs))
	for _, id := range d.order {
		doc := d.docs[id]
		if !filter.Matches(doc.Metadata) {
			continue
		}
		dist := CosineDistance(embedding, doc.Embedding)
		results = append(results, vector.QueryResult{
			Document: clone(doc),
			Distance: dist,
			Score:    1 - dist,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// List returns matching documents in insertion order.
func (d *Driver) List(_ context.Context, filter vector.Filter) ([]vector.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []vector.Document
	for _, id := range d.order {
		if doc := d.docs[id]; filter.Matches(doc.Metadata) {
			out = append(out, clone(doc))
		}
	}
	return out, nil
}

// Get retrieves documents by their IDs.
func (d *Driver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []vector.Document
	for _, id := range ids {
		if doc, ok := d.docs[id]; ok {
			out = append(out, clone(doc))
		}
	}
	return out, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(_ context.Context, ids []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, id := range ids {
		delete(d.docs, id)
	}
	d.order = slices.DeleteFunc(d.order, func(id string) bool {
		_, ok := d.docs[id]
		return !ok
	})
	return nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}

// CosineDistance returns 1 - cos(a, b). Mismatched lengths or zero vectors
// are maximally distant.
func CosineDistance(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(na)*math.Sqrt(nb)))
}
