// Package hash implements an offline Embedder using signed feature hashing
// over lower-cased word unigrams and bigrams. It needs no model server and is
// deterministic, which suits the in-memory store and local demos. Similarity
// is lexical, not semantic.
package hash

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/papercomputeco/kotori/pkg/embeddings"
	"github.com/papercomputeco/kotori/pkg/vector"
)

// DefaultDimensions is used when none are configured.
const DefaultDimensions = 384

// Embedder hashes tokens into a fixed-width vector.
type Embedder struct {
	dims int
}

// NewEmbedder returns an embedder producing vectors of length dims.
func NewEmbedder(dims uint) *Embedder {
	if dims == 0 {
		dims = DefaultDimensions
	}
	return &Embedder{dims: int(dims)}
}

func tokens(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := make([]string, 0, len(words)*2)
	out = append(out, words...)
	for i := 1; i < len(words); i++ {
		out = append(out, words[i-1]+" "+words[i])
	}
	return out
}

// Embed returns the L2-normalized hashed token vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	toks := tokens(text)
	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: empty input", vector.ErrEmbedding)
	}

	v := make([]float64, e.dims)
	for _, t := range toks {
		h := fnv.New64a()
		h.Write([]byte(t))
		sum := h.Sum64()
		idx := int(sum % uint64(e.dims))
		if sum>>63 == 1 {
			v[idx]--
		} else {
			v[idx]++
		}
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	norm = math.Sqrt(norm)

	out := make([]float32, e.dims)
	if norm == 0 {
		return out, nil
	}
	for i, x := range v {
		out[i] = float32(x / norm)
	}
	return out, nil
}

// Close is a no-op.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
