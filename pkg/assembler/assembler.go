// Package assembler merges reference chunks and remembered turns into the
// bounded context given to a generator.
package assembler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/papercomputeco/kotori/pkg/reference"
)

// Separator joins context chunks.
const Separator = "\n\n---\n\n"

// DefaultSummary stands in for context when nothing relevant is found.
const DefaultSummary = "Empty Nest Syndrome is a common experience where parents feel sadness, loneliness, or loss of purpose when their children leave home. These feelings are completely normal and temporary."

// ReferenceSearcher finds reference chunks.
type ReferenceSearcher interface {
	Search(ctx context.Context, query string, k int) []reference.Chunk
}

// MemoryRetriever recalls remembered turns.
type MemoryRetriever interface {
	Retrieve(ctx context.Context, query string, k int) []string
}

// Assembler builds generation context. Either source may be nil.
type Assembler struct {
	reference ReferenceSearcher
	memory    MemoryRetriever
	logger    *slog.Logger
}

// New creates an Assembler.
func New(ref ReferenceSearcher, mem MemoryRetriever, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{reference: ref, memory: mem, logger: logger}
}

// Assemble returns reference chunks followed by memories, joined by
// Separator and cut to at most maxChars bytes; a non-positive maxChars
// yields "". When both sources are empty DefaultSummary is used instead.
func (a *Assembler) Assemble(ctx context.Context, query string, referenceK, memoryK, maxChars int) string {
	var parts []string

	if a.reference != nil && referenceK > 0 {
		for _, c := range a.reference.Search(ctx, query, referenceK) {
			if strings.TrimSpace(c.Content) != "" {
				parts = append(parts, c.Content)
			}
		}
	}
	refCount := len(parts)

	if a.memory != nil && memoryK > 0 {
		for _, m := range a.memory.Retrieve(ctx, query, memoryK) {
			if strings.TrimSpace(m) != "" {
				parts = append(parts, m)
			}
		}
	}

	out := strings.Join(parts, Separator)
	if strings.TrimSpace(out) == "" {
		out = DefaultSummary
	}

	a.logger.Debug("assembled context",
		"reference_chunks", refCount,
		"memories", len(parts)-refCount,
		"chars", len(out),
	)
	return Truncate(out, maxChars)
}

// Truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
// A non-positive n yields "".
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
