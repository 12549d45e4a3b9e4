// Package memory persists conversation turns in a vector collection and
// recalls them with diversity-aware ranking.
//
// Records carry three metadata fields that other tools rely on verbatim:
//
//	source = "chat_memory"
//	type   = "qna" | "emotional" | "suggestion"
//	id     = "conv_" + hex(sha256(query))
package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Source tags every memory record in the shared collection.
const Source = "chat_memory"

// Metadata keys.
const (
	KeySource = "source"
	KeyType   = "type"
	KeyID     = "id"
)

// Type classifies a remembered turn by the mode that answered it.
type Type string

const (
	TypeQnA        Type = "qna"
	TypeEmotional  Type = "emotional"
	TypeSuggestion Type = "suggestion"
)

// Types lists the memory types in diversity-pass order.
func Types() []Type {
	return []Type{TypeQnA, TypeEmotional, TypeSuggestion}
}

// Record is one remembered turn.
type Record struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Type    Type   `json:"type"`
}

// RecordID derives the stable record ID for a query. Identical query text
// always maps to the same ID, so re-saving overwrites.
func RecordID(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "conv_" + hex.EncodeToString(sum[:])
}

// FormatContent renders a turn as stored in memory.
func FormatContent(query, response string) string {
	return fmt.Sprintf("User: %s\nAssistant: %s", query, response)
}

// NewRecord builds the record for a turn.
func NewRecord(query, response string, t Type) Record {
	return Record{
		ID:      RecordID(query),
		Content: FormatContent(query, response),
		Type:    t,
	}
}

// Metadata returns the record's vector metadata.
func (r Record) Metadata() map[string]string {
	return map[string]string{
		KeySource: Source,
		KeyType:   string(r.Type),
		KeyID:     r.ID,
	}
}
