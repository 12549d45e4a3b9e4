package reference

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

const (
	// DefaultWindow is the number of sentences per chunk.
	DefaultWindow = 5

	// DefaultOverlap is the number of sentences shared by adjacent chunks.
	DefaultOverlap = 1
)

// sentenceEnd matches terminal punctuation followed by whitespace, or a
// blank line.
var sentenceEnd = regexp.MustCompile(`([.!?]+["')\]]*)\s+|\n\s*\n`)

// SplitSentences splits text into trimmed, non-empty sentences.
func SplitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []string
	last := 0
	for _, m := range sentenceEnd.FindAllStringSubmatchIndex(text, -1) {
		end := m[0]
		if m[2] >= 0 {
			end = m[3]
		}
		if s := normalize(text[last:end]); s != "" {
			out = append(out, s)
		}
		last = m[1]
	}
	if s := normalize(text[last:]); s != "" {
		out = append(out, s)
	}
	return out
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ChunkSentences groups sentences into windows of size sentences, each
// sharing overlap sentences with the previous one.
func ChunkSentences(sentences []string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultWindow
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	step := size - overlap
	var chunks []string
	for start := 0; start < len(sentences); start += step {
		end := min(start+size, len(sentences))
		chunks = append(chunks, strings.Join(sentences[start:end], " "))
		if end == len(sentences) {
			break
		}
	}
	return chunks
}

// ChunkID derives the stable ID of the i-th chunk of the file at path.
func ChunkID(path string, i int) string {
	sum := sha256.Sum256([]byte(path))
	return fmt.Sprintf("ref_%s_%d", hex.EncodeToString(sum[:]), i)
}
