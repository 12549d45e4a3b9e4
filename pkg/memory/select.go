package memory

import "sort"

// Candidate is a memory returned by a similarity search.
type Candidate struct {
	Content  string  `json:"content"`
	Type     Type    `json:"type"`
	Distance float32 `json:"distance"`
}

// PerTypeCap is the most records of one type the diversity pass takes.
const PerTypeCap = 2

// SelectDiverse picks up to k contents from candidates. Candidates are
// ordered by ascending distance; a first pass takes at most PerTypeCap of
// each known type, then a second pass fills the remaining slots by raw
// relevance with anything not yet taken.
func SelectDiverse(candidates []Candidate, k int) []string {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Distance < sorted[j].Distance
	})

	counts := make(map[Type]int, 3)
	for _, t := range Types() {
		counts[t] = 0
	}

	taken := make([]bool, len(sorted))
	out := make([]string, 0, k)

	for i, c := range sorted {
		if len(out) == k {
			break
		}
		n, known := counts[c.Type]
		if !known || n >= PerTypeCap {
			continue
		}
		counts[c.Type] = n + 1
		taken[i] = true
		out = append(out, c.Content)
	}

	for i, c := range sorted {
		if len(out) == k {
			break
		}
		if taken[i] {
			continue
		}
		taken[i] = true
		out = append(out, c.Content)
	}

	return out
}
