package reference_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kotori/pkg/reference"
)

var _ = Describe("SplitSentences", func() {
	It("splits on terminal punctuation and blank lines", func() {
		text := "Empty nest is common. Is it permanent? No!\n\nA heading\nwith a wrapped line"
		Expect(reference.SplitSentences(text)).To(Equal([]string{
			"Empty nest is common.",
			"Is it permanent?",
			"No!",
			"A heading with a wrapped line",
		}))
	})

	It("keeps closing quotes with their sentence", func() {
		Expect(reference.SplitSentences(`She said "goodbye." Then she left.`)).To(Equal([]string{
			`She said "goodbye."`,
			"Then she left.",
		}))
	})

	It("returns nothing for blank text", func() {
		Expect(reference.SplitSentences(" \n\n ")).To(BeEmpty())
	})
})

var _ = Describe("ChunkSentences", func() {
	sentences := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9"}

	It("windows five sentences with one overlapping", func() {
		Expect(reference.ChunkSentences(sentences, 5, 1)).To(Equal([]string{
			"s1 s2 s3 s4 s5",
			"s5 s6 s7 s8 s9",
		}))
	})

	It("emits a short tail window", func() {
		Expect(reference.ChunkSentences(sentences[:6], 5, 1)).To(Equal([]string{
			"s1 s2 s3 s4 s5",
			"s5 s6",
		}))
	})

	It("returns a single chunk for short documents", func() {
		Expect(reference.ChunkSentences(sentences[:2], 5, 1)).To(Equal([]string{"s1 s2"}))
	})

	It("ignores an overlap that would never advance", func() {
		Expect(reference.ChunkSentences(sentences[:4], 2, 2)).To(Equal([]string{"s1 s2", "s3 s4"}))
	})
})

var _ = Describe("ChunkID", func() {
	It("is stable per path and index", func() {
		id := reference.ChunkID("/docs/guide.txt", 3)
		Expect(id).To(MatchRegexp(`^ref_[0-9a-f]{64}_3$`))
		Expect(reference.ChunkID("/docs/guide.txt", 3)).To(Equal(id))
		Expect(reference.ChunkID("/docs/other.txt", 3)).NotTo(Equal(id))
	})
})
