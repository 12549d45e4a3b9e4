package inspectcmder_test

import (
	"bytes"
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	inspectcmder "github.com/papercomputeco/kotori/cmd/kotori/inspect"
	"github.com/papercomputeco/kotori/pkg/embeddings/hash"
	"github.com/papercomputeco/kotori/pkg/logger"
	"github.com/papercomputeco/kotori/pkg/memory"
	"github.com/papercomputeco/kotori/pkg/reference"
	"github.com/papercomputeco/kotori/pkg/vector"
	"github.com/papercomputeco/kotori/pkg/vector/inmemory"
)

var _ = Describe("BuildReport", func() {
	var (
		ctx   context.Context
		mem   *memory.Store
		index *reference.Index
	)

	BeforeEach(func() {
		ctx = context.Background()
		embedder := hash.NewEmbedder(64)
		mem = memory.NewStore(inmemory.NewDriver(), embedder, logger.Nop())

		refDriver := inmemory.NewDriver()
		emb, err := embedder.Embed(ctx, "Empty nest syndrome is common.")
		Expect(err).NotTo(HaveOccurred())
		Expect(refDriver.Add(ctx, []vector.Document{{
			ID:        "ref-0",
			Content:   "Empty nest syndrome is common.",
			Metadata:  map[string]string{reference.KeySource: "guide.txt", reference.KeyType: reference.Type},
			Embedding: emb,
		}})).To(Succeed())
		index = reference.NewIndex(refDriver, embedder, logger.Nop())
	})

	It("counts records per type and chunks per source", func() {
		Expect(mem.Put(ctx, memory.NewRecord("What is empty nest?", "A transition.", memory.TypeQnA))).To(Succeed())
		Expect(mem.Put(ctx, memory.NewRecord("I feel lonely", "That is understandable.", memory.TypeEmotional))).To(Succeed())
		Expect(mem.Put(ctx, memory.NewRecord("I feel lonely", "Still understandable.", memory.TypeEmotional))).To(Succeed())

		report, err := inspectcmder.BuildReport(ctx, mem, index, inspectcmder.DefaultProbes)
		Expect(err).NotTo(HaveOccurred())

		Expect(report.MemoryCount).To(Equal(2))
		Expect(report.MemoryByType).To(HaveKeyWithValue(memory.TypeQnA, 1))
		Expect(report.MemoryByType).To(HaveKeyWithValue(memory.TypeEmotional, 1))
		Expect(report.ReferenceCount).To(Equal(1))
		Expect(report.Sources).To(HaveKeyWithValue("guide.txt", 1))
		Expect(report.Probes).To(HaveLen(3))
		Expect(report.Probes[0].Reference).To(HaveLen(1))
		Expect(report.Probes[0].Memory).To(HaveLen(2))
	})

	It("renders an empty memory", func() {
		report, err := inspectcmder.BuildReport(ctx, mem, index, []string{"children leaving home"})
		Expect(err).NotTo(HaveOccurred())
		Expect(report.MemoryPreview).To(BeEmpty())

		out := &bytes.Buffer{}
		inspectcmder.Render(out, report)
		Expect(out.String()).To(ContainSubstring("0 records"))
		Expect(out.String()).To(ContainSubstring("guide.txt"))
		Expect(out.String()).To(ContainSubstring("children leaving home"))
	})
})
