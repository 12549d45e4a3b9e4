package memory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kotori/pkg/embeddings/hash"
	"github.com/papercomputeco/kotori/pkg/logger"
	"github.com/papercomputeco/kotori/pkg/memory"
	testutils "github.com/papercomputeco/kotori/pkg/utils/test"
	"github.com/papercomputeco/kotori/pkg/vector"
)

var _ = Describe("Store", func() {
	var (
		ctx      context.Context
		driver   *testutils.MockVectorDriver
		embedder *testutils.MockEmbedder
		store    *memory.Store
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = testutils.NewMockVectorDriver()
		embedder = testutils.NewMockEmbedder()
		store = memory.NewStore(driver, embedder, logger.Nop())
	})

	It("makes a saved turn visible to retrieval", func() {
		id := store.Save(ctx, "I miss my kids", "• It is normal.", memory.TypeEmotional)
		Expect(id).To(Equal(memory.RecordID("I miss my kids")))

		got := store.Retrieve(ctx, "I miss my kids", 2)
		Expect(got).To(ContainElement("User: I miss my kids\nAssistant: • It is normal."))
	})

	It("keeps one record per query text", func() {
		store.Save(ctx, "same question", "first", memory.TypeQnA)
		store.Save(ctx, "same question", "second", memory.TypeQnA)

		records, err := store.All(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].Content).To(HaveSuffix("second"))
		Expect(records[0].ID).To(Equal(memory.RecordID("same question")))
	})

	It("queries k+2 neighbours restricted to chat memory", func() {
		store.Retrieve(ctx, "anything", 3)
		Expect(driver.Queries()).To(ConsistOf(testutils.MockQuery{
			TopK:   5,
			Filter: vector.Filter{"source": "chat_memory"},
		}))
	})

	It("ignores reference documents in the same collection", func() {
		Expect(driver.Add(ctx, []vector.Document{{
			ID: "ref_1", Content: "reference text",
			Metadata:  map[string]string{"source": "guide.txt", "type": "reference"},
			Embedding: []float32{0.1, 0.2, 0.3},
		}})).To(Succeed())

		Expect(store.Retrieve(ctx, "anything", 3)).To(BeEmpty())
	})

	It("spreads retrieval across memory types", func() {
		s := memory.NewStore(driver, hash.NewEmbedder(64), logger.Nop())
		for _, q := range []string{"qna one", "qna two", "qna three"} {
			s.Save(ctx, q, "answer", memory.TypeQnA)
		}
		s.Save(ctx, "feel one", "answer", memory.TypeEmotional)

		got := s.Retrieve(ctx, "qna", 3)
		Expect(got).To(HaveLen(3))
		Expect(got).To(ContainElement(HavePrefix("User: feel one")))
	})

	It("swallows write failures", func() {
		driver.FailAdd = true
		Expect(store.Save(ctx, "q", "r", memory.TypeQnA)).To(BeEmpty())

		_, err := store.All(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns nothing when the store or embedder fails", func() {
		store.Save(ctx, "q", "r", memory.TypeQnA)

		driver.FailQuery = true
		Expect(store.Retrieve(ctx, "q", 2)).To(BeEmpty())

		driver.FailQuery = false
		embedder.FailAll = true
		Expect(store.Retrieve(ctx, "q", 2)).To(BeEmpty())
	})

	It("reports ErrNotConfigured without a driver", func() {
		s := memory.NewStore(nil, nil, logger.Nop())
		Expect(s.Put(ctx, memory.NewRecord("q", "r", memory.TypeQnA))).To(MatchError(memory.ErrNotConfigured))
		Expect(s.Save(ctx, "q", "r", memory.TypeQnA)).To(BeEmpty())
		Expect(s.Retrieve(ctx, "q", 2)).To(BeEmpty())
		Expect(s.Close()).To(Succeed())
	})
})
