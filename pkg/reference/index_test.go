package reference_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kotori/pkg/embeddings/hash"
	"github.com/papercomputeco/kotori/pkg/logger"
	"github.com/papercomputeco/kotori/pkg/reference"
	testutils "github.com/papercomputeco/kotori/pkg/utils/test"
	"github.com/papercomputeco/kotori/pkg/vector"
)

const guide = `Empty nest syndrome is the grief parents feel when children leave home.
It is not a clinical diagnosis. Many parents feel sad or lonely.
Some parents lose their sense of purpose. The feelings usually ease with time.
Staying in touch with your children helps. New hobbies can help too.
Talking to friends or a counselor is a good idea.`

var _ = Describe("Ingester and Index", func() {
	var (
		ctx      context.Context
		driver   *testutils.MockVectorDriver
		pool     *reference.Pool
		ingester *reference.Ingester
		index    *reference.Index
		dir      string
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = testutils.NewMockVectorDriver()
		embedder := hash.NewEmbedder(128)

		var err error
		pool, err = reference.NewPool(&reference.PoolConfig{
			Driver:   driver,
			Embedder: embedder,
			Logger:   logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(pool.Close)

		ingester = reference.NewIngester(pool, logger.Nop())
		index = reference.NewIndex(driver, embedder, logger.Nop())
		dir = GinkgoT().TempDir()
	})

	writeFile := func(name, content string) string {
		p := filepath.Join(dir, name)
		Expect(os.WriteFile(p, []byte(content), 0o644)).To(Succeed())
		return p
	}

	It("stores sentence-window chunks tagged as reference", func() {
		p := writeFile("guide.txt", guide)

		r, err := ingester.IngestFiles(ctx, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(r).To(Equal(reference.Result{Files: 1, Chunks: 2}))

		docs, err := index.Documents(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(2))
		for _, d := range docs {
			Expect(d.Metadata).To(HaveKeyWithValue("source", "guide.txt"))
			Expect(d.Metadata).To(HaveKeyWithValue("type", "reference"))
			Expect(d.ID).To(HavePrefix("ref_"))
		}
	})

	It("is idempotent and drops chunks from a shorter new version", func() {
		p := writeFile("guide.txt", guide)
		_, err := ingester.IngestFiles(ctx, p)
		Expect(err).NotTo(HaveOccurred())
		_, err = ingester.IngestFiles(ctx, p)
		Expect(err).NotTo(HaveOccurred())

		docs, _ := index.Documents(ctx)
		Expect(docs).To(HaveLen(2))

		writeFile("guide.txt", "Just one sentence now.")
		r, err := ingester.IngestFiles(ctx, p)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Removed).To(Equal(1))

		docs, _ = index.Documents(ctx)
		Expect(docs).To(HaveLen(1))
	})

	It("searches only reference chunks", func() {
		_, err := ingester.IngestText(ctx, "/abs/guide.txt", guide)
		Expect(err).NotTo(HaveOccurred())
		Expect(driver.Add(ctx, []vector.Document{{
			ID: "conv_x", Content: "User: hobbies\nAssistant: yes",
			Metadata:  map[string]string{"source": "chat_memory", "type": "suggestion"},
			Embedding: []float32{1},
		}})).To(Succeed())

		chunks := index.Search(ctx, "new hobbies can help", 5)
		Expect(chunks).To(HaveLen(2))
		for _, c := range chunks {
			Expect(c.Type).To(Equal("reference"))
			Expect(c.Source).To(Equal("guide.txt"))
		}
		Expect(strings.Contains(chunks[0].Content, "hobbies")).To(BeTrue())
	})

	It("returns no chunks when the store fails", func() {
		driver.FailQuery = true
		Expect(index.Search(ctx, "anything", 3)).To(BeEmpty())
	})

	It("counts chunks that fail to store", func() {
		driver.FailAdd = true
		r, err := ingester.IngestText(ctx, "/abs/guide.txt", guide)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Failed).To(Equal(2))
	})

	It("fails on unreadable files", func() {
		_, err := ingester.IngestFiles(ctx, filepath.Join(dir, "missing.txt"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Pool", func() {
	It("rejects a missing driver", func() {
		_, err := reference.NewPool(&reference.PoolConfig{Embedder: hash.NewEmbedder(8)})
		Expect(err).To(HaveOccurred())
	})

	It("drains queued jobs on Close", func() {
		driver := testutils.NewMockVectorDriver()
		pool, err := reference.NewPool(&reference.PoolConfig{
			Driver:     driver,
			Embedder:   hash.NewEmbedder(8),
			NumWorkers: 1,
			QueueSize:  4,
			Logger:     logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())

		Expect(pool.Enqueue(reference.Job{Doc: vector.Document{ID: "a", Content: "alpha"}})).To(BeTrue())
		Expect(pool.Enqueue(reference.Job{Doc: vector.Document{ID: "b", Content: "beta"}})).To(BeTrue())
		pool.Close()

		docs, err := driver.List(context.Background(), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(2))
	})
})
