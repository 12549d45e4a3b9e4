package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/kotori/pkg/config"
	"github.com/papercomputeco/kotori/pkg/dialogue"
	"github.com/papercomputeco/kotori/pkg/dotdir"
	"github.com/papercomputeco/kotori/pkg/eventstream/kafka"
	"github.com/papercomputeco/kotori/pkg/eventstream/nop"
	"github.com/papercomputeco/kotori/pkg/llm"
	"github.com/papercomputeco/kotori/pkg/logger"
	"github.com/papercomputeco/kotori/pkg/memory"
)

func testOptions(dir string) Options {
	cfg := config.NewDefaultConfig()
	cfg.VectorStore.Provider = "memory"
	cfg.Embedding.Provider = "hash"
	cfg.Embedding.Dimensions = 64
	return Options{Config: cfg, ConfigDir: dir, Logger: logger.Nop()}
}

var _ = Describe("Pipeline", func() {
	var (
		ctx    context.Context
		tmpDir string
		server *httptest.Server
		reply  string
	)

	BeforeEach(func() {
		ctx = context.Background()
		tmpDir = GinkgoT().TempDir()
		reply = `{"message": {"role": "assistant", "content": "emotional"}, "done": true}`
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(reply))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("wires a working orchestrator", func() {
		o := testOptions(tmpDir)
		o.Config.LLM.Provider = llm.Ollama
		o.Config.LLM.BaseURL = server.URL

		p, err := New(ctx, o)
		Expect(err).NotTo(HaveOccurred())
		defer p.Close()

		turn := p.Orchestrator.RunTurn(ctx, dialogue.Request{Input: "I feel so sad and lonely"})
		Expect(turn.State.Intent).To(Equal(dialogue.IntentEmotional))
		Expect(turn.MemoryID).To(Equal(memory.RecordID("I feel so sad and lonely")))

		records, err := p.Memory.All(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].Type).To(Equal(memory.TypeEmotional))
	})

	It("fails without credentials for a hosted provider", func() {
		GinkgoT().Setenv("GROQ_API_KEY", "")
		o := testOptions(tmpDir)
		o.Config.LLM.Provider = llm.Groq

		_, err := New(ctx, o)
		Expect(err).To(MatchError(llm.ErrMissingCredentials))
	})

	It("rejects unknown vector stores", func() {
		o := testOptions(tmpDir)
		o.Config.VectorStore.Provider = "redis"

		_, err := OpenStores(ctx, o)
		Expect(err).To(MatchError(ContainSubstring("unsupported vector store provider")))
	})
})

var _ = Describe("NewPublisher", func() {
	It("defaults to the nop publisher", func() {
		o := testOptions("")
		p, err := NewPublisher(o)
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&nop.Publisher{}))
	})

	It("builds a kafka publisher from comma separated brokers", func() {
		o := testOptions("")
		o.Config.EventStream.Provider = "kafka"
		o.Config.EventStream.Brokers = "localhost:9092, localhost:9093"

		p, err := NewPublisher(o)
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(BeAssignableToTypeOf(&kafka.Publisher{}))
		Expect(p.Close()).To(Succeed())
	})

	It("requires kafka brokers", func() {
		o := testOptions("")
		o.Config.EventStream.Provider = "kafka"

		_, err := NewPublisher(o)
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown providers", func() {
		o := testOptions("")
		o.Config.EventStream.Provider = "nats"

		_, err := NewPublisher(o)
		Expect(err).To(MatchError(ContainSubstring("unsupported eventstream provider")))
	})
})

var _ = Describe("helpers", func() {
	It("splits lists and drops blanks", func() {
		Expect(splitList(" a, ,b ,")).To(Equal([]string{"a", "b"}))
		Expect(splitList("")).To(BeEmpty())
	})

	It("places the sqlite database in the .kotori directory", func() {
		dir := GinkgoT().TempDir()
		cfg := config.NewDefaultConfig()

		target, err := vectorTarget(cfg, dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(target).To(Equal(filepath.Join(dir, sqliteFile)))

		cfg.VectorStore.Target = "/data/kotori.db"
		Expect(vectorTarget(cfg, dir)).To(Equal("/data/kotori.db"))

		cfg.VectorStore.Provider = "qdrant"
		cfg.VectorStore.Target = ""
		Expect(vectorTarget(cfg, dir)).To(BeEmpty())
	})

	It("loads .env from the .kotori directory without overriding", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, ".env"), []byte("KOTORI_TEST_A=from-file\nKOTORI_TEST_B=from-file\n"), 0o600)).To(Succeed())
		GinkgoT().Setenv("KOTORI_TEST_B", "from-env")
		DeferCleanup(os.Unsetenv, "KOTORI_TEST_A")

		Expect(LoadDotEnv(dir)).To(Succeed())
		Expect(os.Getenv("KOTORI_TEST_A")).To(Equal("from-file"))
		Expect(os.Getenv("KOTORI_TEST_B")).To(Equal("from-env"))
	})

	It("records history and skips repeats", func() {
		dir := GinkgoT().TempDir()
		state := dialogue.State{Input: "hello", Response: "hi", Agent: dialogue.AgentWelcome}
		Expect(RecordHistory(dir, state)).To(Succeed())
		Expect(RecordHistory(dir, state)).To(Succeed())

		session, err := dotdir.NewManager().LoadSession(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(session.Entries).To(HaveLen(1))
	})
})

var _ = Describe("LoadOptions", func() {
	It("layers flags over defaults", func() {
		dir := GinkgoT().TempDir()
		cmd := &cobra.Command{Use: "test"}
		cmd.Flags().String("config-dir", "", "")
		cmd.Flags().Bool("debug", false, "")
		config.AddPipelineFlags(cmd)
		Expect(cmd.ParseFlags([]string{"--config-dir", dir, "--llm-provider", "ollama", "--embedding-dimensions", "32"})).To(Succeed())

		o, err := LoadOptions(cmd)
		Expect(err).NotTo(HaveOccurred())
		Expect(o.ConfigDir).To(Equal(dir))
		Expect(o.Config.LLM.Provider).To(Equal("ollama"))
		Expect(o.Config.Embedding.Dimensions).To(Equal(uint(32)))
		Expect(o.Config.Router.AgentName).To(Equal("kotori"))
		Expect(o.Logger).NotTo(BeNil())
	})
})
