package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kotori/api/mcp"
	"github.com/papercomputeco/kotori/pkg/dialogue"
	"github.com/papercomputeco/kotori/pkg/logger"
	"github.com/papercomputeco/kotori/pkg/memory"
	"github.com/papercomputeco/kotori/pkg/orchestrator"
	"github.com/papercomputeco/kotori/pkg/router"
	testutils "github.com/papercomputeco/kotori/pkg/utils/test"
)

type fakeRunner struct {
	inputs []string
}

func (f *fakeRunner) RunTurn(_ context.Context, req dialogue.Request) orchestrator.Turn {
	f.inputs = append(f.inputs, req.Input)
	return orchestrator.Turn{
		State: dialogue.State{
			Input:    req.Input,
			Response: "• ok",
			Agent:    dialogue.AgentQnA,
			Intent:   dialogue.IntentQnA,
		},
		Stage:    router.StageKeyword,
		MemoryID: memory.RecordID(req.Input),
		Duration: 12 * time.Millisecond,
	}
}

func decode[T any](resp *http.Response) T {
	var out T
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	Expect(json.Unmarshal(body, &out)).To(Succeed())
	return out
}

var _ = Describe("Server", func() {
	var (
		server   *Server
		runner   *fakeRunner
		driver   *testutils.MockVectorDriver
		embedder *testutils.MockEmbedder
		store    *memory.Store
	)

	BeforeEach(func() {
		runner = &fakeRunner{}
		driver = testutils.NewMockVectorDriver()
		embedder = testutils.NewMockEmbedder()
		store = memory.NewStore(driver, embedder, logger.Nop())

		var err error
		server, err = NewServer(Config{ListenAddr: ":0"}, runner, store, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a runner", func() {
		_, err := NewServer(Config{}, nil, nil, logger.Nop())
		Expect(err).To(MatchError("runner is required"))
	})

	It("answers ping", func() {
		resp, err := server.app.Test(httpRequest(http.MethodGet, "/ping", ""))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
		Expect(decode[string](resp)).To(Equal("pong"))
	})

	Describe("POST /v1/chat", func() {
		It("runs a turn and returns the dialogue state", func() {
			resp, err := server.app.Test(httpRequest(http.MethodPost, "/v1/chat", `{"input":"what is empty nest?"}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			got := decode[map[string]any](resp)
			Expect(got).To(HaveKeyWithValue("input", "what is empty nest?"))
			Expect(got).To(HaveKeyWithValue("response", "• ok"))
			Expect(got).To(HaveKeyWithValue("agent", "qna"))
			Expect(got).To(HaveKeyWithValue("intent", "qna"))
			Expect(got).To(HaveKeyWithValue("stage", "keyword"))
			Expect(got).To(HaveKeyWithValue("memory_id", memory.RecordID("what is empty nest?")))
			Expect(got).To(HaveKeyWithValue("duration_ms", BeNumerically("==", 12)))
			Expect(runner.inputs).To(Equal([]string{"what is empty nest?"}))
		})

		It("rejects blank input", func() {
			resp, err := server.app.Test(httpRequest(http.MethodPost, "/v1/chat", `{"input":"   "}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
			Expect(decode[ErrorResponse](resp).Error).To(Equal("input is required"))
			Expect(runner.inputs).To(BeEmpty())
		})

		It("rejects malformed bodies", func() {
			resp, err := server.app.Test(httpRequest(http.MethodPost, "/v1/chat", `{"input":`))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})
	})

	Describe("GET /v1/memory/search", func() {
		BeforeEach(func() {
			store.Save(context.Background(), "I miss my kids", "• It is normal.", memory.TypeEmotional)
		})

		It("returns matching memories", func() {
			resp, err := server.app.Test(httpRequest(http.MethodGet, "/v1/memory/search?query=kids&k=3", ""))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			got := decode[MemorySearchResponse](resp)
			Expect(got.Query).To(Equal("kids"))
			Expect(got.Count).To(Equal(1))
			Expect(got.Results[0].Type).To(Equal("emotional"))
			Expect(got.Results[0].Content).To(Equal("User: I miss my kids\nAssistant: • It is normal."))

			queries := driver.Queries()
			Expect(queries[len(queries)-1].TopK).To(Equal(3))
		})

		It("requires a query", func() {
			resp, err := server.app.Test(httpRequest(http.MethodGet, "/v1/memory/search", ""))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		DescribeTable("rejects invalid k",
			func(k string) {
				resp, err := server.app.Test(httpRequest(http.MethodGet, "/v1/memory/search?query=x&k="+k, ""))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
			},
			Entry("non-numeric", "abc"),
			Entry("zero", "0"),
			Entry("too large", "51"),
		)

		It("returns 500 when the vector store fails", func() {
			driver.FailQuery = true
			resp, err := server.app.Test(httpRequest(http.MethodGet, "/v1/memory/search?query=kids", ""))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusInternalServerError))
		})
	})

	Describe("GET /v1/memory", func() {
		It("lists all records", func() {
			store.Save(context.Background(), "q1", "r1", memory.TypeQnA)
			store.Save(context.Background(), "q2", "r2", memory.TypeSuggestion)

			resp, err := server.app.Test(httpRequest(http.MethodGet, "/v1/memory", ""))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			got := decode[struct {
				Count   int             `json:"count"`
				Records []memory.Record `json:"records"`
			}](resp)
			Expect(got.Count).To(Equal(2))
			Expect(got.Records[0].ID).To(Equal(memory.RecordID("q1")))
			Expect(got.Records[1].Type).To(Equal(memory.TypeSuggestion))
		})

		It("returns 503 without a memory store", func() {
			bare, err := NewServer(Config{}, runner, nil, logger.Nop())
			Expect(err).NotTo(HaveOccurred())

			resp, err := bare.app.Test(httpRequest(http.MethodGet, "/v1/memory", ""))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusServiceUnavailable))
		})
	})

	It("mounts the MCP handler when configured", func() {
		mcpServer, err := mcp.NewServer(mcp.Config{Noop: true})
		Expect(err).NotTo(HaveOccurred())

		withMCP, err := NewServer(Config{MCP: mcpServer}, runner, store, logger.Nop())
		Expect(err).NotTo(HaveOccurred())

		resp, err := withMCP.app.Test(httpRequest(http.MethodGet, "/mcp", ""))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).NotTo(Equal(fiber.StatusNotFound))
	})
})

func httpRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, target, r)
	Expect(err).NotTo(HaveOccurred())
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}
