package orchestrator_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kotori/pkg/agent"
	"github.com/papercomputeco/kotori/pkg/assembler"
	"github.com/papercomputeco/kotori/pkg/dialogue"
	"github.com/papercomputeco/kotori/pkg/embeddings/hash"
	"github.com/papercomputeco/kotori/pkg/eventstream"
	"github.com/papercomputeco/kotori/pkg/llm"
	"github.com/papercomputeco/kotori/pkg/logger"
	"github.com/papercomputeco/kotori/pkg/memory"
	"github.com/papercomputeco/kotori/pkg/orchestrator"
	"github.com/papercomputeco/kotori/pkg/reference"
	"github.com/papercomputeco/kotori/pkg/router"
	testutils "github.com/papercomputeco/kotori/pkg/utils/test"
	"github.com/papercomputeco/kotori/pkg/vector/inmemory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.TurnCompletedEvent
	err    error
	closed bool
}

func (p *recordingPublisher) PublishTurn(_ context.Context, e *eventstream.TurnCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error {
	p.closed = true
	return nil
}

type pipeline struct {
	orch      *orchestrator.Orchestrator
	memDriver *testutils.MockVectorDriver
	store     *memory.Store
	publisher *recordingPublisher
}

// build wires the real components over empty in-memory collections.
func build(svc llm.Service) *pipeline {
	log := logger.Nop()
	embedder := hash.NewEmbedder(64)

	memDriver := testutils.NewMockVectorDriver()
	store := memory.NewStore(memDriver, embedder, log)
	index := reference.NewIndex(inmemory.NewDriver(), embedder, log)
	asm := assembler.New(index, store, log)
	pub := &recordingPublisher{}

	orch, err := orchestrator.New(orchestrator.Config{
		Router:     router.New(svc, router.Config{AgentName: "kotori"}, log),
		Welcome:    agent.NewWelcomer(svc, log),
		QnA:        agent.New(agent.QnA, svc, asm, store, log),
		Emotional:  agent.New(agent.Emotional, svc, asm, store, log),
		Suggestion: agent.New(agent.Suggestion, svc, asm, store, log),
		Publisher:  pub,
		Closers:    []io.Closer{store, index},
	}, log)
	Expect(err).NotTo(HaveOccurred())

	return &pipeline{orch: orch, memDriver: memDriver, store: store, publisher: pub}
}

var _ = Describe("Orchestrator", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("requires a responder for every intent", func() {
		_, err := orchestrator.New(orchestrator.Config{
			Router:  router.New(nil, router.Config{}, logger.Nop()),
			Welcome: agent.NewWelcomer(nil, logger.Nop()),
		}, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("responder for intent")))

		_, err = orchestrator.New(orchestrator.Config{}, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("router")))
	})

	Context("greeting a user", func() {
		It("welcomes without touching memory", func() {
			p := build(nil)
			state := p.orch.Run(ctx, dialogue.Request{Input: "Hi Kotori"})

			Expect(state.Intent).To(Equal(dialogue.IntentWelcome))
			Expect(state.Agent).To(Equal(dialogue.AgentWelcome))
			Expect(state.Response).To(Equal(agent.Greeting))
			Expect(state.Input).To(Equal("Hi Kotori"))

			docs, err := p.memDriver.List(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(BeEmpty())
		})

		It("uses a model greeting when available", func() {
			svc := testutils.NewMockLLM()
			svc.Default = "Hello! Lovely to see you."
			p := build(svc)

			turn := p.orch.RunTurn(ctx, dialogue.Request{Input: "Hi Kotori"})
			Expect(turn.State.Response).To(Equal("Hello! Lovely to see you."))
			Expect(turn.Stage).To(Equal(router.StageGreeting))
			Expect(turn.MemoryID).To(BeEmpty())
		})
	})

	Context("with the language model disabled", func() {
		It("falls back to canned emotional support and saves the turn", func() {
			svc := testutils.NewMockLLM()
			svc.Fail = true
			p := build(svc)

			turn := p.orch.RunTurn(ctx, dialogue.Request{Input: "I feel so sad and lonely"})
			state := turn.State

			Expect(state.Intent).To(Equal(dialogue.IntentEmotional))
			Expect(state.Agent).To(Equal(dialogue.AgentEmotional))
			Expect(strings.Count(state.Response, agent.Bullet)).To(Equal(3))
			Expect(state.Response).To(ContainSubstring(agent.Menu))

			docs, err := p.memDriver.List(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].ID).To(Equal(memory.RecordID("I feel so sad and lonely")))
			Expect(docs[0].Metadata).To(HaveKeyWithValue(memory.KeyType, string(memory.TypeEmotional)))
			Expect(docs[0].Metadata).To(HaveKeyWithValue(memory.KeySource, memory.Source))
			Expect(turn.MemoryID).To(Equal(docs[0].ID))
		})
	})

	Context("with an empty vector store", func() {
		It("answers questions from the generic summary", func() {
			svc := testutils.NewMockLLM()
			svc.Replies["Classify"] = "qna"
			svc.Default = "• It is the sadness parents feel.\n\n• It is common.\n\n• It passes.\n\n" + agent.Menu
			p := build(svc)

			state := p.orch.Run(ctx, dialogue.Request{Input: "What is Empty Nest Syndrome?"})
			Expect(state.Intent).To(Equal(dialogue.IntentQnA))
			Expect(state.Response).To(ContainSubstring(agent.Menu))

			var generation string
			for _, c := range svc.Calls() {
				if strings.Contains(c.Prompt, "**Question:**") {
					generation = c.Prompt
				}
			}
			Expect(generation).To(ContainSubstring(assembler.DefaultSummary))
		})
	})

	It("keeps one memory record per query", func() {
		p := build(nil)
		p.orch.Run(ctx, dialogue.Request{Input: "give me some hobby ideas"})
		p.orch.Run(ctx, dialogue.Request{Input: "give me some hobby ideas"})

		docs, err := p.memDriver.List(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(docs).To(HaveLen(1))
		Expect(p.store.Retrieve(ctx, "give me some hobby ideas", 3)).To(HaveLen(1))
	})

	It("publishes a turn event per turn", func() {
		p := build(nil)
		p.orch.Run(ctx, dialogue.Request{Input: "hello"})
		p.orch.Run(ctx, dialogue.Request{Input: "I feel so sad"})

		Expect(p.publisher.events).To(HaveLen(2))
		Expect(p.publisher.events[0].Intent).To(Equal("welcome"))
		Expect(p.publisher.events[0].MemoryID).To(BeEmpty())
		Expect(p.publisher.events[1].Agent).To(Equal("emotional"))
		Expect(p.publisher.events[1].MemoryID).To(Equal(memory.RecordID("I feel so sad")))
	})

	Context("when the turn cannot be saved", func() {
		It("leaves the memory id empty on the turn and the event", func() {
			p := build(nil)
			p.memDriver.FailAdd = true

			turn := p.orch.RunTurn(ctx, dialogue.Request{Input: "I feel so sad"})
			Expect(turn.State.Intent).To(Equal(dialogue.IntentEmotional))
			Expect(turn.State.Response).To(ContainSubstring(agent.Menu))
			Expect(turn.MemoryID).To(BeEmpty())

			Expect(p.publisher.events).To(HaveLen(1))
			Expect(p.publisher.events[0].MemoryID).To(BeEmpty())
		})

		It("leaves the memory id empty without a memory store", func() {
			log := logger.Nop()
			orch, err := orchestrator.New(orchestrator.Config{
				Router:     router.New(nil, router.Config{AgentName: "kotori"}, log),
				Welcome:    agent.NewWelcomer(nil, log),
				QnA:        agent.New(agent.QnA, nil, nil, nil, log),
				Emotional:  agent.New(agent.Emotional, nil, nil, nil, log),
				Suggestion: agent.New(agent.Suggestion, nil, nil, nil, log),
			}, log)
			Expect(err).NotTo(HaveOccurred())

			turn := orch.RunTurn(ctx, dialogue.Request{Input: "give me some hobby ideas"})
			Expect(turn.State.Intent).To(Equal(dialogue.IntentSuggestion))
			Expect(turn.MemoryID).To(BeEmpty())
		})
	})

	It("ignores publishing failures", func() {
		p := build(nil)
		p.publisher.err = errors.New("broker down")
		state := p.orch.Run(ctx, dialogue.Request{Input: "hello"})
		Expect(state.Response).To(Equal(agent.Greeting))
	})

	It("closes the publisher and collaborators", func() {
		p := build(nil)
		Expect(p.orch.Close()).To(Succeed())
		Expect(p.publisher.closed).To(BeTrue())
	})
})
