package agent_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kotori/pkg/agent"
	"github.com/papercomputeco/kotori/pkg/logger"
	"github.com/papercomputeco/kotori/pkg/memory"
	testutils "github.com/papercomputeco/kotori/pkg/utils/test"
)

type recordedAssemble struct {
	query                        string
	referenceK, memoryK, maxChar int
}

type fakeContext struct {
	text  string
	calls []recordedAssemble
}

func (f *fakeContext) Assemble(_ context.Context, query string, referenceK, memoryK, maxChars int) string {
	f.calls = append(f.calls, recordedAssemble{query, referenceK, memoryK, maxChars})
	return f.text
}

const goodAnswer = "• Many parents feel this.\n\n• It gets easier.\n\n• Be gentle with yourself.\n\nHow are you sleeping?"

var _ = Describe("Generator", func() {
	var (
		ctx    context.Context
		svc    *testutils.MockLLM
		source *fakeContext
		mem    *testutils.MockMemory
	)

	BeforeEach(func() {
		ctx = context.Background()
		svc = testutils.NewMockLLM()
		source = &fakeContext{text: "reference text"}
		mem = testutils.NewMockMemory()
	})

	newGen := func(m agent.Mode) *agent.Generator {
		return agent.New(m, svc, source, mem, logger.Nop())
	}

	DescribeTable("applies per-mode tuning",
		func(m agent.Mode, temp float64, refK, memK, capChars int, label string) {
			svc.Default = goodAnswer
			newGen(m).Generate(ctx, "question text")

			Expect(source.calls).To(ConsistOf(recordedAssemble{"question text", refK, memK, capChars}))
			calls := svc.Calls()
			Expect(calls).To(HaveLen(1))
			Expect(calls[0].Options.Temperature).To(Equal(temp))
			Expect(calls[0].Options.MaxTokens).To(Equal(200))
			Expect(calls[0].Prompt).To(ContainSubstring("reference text"))
			Expect(calls[0].Prompt).To(ContainSubstring(label + " question text"))
		},
		Entry("qna", agent.QnA, 0.3, 3, 2, 4000, "**Question:**"),
		Entry("emotional", agent.Emotional, 0.4, 2, 2, 3000, "**User's Message:**"),
		Entry("suggestion", agent.Suggestion, 0.5, 3, 2, 3500, "**User's Request:**"),
	)

	It("returns a well-formed completion and saves it with the mode type", func() {
		svc.Default = goodAnswer
		out, outcome := newGen(agent.Emotional).GenerateWithOutcome(ctx, "I miss them")
		Expect(out).To(Equal(goodAnswer))
		Expect(outcome).To(Equal(agent.OutcomeModel))
		Expect(mem.Saves()).To(ConsistOf(testutils.MockSave{
			Query: "I miss them", Response: goodAnswer, Type: memory.TypeEmotional,
		}))
	})

	It("strips template scaffolding", func() {
		svc.Default = "**Answer:** " + goodAnswer
		Expect(newGen(agent.QnA).Generate(ctx, "q")).To(Equal(goodAnswer))
	})

	Describe("validation fallback", func() {
		It("replaces short answers with the keyword-selected template", func() {
			svc.Default = "Too short."
			out, outcome := newGen(agent.QnA).GenerateWithOutcome(ctx, "What are the SYMPTOMS?")
			Expect(outcome).To(Equal(agent.OutcomeValidation))
			Expect(out).To(HavePrefix("• Empty Nest Syndrome causes feelings of sadness"))
			Expect(out).To(HaveSuffix(agent.Menu))
		})

		It("uses the mode's minimum length", func() {
			svc.Default = "• twenty-five chars long."
			_, outcome := newGen(agent.Emotional).GenerateWithOutcome(ctx, "q")
			Expect(outcome).To(Equal(agent.OutcomeModel))

			_, outcome = newGen(agent.Suggestion).GenerateWithOutcome(ctx, "q")
			Expect(outcome).To(Equal(agent.OutcomeValidation))
		})

		It("falls back to the generic answer when no keyword matches", func() {
			svc.Default = ""
			out := newGen(agent.Suggestion).Generate(ctx, "something else")
			Expect(out).To(HavePrefix("• Try reconnecting with old friends"))
		})
	})

	It("wraps bullet-less answers and appends the menu", func() {
		svc.Default = "It is completely natural to feel this way."
		out, outcome := newGen(agent.Emotional).GenerateWithOutcome(ctx, "q")
		Expect(outcome).To(Equal(agent.OutcomeRepaired))
		Expect(out).To(Equal("• I understand you're going through a difficult time. It is completely natural to feel this way.\n\n" + agent.Menu))

		out = newGen(agent.QnA).Generate(ctx, "q")
		Expect(out).To(Equal("• It is completely natural to feel this way.\n\n" + agent.Menu))
	})

	Describe("error fallback", func() {
		BeforeEach(func() {
			svc.Fail = true
		})

		It("uses the longer error templates, distinct from validation ones", func() {
			out, outcome := newGen(agent.Emotional).GenerateWithOutcome(ctx, "I feel so sad and lonely")
			Expect(outcome).To(Equal(agent.OutcomeError))
			Expect(out).To(HavePrefix("• The sadness you're feeling is a natural response"))
			Expect(strings.Count(out, agent.Bullet)).To(Equal(3))
			Expect(out).To(HaveSuffix(agent.Menu))
		})

		It("still saves the turn", func() {
			newGen(agent.Suggestion).Generate(ctx, "calm down tips")
			saves := mem.Saves()
			Expect(saves).To(HaveLen(1))
			Expect(saves[0].Type).To(Equal(memory.TypeSuggestion))
			Expect(saves[0].Response).To(HavePrefix("• Practice deep breathing"))
		})

		It("reports the saved record id", func() {
			out, id := newGen(agent.Emotional).Respond(ctx, "I miss them")
			Expect(out).To(HaveSuffix(agent.Menu))
			Expect(id).To(Equal(memory.RecordID("I miss them")))
		})

		It("reports no record id when the save fails or memory is absent", func() {
			mem.Fail = true
			_, id := newGen(agent.QnA).Respond(ctx, "q")
			Expect(id).To(BeEmpty())

			_, id = agent.New(agent.QnA, svc, source, nil, logger.Nop()).Respond(ctx, "q")
			Expect(id).To(BeEmpty())
		})

		It("treats a missing model as an error", func() {
			g := agent.New(agent.QnA, nil, nil, nil, logger.Nop())
			Expect(g.Generate(ctx, "why does this happen")).To(HavePrefix("• Empty Nest Syndrome happens when children leave home."))
		})
	})

	It("gives every canned answer three bullets and the menu", func() {
		svc.Fail = true
		queries := []string{"symptom", "cause", "cope", "calm", "sad", "lonely", "purpose", "hobby", "friend", "nothing"}
		for _, m := range []agent.Mode{agent.QnA, agent.Emotional, agent.Suggestion} {
			for _, q := range queries {
				for _, out := range []string{m.ErrorAnswer(q), m.ValidationAnswer(q)} {
					Expect(strings.Count(out, agent.Bullet)).To(Equal(3), "mode %s query %s", m.Type, q)
					Expect(out).To(HaveSuffix(agent.Menu))
				}
			}
		}
	})
})

var _ = Describe("Welcomer", func() {
	var (
		ctx context.Context
		svc *testutils.MockLLM
	)

	BeforeEach(func() {
		ctx = context.Background()
		svc = testutils.NewMockLLM()
	})

	It("returns the model greeting", func() {
		svc.Default = "  Hello there! How can I help?  "
		w := agent.NewWelcomer(svc, logger.Nop())
		Expect(w.Generate(ctx, "Hi Kotori")).To(Equal("Hello there! How can I help?"))

		calls := svc.Calls()
		Expect(calls[0].Options.Temperature).To(Equal(0.7))
		Expect(calls[0].Options.MaxTokens).To(Equal(50))
		Expect(calls[0].Prompt).To(ContainSubstring("User's Message: Hi Kotori"))
	})

	It("returns the fixed greeting on failure or empty output", func() {
		svc.Default = "   "
		Expect(agent.NewWelcomer(svc, logger.Nop()).Generate(ctx, "hi")).To(Equal(agent.Greeting))

		svc.Fail = true
		Expect(agent.NewWelcomer(svc, logger.Nop()).Generate(ctx, "hi")).To(Equal(agent.Greeting))

		Expect(agent.NewWelcomer(nil, logger.Nop()).Generate(ctx, "hi")).To(Equal(agent.Greeting))
	})

	It("never reports a memory record", func() {
		out, id := agent.NewWelcomer(nil, logger.Nop()).Respond(ctx, "hi")
		Expect(out).To(Equal(agent.Greeting))
		Expect(id).To(BeEmpty())
	})
})
