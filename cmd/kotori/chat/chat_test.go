package chatcmder

import (
	"bytes"
	"context"
	"strings"
	"sync"

	tea "charm.land/bubbletea/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kotori/pkg/dialogue"
	"github.com/papercomputeco/kotori/pkg/dotdir"
)

type echoRunner struct {
	mu     sync.Mutex
	inputs []string
}

func (r *echoRunner) Run(_ context.Context, req dialogue.Request) dialogue.State {
	r.mu.Lock()
	r.inputs = append(r.inputs, req.Input)
	r.mu.Unlock()
	return dialogue.State{
		Input:    req.Input,
		Response: "heard: " + req.Input,
		Agent:    dialogue.AgentEmotional,
		Intent:   dialogue.IntentEmotional,
	}
}

var _ = Describe("RunLines", func() {
	var (
		tmpDir string
		runner *echoRunner
		out    *bytes.Buffer
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		runner = &echoRunner{}
		out = &bytes.Buffer{}
	})

	It("answers each line and stops at an exit word", func() {
		in := strings.NewReader("Hi Kotori\n\n  I miss my kids  \nexit\nnever sent\n")
		Expect(RunLines(context.Background(), in, out, runner, tmpDir)).To(Succeed())

		Expect(runner.inputs).To(Equal([]string{"Hi Kotori", "I miss my kids"}))
		Expect(out.String()).To(ContainSubstring("heard: I miss my kids"))
		Expect(out.String()).To(ContainSubstring("[emotional]"))
	})

	It("records each turn in the session history", func() {
		in := strings.NewReader("one\ntwo\ntwo\n")
		Expect(RunLines(context.Background(), in, out, runner, tmpDir)).To(Succeed())

		session, err := dotdir.NewManager().LoadSession(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(session.Entries).To(HaveLen(2))
		Expect(session.Recent(1)[0].Query).To(Equal("two"))
	})
})

var _ = Describe("chatModel", func() {
	var (
		tmpDir string
		runner *echoRunner
		m      chatModel
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		runner = &echoRunner{}
		m = newChatModel(context.Background(), runner, tmpDir, &dotdir.Session{})
	})

	It("replays recent session turns oldest first", func() {
		session := &dotdir.Session{}
		session.Append(dotdir.HistoryEntry{Query: "first", Response: "a", Agent: "qna"})
		session.Append(dotdir.HistoryEntry{Query: "second", Response: "b", Agent: "qna"})

		m = newChatModel(context.Background(), runner, tmpDir, session)
		Expect(m.intro).To(HaveLen(2))
		Expect(m.intro[0]).To(ContainSubstring("first"))
		Expect(m.intro[1]).To(ContainSubstring("second"))
	})

	It("starts with the input focused", func() {
		Expect(m.input.Focused()).To(BeTrue())
		Expect(m.Init()).NotTo(BeNil())
	})

	It("ignores blank input", func() {
		next, cmd := m.submit("   ")
		Expect(cmd).To(BeNil())
		Expect(next.(chatModel).busy).To(BeFalse())
	})

	It("quits on an exit word", func() {
		_, cmd := m.submit("Quit")
		Expect(cmd).NotTo(BeNil())
		Expect(cmd()).To(BeAssignableToTypeOf(tea.QuitMsg{}))
		Expect(runner.inputs).To(BeEmpty())
	})

	It("runs a turn and records it when it finishes", func() {
		next, cmd := m.submit("I feel lonely")
		Expect(cmd).NotTo(BeNil())
		Expect(next.(chatModel).busy).To(BeTrue())

		msg := m.turnCmd("I feel lonely")()
		Expect(msg).To(BeAssignableToTypeOf(turnMsg{}))
		Expect(runner.inputs).To(Equal([]string{"I feel lonely"}))

		done, _ := next.(chatModel).Update(msg)
		Expect(done.(chatModel).busy).To(BeFalse())
		Expect(done.(chatModel).err).NotTo(HaveOccurred())

		session, err := dotdir.NewManager().LoadSession(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(session.Entries).To(HaveLen(1))
		Expect(session.Entries[0].Agent).To(Equal("emotional"))
	})

	It("formats a turn with the agent badge", func() {
		s := m.formatTurn(dialogue.State{Input: "hello", Response: "hi there", Agent: dialogue.AgentWelcome})
		Expect(s).To(ContainSubstring("hello"))
		Expect(s).To(ContainSubstring("[welcome]"))
	})
})
