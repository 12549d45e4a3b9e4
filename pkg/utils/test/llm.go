package testutils

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/papercomputeco/kotori/pkg/llm"
)

// ErrMockLLM is returned by MockLLM when it is set to fail.
var ErrMockLLM = errors.New("mock llm failure")

// MockCall is one recorded Complete call.
type MockCall struct {
	Prompt  string
	Options llm.Options
}

// MockLLM is a scripted llm.Service. Replies are matched by prompt
// substring first, then Default is returned.
type MockLLM struct {
	mu    sync.Mutex
	calls []MockCall

	// Replies maps a prompt substring to the completion returned for it.
	Replies map[string]string

	// Default is returned when no reply matches.
	Default string

	// Fail makes every call return ErrMockLLM.
	Fail bool
}

func NewMockLLM() *MockLLM {
	return &MockLLM{Replies: make(map[string]string)}
}

func (m *MockLLM) Complete(_ context.Context, prompt string, opts ...llm.Option) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Prompt: prompt, Options: llm.ApplyOptions(opts)})
	if m.Fail {
		return "", ErrMockLLM
	}
	for substr, reply := range m.Replies {
		if strings.Contains(prompt, substr) {
			return reply, nil
		}
	}
	return m.Default, nil
}

// Calls returns the recorded calls.
func (m *MockLLM) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}
