package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/kotori/pkg/memory"
)

// MockSave is one recorded Save call.
type MockSave struct {
	Query    string
	Response string
	Type     memory.Type
}

// MockMemory records saves and returns fixed retrievals.
type MockMemory struct {
	mu    sync.Mutex
	saves []MockSave

	// Retrieved is returned (truncated to k) by Retrieve.
	Retrieved []string

	// Fail makes Save record nothing and return "".
	Fail bool
}

func NewMockMemory() *MockMemory {
	return &MockMemory{}
}

func (m *MockMemory) Save(_ context.Context, query, response string, t memory.Type) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return ""
	}
	m.saves = append(m.saves, MockSave{Query: query, Response: response, Type: t})
	return memory.RecordID(query)
}

func (m *MockMemory) Retrieve(_ context.Context, _ string, k int) []string {
	if k < len(m.Retrieved) {
		return m.Retrieved[:k]
	}
	return m.Retrieved
}

// Saves returns the recorded saves.
func (m *MockMemory) Saves() []MockSave {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockSave(nil), m.saves...)
}
