package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/kotori/pkg/vector"
	"github.com/papercomputeco/kotori/pkg/vector/inmemory"
)

// ErrMockVector is returned by MockVectorDriver operations set to fail.
var ErrMockVector = errors.New("mock vector failure")

// MockVectorDriver is an in-memory vector driver whose operations can be
// made to fail and whose queries are recorded.
type MockVectorDriver struct {
	*inmemory.Driver

	mu      sync.Mutex
	queries []MockQuery

	FailAdd   bool
	FailQuery bool
	FailList  bool
}

// MockQuery is one recorded Query call.
type MockQuery struct {
	TopK   int
	Filter vector.Filter
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{Driver: inmemory.NewDriver()}
}

func (m *MockVectorDriver) Add(ctx context.Context, docs []vector.Document) error {
	if m.FailAdd {
		return ErrMockVector
	}
	return m.Driver.Add(ctx, docs)
}

func (m *MockVectorDriver) Query(ctx context.Context, embedding []float32, topK int, filter vector.Filter) ([]vector.QueryResult, error) {
	m.mu.Lock()
	m.queries = append(m.queries, MockQuery{TopK: topK, Filter: filter})
	m.mu.Unlock()

	if m.FailQuery {
		return nil, ErrMockVector
	}
	return m.Driver.Query(ctx, embedding, topK, filter)
}

func (m *MockVectorDriver) List(ctx context.Context, filter vector.Filter) ([]vector.Document, error) {
	if m.FailList {
		return nil, ErrMockVector
	}
	return m.Driver.List(ctx, filter)
}

// Queries returns the recorded Query calls.
func (m *MockVectorDriver) Queries() []MockQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockQuery(nil), m.queries...)
}
