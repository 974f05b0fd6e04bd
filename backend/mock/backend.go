package mock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/poiesic/quickplay/backend"
	"github.com/poiesic/quickplay/core"
)

// Enqueued records one Enqueue call.
type Enqueued struct {
	VideoID  string
	Position core.InsertPosition
}

// MockBackend is a test double for backend.SearchBackend.
// It allows custom behavior injection via function fields.
// Call counters are safe for concurrent use.
type MockBackend struct {
	// SearchFunc is called by Search if set.
	// If nil, Search looks the text up in Results.
	SearchFunc func(ctx context.Context, text string) (*core.SearchResult, error)

	// EnqueueFunc is called by Enqueue if set.
	EnqueueFunc func(ctx context.Context, videoID string, position core.InsertPosition) error

	// AdvanceFunc is called by Advance if set.
	AdvanceFunc func(ctx context.Context) error

	// Results maps query text to the result returned by the default Search.
	Results map[string]*core.SearchResult

	searchCalls  atomic.Int64
	advanceCalls atomic.Int64
	closed       atomic.Bool

	mu       sync.Mutex
	queries  []string
	enqueued []Enqueued
}

var _ backend.SearchBackend = (*MockBackend)(nil)

// NewMockBackend creates a mock backend with no results.
func NewMockBackend() *MockBackend {
	return &MockBackend{Results: map[string]*core.SearchResult{}}
}

// Search records the query and returns the configured result.
func (m *MockBackend) Search(ctx context.Context, text string) (*core.SearchResult, error) {
	m.searchCalls.Add(1)
	m.mu.Lock()
	m.queries = append(m.queries, text)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, text)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.Results[text]; ok && r != nil {
		result := *r
		return &result, nil
	}
	return nil, nil
}

// Enqueue records the call.
func (m *MockBackend) Enqueue(ctx context.Context, videoID string, position core.InsertPosition) error {
	m.mu.Lock()
	m.enqueued = append(m.enqueued, Enqueued{VideoID: videoID, Position: position})
	m.mu.Unlock()

	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, videoID, position)
	}
	return nil
}

// Advance records the call.
func (m *MockBackend) Advance(ctx context.Context) error {
	m.advanceCalls.Add(1)
	if m.AdvanceFunc != nil {
		return m.AdvanceFunc(ctx)
	}
	return nil
}

// Close marks the backend closed.
func (m *MockBackend) Close() error {
	m.closed.Store(true)
	return nil
}

// SetResult configures the default Search result for text.
func (m *MockBackend) SetResult(text string, result *core.SearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Results[text] = result
}

// SearchCalls returns the number of Search calls.
func (m *MockBackend) SearchCalls() int {
	return int(m.searchCalls.Load())
}

// AdvanceCalls returns the number of Advance calls.
func (m *MockBackend) AdvanceCalls() int {
	return int(m.advanceCalls.Load())
}

// Queries returns the texts passed to Search, in call order.
func (m *MockBackend) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// EnqueuedCalls returns the recorded Enqueue calls, in call order.
func (m *MockBackend) EnqueuedCalls() []Enqueued {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Enqueued(nil), m.enqueued...)
}

// Closed reports whether Close was called.
func (m *MockBackend) Closed() bool {
	return m.closed.Load()
}
