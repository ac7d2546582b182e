package testutil

import (
	"context"
	"sync"

	"github.com/govlk/citizenport/internal/rag"
)

// MockGenerator implements rag.Generator, returning a canned result and
// recording the inputs it was given.
type MockGenerator struct {
	Result rag.GenerationResult

	mu          sync.Mutex
	calls       int
	lastQuery   string
	lastContext string
}

// NewMockGenerator creates a generator that succeeds with the given answer.
func NewMockGenerator(answer string) *MockGenerator {
	return &MockGenerator{Result: rag.GenerationResult{Answer: answer, OK: true}}
}

// NewFailingGenerator creates a generator that always reports failure.
func NewFailingGenerator(cause string) *MockGenerator {
	return &MockGenerator{Result: rag.GenerationResult{
		Answer: "I encountered an error generating the answer. Please try again.",
		OK:     false,
		Err:    cause,
	}}
}

// Generate implements rag.Generator.
func (m *MockGenerator) Generate(_ context.Context, query, contextText string) rag.GenerationResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastQuery = query
	m.lastContext = contextText
	return m.Result
}

// Calls reports how many times Generate ran.
func (m *MockGenerator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastQuery returns the most recent query passed to Generate.
func (m *MockGenerator) LastQuery() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastQuery
}

// LastContext returns the most recent context passed to Generate.
func (m *MockGenerator) LastContext() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastContext
}
