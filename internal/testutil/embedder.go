// Package testutil provides deterministic fakes for the AI stack so unit
// tests never touch a provider.
package testutil

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
)

// MockEmbedder implements ai.Embedder with deterministic vectors derived
// from the input text, so identical text always embeds identically.
// Explicit vectors can be registered for precise similarity control.
// Safe for concurrent use.
type MockEmbedder struct {
	Dim   int
	Delay time.Duration // optional per-call delay to exercise timeouts
	Err   error         // returned verbatim when set

	mu      sync.Mutex
	vectors map[string][]float32
	calls   int
}

// NewMockEmbedder creates a mock producing vectors of the given dimension.
func NewMockEmbedder(dim int) *MockEmbedder {
	return &MockEmbedder{
		Dim:     dim,
		vectors: make(map[string][]float32),
	}
}

// SetVector pins the vector returned for exact input text.
func (m *MockEmbedder) SetVector(text string, vec []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectors[text] = vec
}

// Calls reports how many Embed calls were made.
func (m *MockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Name implements ai.Embedder.
func (m *MockEmbedder) Name() string { return "mock/embedder" }

// Register implements ai.Embedder.
func (m *MockEmbedder) Register(api.Registry) {}

// Embed implements ai.Embedder.
func (m *MockEmbedder) Embed(ctx context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}

	embeddings := make([]*ai.Embedding, len(req.Input))
	for i, doc := range req.Input {
		embeddings[i] = &ai.Embedding{Embedding: m.vectorFor(documentText(doc))}
	}
	return &ai.EmbedResponse{Embeddings: embeddings}, nil
}

func (m *MockEmbedder) vectorFor(text string) []float32 {
	m.mu.Lock()
	if v, ok := m.vectors[text]; ok {
		m.mu.Unlock()
		return v
	}
	m.mu.Unlock()
	return deterministicVector(text, m.Dim)
}

// deterministicVector expands a SHA-256 of the text into a unit vector.
func deterministicVector(text string, dim int) []float32 {
	sum := sha256.Sum256([]byte(text))

	vec := make([]float32, dim)
	var norm float64
	for i := range vec {
		// Cycle through the digest four bytes at a time.
		off := (i * 4) % (len(sum) - 3)
		bits := binary.BigEndian.Uint32(sum[off : off+4])
		v := float64(bits)/float64(math.MaxUint32)*2 - 1
		vec[i] = float32(v)
		norm += v * v
	}

	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}

func documentText(doc *ai.Document) string {
	var sb strings.Builder
	for _, p := range doc.Content {
		if p.Kind == ai.PartText {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}
