package knowledge

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/firebase/genkit/go/ai"
	"github.com/gofrs/flock"
)

// MemoryStore is an in-process flat vector index using cosine similarity.
//
// Vectors and documents are held in two parallel slices; the Nth vector
// always corresponds to the Nth document. That correspondence is the
// persistence invariant: Save writes the vectors as a gob blob and the
// documents as a JSON list side by side, and Load rejects snapshots whose
// lengths disagree.
//
// All methods are safe for concurrent use. Embedding happens outside the
// lock; an upsert batch becomes visible to readers atomically.
type MemoryStore struct {
	embedder ai.Embedder
	dim      int
	logger   *slog.Logger

	mu      sync.RWMutex
	vectors [][]float32
	docs    []Document
	byID    map[string]int // document ID -> slice index
}

// NewMemoryStore creates an empty in-process store. dim is the expected
// embedding dimension; inserts with a different dimension fail validation.
func NewMemoryStore(embedder ai.Embedder, dim int, logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		embedder: embedder,
		dim:      dim,
		logger:   logger,
		byID:     make(map[string]int),
	}
}

// Upsert implements Store. Documents that fail to embed are skipped and
// counted as failures; the returned count is the number actually indexed.
func (s *MemoryStore) Upsert(ctx context.Context, docs []Document) (int, error) {
	type embedded struct {
		doc Document
		vec []float32
	}

	var (
		batch    []embedded
		firstErr error
		failed   int
	)

	// Embed outside the lock so slow providers don't block readers.
	for _, doc := range docs {
		if strings.TrimSpace(doc.Text) == "" {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: document text must not be empty", ErrValidation)
			}
			continue
		}

		vec, err := embedText(ctx, s.embedder, doc.Text)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Warn("embedding document failed", "id", doc.ID, "error", err)
			continue
		}

		if len(vec) != s.dim {
			failed++
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: got %d, store expects %d", ErrDimensionMismatch, len(vec), s.dim)
			}
			continue
		}

		if doc.ID == "" {
			doc.ID = DocID(doc.Source, doc.Text)
		}
		batch = append(batch, embedded{doc: doc, vec: vec})
	}

	// Apply the whole batch under one write lock: readers see either none or
	// all of it.
	s.mu.Lock()
	for _, e := range batch {
		if idx, ok := s.byID[e.doc.ID]; ok {
			s.vectors[idx] = e.vec
			s.docs[idx] = e.doc
			continue
		}
		s.byID[e.doc.ID] = len(s.docs)
		s.vectors = append(s.vectors, e.vec)
		s.docs = append(s.docs, e.doc)
	}
	s.mu.Unlock()

	if failed > 0 {
		return len(batch), fmt.Errorf("indexed %d of %d documents: %w", len(batch), len(docs), firstErr)
	}
	return len(batch), nil
}

// Search implements Store.
func (s *MemoryStore) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrValidation)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrValidation, k)
	}

	// Empty store: nothing to rank, skip the embedding call entirely.
	s.mu.RLock()
	empty := len(s.docs) == 0
	s.mu.RUnlock()
	if empty {
		return []Result{}, nil
	}

	qvec, err := embedText(ctx, s.embedder, query)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	results := make([]Result, 0, len(s.docs))
	for i, vec := range s.vectors {
		results = append(results, Result{
			Document:   s.docs[i],
			Similarity: cosineSimilarity(qvec, vec),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// DeleteAll implements Store.
func (s *MemoryStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	s.vectors = nil
	s.docs = nil
	s.byID = make(map[string]int)
	s.mu.Unlock()
	return nil
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// Snapshot artifact suffixes. Both files live in the same directory and are
// written together under a file lock.
const (
	vectorBlobSuffix = ".vec"
	docListSuffix    = ".docs.json"
	lockSuffix       = ".lock"
)

// Save persists the index to dir as two co-located artifacts named after
// collection: a gob-encoded vector blob and a JSON document list in matching
// order. Concurrent savers/loaders are serialized with a file lock.
func (s *MemoryStore) Save(dir, collection string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, collection+lockSuffix))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquiring snapshot lock: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("releasing snapshot lock", "error", err)
		}
	}()

	s.mu.RLock()
	vectors := s.vectors
	docs := s.docs
	s.mu.RUnlock()

	vecPath := filepath.Join(dir, collection+vectorBlobSuffix)
	vf, err := os.Create(vecPath)
	if err != nil {
		return fmt.Errorf("creating vector blob: %w", err)
	}
	if err := gob.NewEncoder(vf).Encode(vectors); err != nil {
		_ = vf.Close()
		return fmt.Errorf("encoding vector blob: %w", err)
	}
	if err := vf.Close(); err != nil {
		return fmt.Errorf("closing vector blob: %w", err)
	}

	docsJSON, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encoding document list: %w", err)
	}
	docPath := filepath.Join(dir, collection+docListSuffix)
	if err := os.WriteFile(docPath, docsJSON, 0o640); err != nil {
		return fmt.Errorf("writing document list: %w", err)
	}

	s.logger.Debug("saved index snapshot", "dir", dir, "collection", collection, "documents", len(docs))
	return nil
}

// Load replaces the index contents from a snapshot previously written by
// Save. A missing snapshot is not an error; the store stays empty.
func (s *MemoryStore) Load(dir, collection string) error {
	lock := flock.New(filepath.Join(dir, collection+lockSuffix))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquiring snapshot lock: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn("releasing snapshot lock", "error", err)
		}
	}()

	vf, err := os.Open(filepath.Join(dir, collection+vectorBlobSuffix))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("opening vector blob: %w", err)
	}
	defer func() {
		_ = vf.Close()
	}()

	var vectors [][]float32
	if err := gob.NewDecoder(vf).Decode(&vectors); err != nil {
		return fmt.Errorf("decoding vector blob: %w", err)
	}

	docsJSON, err := os.ReadFile(filepath.Join(dir, collection+docListSuffix))
	if err != nil {
		return fmt.Errorf("reading document list: %w", err)
	}
	var docs []Document
	if err := json.Unmarshal(docsJSON, &docs); err != nil {
		return fmt.Errorf("decoding document list: %w", err)
	}

	// The two artifacts are only meaningful together: vector N answers for
	// document N.
	if len(vectors) != len(docs) {
		return fmt.Errorf("snapshot corrupt: %d vectors but %d documents", len(vectors), len(docs))
	}
	for i, vec := range vectors {
		if len(vec) != s.dim {
			return fmt.Errorf("%w: snapshot vector %d has dimension %d, store expects %d",
				ErrDimensionMismatch, i, len(vec), s.dim)
		}
	}

	byID := make(map[string]int, len(docs))
	for i, doc := range docs {
		byID[doc.ID] = i
	}

	s.mu.Lock()
	s.vectors = vectors
	s.docs = docs
	s.byID = byID
	s.mu.Unlock()

	s.logger.Debug("loaded index snapshot", "dir", dir, "collection", collection, "documents", len(docs))
	return nil
}

// cosineSimilarity returns the cosine of the angle between a and b, or 0 for
// mismatched or zero vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
