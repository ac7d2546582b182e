package knowledge_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/govlk/citizenport/internal/knowledge"
	"github.com/govlk/citizenport/internal/log"
	"github.com/govlk/citizenport/internal/testutil"
)

const testDim = 8

func newMemoryStore(embedder *testutil.MockEmbedder) *knowledge.MemoryStore {
	return knowledge.NewMemoryStore(embedder, testDim, log.NewNop())
}

// axisVector returns a unit vector along the given axis, padded to testDim.
func axisVector(axis int) []float32 {
	v := make([]float32, testDim)
	v[axis] = 1
	return v
}

func TestMemoryStore_UpsertAndCount(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(testutil.NewMockEmbedder(testDim))
	ctx := context.Background()

	count, err := store.Upsert(ctx, []knowledge.Document{
		{Text: "passport guide", Source: "https://gov.lk/a"},
		{Text: "tax guide", Source: "https://gov.lk/b"},
	})
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("Upsert() = %d, want 2", count)
	}

	total, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count() unexpected error: %v", err)
	}
	if total != 2 {
		t.Errorf("Count() = %d, want 2", total)
	}
}

func TestMemoryStore_UpsertReplacesByID(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(testutil.NewMockEmbedder(testDim))
	ctx := context.Background()

	doc := knowledge.Document{ID: "doc_fixed", Text: "version one", Source: "s"}
	if _, err := store.Upsert(ctx, []knowledge.Document{doc}); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	doc.Text = "version two"
	if _, err := store.Upsert(ctx, []knowledge.Document{doc}); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	total, _ := store.Count(ctx)
	if total != 1 {
		t.Errorf("Count() after replacing = %d, want 1", total)
	}

	results, err := store.Search(ctx, "version two", 1)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if results[0].Document.Text != "version two" {
		t.Errorf("search returned %q, want replaced text", results[0].Document.Text)
	}
}

func TestMemoryStore_UpsertPartialFailure(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(testutil.NewMockEmbedder(testDim))
	ctx := context.Background()

	count, err := store.Upsert(ctx, []knowledge.Document{
		{Text: "valid document", Source: "s"},
		{Text: "   ", Source: "s"},
	})
	if err == nil {
		t.Fatal("Upsert() with empty document returned nil error, want partial failure")
	}
	if !errors.Is(err, knowledge.ErrValidation) {
		t.Errorf("Upsert() error = %v, want ErrValidation", err)
	}
	if count != 1 {
		t.Errorf("Upsert() = %d, want 1 successfully indexed", count)
	}
}

func TestMemoryStore_UpsertEmbedderFailure(t *testing.T) {
	t.Parallel()

	embedder := testutil.NewMockEmbedder(testDim)
	embedder.Err = errors.New("provider unavailable")
	store := newMemoryStore(embedder)

	count, err := store.Upsert(context.Background(), []knowledge.Document{
		{Text: "some text", Source: "s"},
	})
	if !errors.Is(err, knowledge.ErrEmbedding) {
		t.Errorf("Upsert() error = %v, want ErrEmbedding", err)
	}
	if count != 0 {
		t.Errorf("Upsert() = %d, want 0", count)
	}
}

func TestMemoryStore_SearchRanking(t *testing.T) {
	t.Parallel()

	embedder := testutil.NewMockEmbedder(testDim)
	// Pin vectors so similarity order is fully controlled: the query points
	// along axis 0, "near" almost along axis 0, "far" orthogonal.
	embedder.SetVector("query text", axisVector(0))
	embedder.SetVector("near document", []float32{0.9, 0.1, 0, 0, 0, 0, 0, 0})
	embedder.SetVector("middle document", []float32{0.5, 0.5, 0, 0, 0, 0, 0, 0})
	embedder.SetVector("far document", axisVector(1))

	store := newMemoryStore(embedder)
	ctx := context.Background()

	_, err := store.Upsert(ctx, []knowledge.Document{
		{Text: "far document", Source: "s1"},
		{Text: "near document", Source: "s2"},
		{Text: "middle document", Source: "s3"},
	})
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	results, err := store.Search(ctx, "query text", 3)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Search() returned %d results, want 3", len(results))
	}

	wantOrder := []string{"near document", "middle document", "far document"}
	for i, want := range wantOrder {
		if results[i].Document.Text != want {
			t.Errorf("results[%d] = %q, want %q", i, results[i].Document.Text, want)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Similarity > results[i-1].Similarity {
			t.Errorf("results not in descending similarity: %v then %v",
				results[i-1].Similarity, results[i].Similarity)
		}
	}
}

func TestMemoryStore_SearchTruncatesToK(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(testutil.NewMockEmbedder(testDim))
	ctx := context.Background()

	docs := make([]knowledge.Document, 5)
	for i := range docs {
		docs[i] = knowledge.Document{Text: fmt.Sprintf("document %d", i), Source: "s"}
	}
	if _, err := store.Upsert(ctx, docs); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	results, err := store.Search(ctx, "document", 2)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("Search(k=2) returned %d results", len(results))
	}

	results, err = store.Search(ctx, "document", 50)
	if err != nil {
		t.Fatalf("Search() unexpected error: %v", err)
	}
	if len(results) != 5 {
		t.Errorf("Search(k=50) returned %d results, want all 5", len(results))
	}
}

func TestMemoryStore_SearchEmptyStore(t *testing.T) {
	t.Parallel()

	embedder := testutil.NewMockEmbedder(testDim)
	store := newMemoryStore(embedder)

	results, err := store.Search(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Search() on empty store error = %v, want nil", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() on empty store = %v, want empty", results)
	}
	if embedder.Calls() != 0 {
		t.Errorf("empty-store search made %d embed calls, want 0", embedder.Calls())
	}
}

func TestMemoryStore_SearchValidation(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(testutil.NewMockEmbedder(testDim))
	ctx := context.Background()

	if _, err := store.Search(ctx, "  ", 5); !errors.Is(err, knowledge.ErrValidation) {
		t.Errorf("Search(empty query) error = %v, want ErrValidation", err)
	}
	if _, err := store.Search(ctx, "q", 0); !errors.Is(err, knowledge.ErrValidation) {
		t.Errorf("Search(k=0) error = %v, want ErrValidation", err)
	}
	if _, err := store.Search(ctx, "q", -3); !errors.Is(err, knowledge.ErrValidation) {
		t.Errorf("Search(k<0) error = %v, want ErrValidation", err)
	}
}

func TestMemoryStore_DimensionMismatch(t *testing.T) {
	t.Parallel()

	embedder := testutil.NewMockEmbedder(4)
	store := knowledge.NewMemoryStore(embedder, testDim, log.NewNop())

	count, err := store.Upsert(context.Background(), []knowledge.Document{
		{Text: "wrong dimension", Source: "s"},
	})
	if !errors.Is(err, knowledge.ErrDimensionMismatch) {
		t.Errorf("Upsert() error = %v, want ErrDimensionMismatch", err)
	}
	if count != 0 {
		t.Errorf("Upsert() = %d, want 0", count)
	}
}

func TestMemoryStore_DeleteAll(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(testutil.NewMockEmbedder(testDim))
	ctx := context.Background()

	if _, err := store.Upsert(ctx, []knowledge.Document{{Text: "doc", Source: "s"}}); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	if err := store.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() unexpected error: %v", err)
	}
	if total, _ := store.Count(ctx); total != 0 {
		t.Errorf("Count() after DeleteAll = %d, want 0", total)
	}
	// Idempotent.
	if err := store.DeleteAll(ctx); err != nil {
		t.Errorf("second DeleteAll() error = %v, want nil", err)
	}
}

func TestMemoryStore_SnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	embedder := testutil.NewMockEmbedder(testDim)
	ctx := context.Background()

	store := newMemoryStore(embedder)
	_, err := store.Upsert(ctx, []knowledge.Document{
		{Text: "passport guide", Source: "https://gov.lk/a", Title: "Passports"},
		{Text: "tax guide", Source: "https://gov.lk/b", Title: "Taxes"},
	})
	if err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}
	if err := store.Save(dir, "test_collection"); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}

	restored := newMemoryStore(embedder)
	if err := restored.Load(dir, "test_collection"); err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	total, _ := restored.Count(ctx)
	if total != 2 {
		t.Fatalf("Count() after Load = %d, want 2", total)
	}

	results, err := restored.Search(ctx, "passport guide", 1)
	if err != nil {
		t.Fatalf("Search() after Load unexpected error: %v", err)
	}
	if results[0].Document.Title != "Passports" {
		t.Errorf("restored document title = %q, want %q", results[0].Document.Title, "Passports")
	}
}

func TestMemoryStore_LoadMissingSnapshot(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(testutil.NewMockEmbedder(testDim))
	if err := store.Load(t.TempDir(), "never_saved"); err != nil {
		t.Errorf("Load() with no snapshot error = %v, want nil", err)
	}
	if total, _ := store.Count(context.Background()); total != 0 {
		t.Errorf("store not empty after loading missing snapshot")
	}
}

func TestMemoryStore_ConcurrentSearchAndUpsert(t *testing.T) {
	t.Parallel()

	store := newMemoryStore(testutil.NewMockEmbedder(testDim))
	ctx := context.Background()

	if _, err := store.Upsert(ctx, []knowledge.Document{{Text: "base document", Source: "s"}}); err != nil {
		t.Fatalf("Upsert() unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_, _ = store.Upsert(ctx, []knowledge.Document{
				{Text: fmt.Sprintf("concurrent doc %d", n), Source: "s"},
			})
		}(i)
		go func() {
			defer wg.Done()
			results, err := store.Search(ctx, "base document", 100)
			if err != nil {
				t.Errorf("concurrent Search() error: %v", err)
				return
			}
			if len(results) == 0 {
				t.Error("concurrent Search() lost the base document")
			}
		}()
	}
	wg.Wait()

	total, _ := store.Count(ctx)
	if total != 9 {
		t.Errorf("Count() after concurrent upserts = %d, want 9", total)
	}
}
