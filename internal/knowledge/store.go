package knowledge

import (
	"context"
	"errors"
)

var (
	// ErrEmbedding indicates the embedding provider failed or returned
	// malformed output.
	ErrEmbedding = errors.New("embedding failed")

	// ErrDimensionMismatch indicates an embedding's dimension does not match
	// the store's configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrValidation indicates malformed input rejected before any network call.
	ErrValidation = errors.New("invalid input")
)

// Store persists document embeddings and answers similarity queries.
// Implementations must be safe for concurrent use: a reader must never
// observe a partially applied upsert batch.
type Store interface {
	// Upsert embeds each document's text and inserts (or replaces) the
	// resulting vector. Insertion is best-effort per item; the returned count
	// is the exact number of documents successfully indexed. A non-nil error
	// accompanies any partial failure.
	Upsert(ctx context.Context, docs []Document) (int, error)

	// Search embeds the query and returns up to k results ordered by
	// descending similarity. An empty store yields an empty slice, never an
	// error. Empty queries and k < 1 are rejected with ErrValidation.
	Search(ctx context.Context, query string, k int) ([]Result, error)

	// DeleteAll removes every indexed document. Idempotent.
	DeleteAll(ctx context.Context) error

	// Count returns the number of indexed documents.
	Count(ctx context.Context) (int, error)
}
