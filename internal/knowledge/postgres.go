package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// Querier is the subset of pgxpool.Pool used by PostgresStore. Defined on
// the consumer side so tests can substitute a fake.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// docMetadata is the JSONB shape stored alongside each embedding.
type docMetadata struct {
	Source  string `json:"source"`
	Title   string `json:"title"`
	ChunkID int    `json:"chunk_id"`
}

// PostgresStore is the pgvector-backed Store. Similarity is computed in SQL
// as 1 - cosine distance, so callers receive higher-is-better scores like
// every other backend. Concurrency safety comes from PostgreSQL MVCC; an
// upsert batch runs in a single transaction-free sequence of row upserts,
// each individually atomic.
type PostgresStore struct {
	db       Querier
	embedder ai.Embedder
	dim      int
	logger   *slog.Logger
}

// NewPostgresStore creates a Store over an existing connection pool.
// dim must match the documents table vector column.
func NewPostgresStore(db Querier, embedder ai.Embedder, dim int, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{
		db:       db,
		embedder: embedder,
		dim:      dim,
		logger:   logger,
	}
}

// Upsert implements Store. Each document is embedded and written with
// INSERT ... ON CONFLICT DO UPDATE; failures are per-item and the returned
// count is exact.
func (s *PostgresStore) Upsert(ctx context.Context, docs []Document) (int, error) {
	var (
		indexed  int
		firstErr error
	)

	for _, doc := range docs {
		if err := s.upsertOne(ctx, doc); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			s.logger.Warn("upserting document failed", "id", doc.ID, "error", err)
			continue
		}
		indexed++
	}

	if firstErr != nil {
		return indexed, fmt.Errorf("indexed %d of %d documents: %w", indexed, len(docs), firstErr)
	}
	return indexed, nil
}

func (s *PostgresStore) upsertOne(ctx context.Context, doc Document) error {
	if strings.TrimSpace(doc.Text) == "" {
		return fmt.Errorf("%w: document text must not be empty", ErrValidation)
	}

	vec, err := embedText(ctx, s.embedder, doc.Text)
	if err != nil {
		return err
	}
	if len(vec) != s.dim {
		return fmt.Errorf("%w: got %d, store expects %d", ErrDimensionMismatch, len(vec), s.dim)
	}

	if doc.ID == "" {
		doc.ID = DocID(doc.Source, doc.Text)
	}

	meta, err := json.Marshal(docMetadata{
		Source:  doc.Source,
		Title:   doc.Title,
		ChunkID: doc.ChunkID,
	})
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}

	embedding := pgvector.NewVector(vec)
	_, err = s.db.Exec(ctx, `
		INSERT INTO documents (id, content, embedding, metadata, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content,
		    embedding = EXCLUDED.embedding,
		    metadata = EXCLUDED.metadata`,
		doc.ID, doc.Text, embedding, meta)
	if err != nil {
		return fmt.Errorf("upserting document %q: %w", doc.ID, err)
	}
	return nil
}

// Search implements Store. The <=> operator is pgvector cosine distance;
// the SELECT converts it to similarity so ordering and scores agree.
func (s *PostgresStore) Search(ctx context.Context, query string, k int) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrValidation)
	}
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrValidation, k)
	}

	qvec, err := embedText(ctx, s.embedder, query)
	if err != nil {
		return nil, err
	}
	embedding := pgvector.NewVector(qvec)

	rows, err := s.db.Query(ctx, `
		SELECT id, content, metadata, created_at,
		       1 - (embedding <=> $1) AS similarity
		FROM documents
		ORDER BY embedding <=> $1
		LIMIT $2`,
		embedding, k)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	results := make([]Result, 0, k)
	for rows.Next() {
		var (
			doc        Document
			metaJSON   []byte
			similarity float64
		)
		if err := rows.Scan(&doc.ID, &doc.Text, &metaJSON, &doc.CreatedAt, &similarity); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}

		var meta docMetadata
		if err := json.Unmarshal(metaJSON, &meta); err != nil {
			s.logger.Warn("failed to parse document metadata", "id", doc.ID, "error", err)
		}
		doc.Source = meta.Source
		doc.Title = meta.Title
		doc.ChunkID = meta.ChunkID

		results = append(results, Result{
			Document:   doc,
			Similarity: float32(similarity),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}

	return results, nil
}

// DeleteAll implements Store.
func (s *PostgresStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM documents`); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	return nil
}

// Count implements Store.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM documents`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return int(count), nil
}
