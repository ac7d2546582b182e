package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/govlk/citizenport/internal/knowledge"
)

// Retriever finds the k most relevant documents for a query. Satisfied by
// any knowledge.Store through NewStoreRetriever.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]knowledge.Result, error)
}

// storeRetriever adapts a knowledge.Store to the Retriever contract.
type storeRetriever struct {
	store knowledge.Store
}

// NewStoreRetriever wraps a knowledge store as a Retriever.
func NewStoreRetriever(store knowledge.Store) Retriever {
	return &storeRetriever{store: store}
}

func (r *storeRetriever) Retrieve(ctx context.Context, query string, k int) ([]knowledge.Result, error) {
	return r.store.Search(ctx, query, k)
}

// Source attributes part of an answer to one retrieved document.
type Source struct {
	URL            string  `json:"url"`
	Title          string  `json:"title"`
	RelevanceScore float32 `json:"relevance_score"`
}

// Answer is the full result of one answer_query round trip.
type Answer struct {
	Query         string   `json:"query"`
	Answer        string   `json:"answer"`
	Sources       []Source `json:"sources"`
	Confidence    string   `json:"confidence"`
	RetrievedDocs int      `json:"retrieved_docs"`
	Model         string   `json:"model,omitempty"`
	Err           string   `json:"error,omitempty"`
}

// Stats reports the size of the knowledge base.
type Stats struct {
	TotalDocuments int    `json:"total_documents"`
	CollectionName string `json:"collection_name"`
}

// System is the orchestrator tying retrieval and generation together.
type System struct {
	retriever  Retriever
	generator  Generator
	store      knowledge.Store
	collection string
	modelName  string
	logger     *slog.Logger
}

// NewSystem builds an orchestrator over a knowledge store and generator.
func NewSystem(store knowledge.Store, generator Generator, collection, modelName string, logger *slog.Logger) *System {
	if logger == nil {
		logger = slog.Default()
	}
	return &System{
		retriever:  NewStoreRetriever(store),
		generator:  generator,
		store:      store,
		collection: collection,
		modelName:  modelName,
		logger:     logger,
	}
}

// WithRetriever swaps the retriever, keeping everything else. Used by tests
// and by callers layering caching or reranking on top of the store.
func (s *System) WithRetriever(r Retriever) *System {
	clone := *s
	clone.retriever = r
	return &clone
}

// AnswerQuery runs the full pipeline: retrieve, assemble context, generate,
// attribute sources.
//
// Degradation policy: an empty retrieval (or a retrieval error, which is
// logged and treated the same) short-circuits to a low-confidence "no
// information" answer without touching the generator. A generation failure
// keeps the terminal shape with the cause in Err. Neither case returns a Go
// error; only input validation does.
func (s *System) AnswerQuery(ctx context.Context, query string, k int) (Answer, error) {
	if strings.TrimSpace(query) == "" {
		return Answer{}, fmt.Errorf("%w: query must not be empty", knowledge.ErrValidation)
	}
	if k < 1 {
		k = DefaultTopK
	}

	results, err := s.retriever.Retrieve(ctx, query, k)
	if err != nil {
		s.logger.Warn("retrieval failed, answering without context", "error", err)
		results = nil
	}

	if len(results) == 0 {
		return Answer{
			Query:         query,
			Answer:        noInfoAnswer,
			Sources:       []Source{},
			Confidence:    ConfidenceLow,
			RetrievedDocs: 0,
		}, nil
	}

	contextText := buildContext(results)

	gen := s.generator.Generate(ctx, query, contextText)
	if !gen.OK {
		return Answer{
			Query:         query,
			Answer:        generationFailedAnswer,
			Sources:       []Source{},
			Confidence:    ConfidenceLow,
			RetrievedDocs: len(results),
			Err:           gen.Err,
		}, nil
	}

	confidence := ConfidenceMedium
	if len(results) >= highConfidenceDocs {
		confidence = ConfidenceHigh
	}

	sources := make([]Source, len(results))
	for i, r := range results {
		sources[i] = Source{
			URL:            r.Document.Source,
			Title:          sourceTitle(r.Document),
			RelevanceScore: r.Similarity,
		}
	}

	return Answer{
		Query:         query,
		Answer:        gen.Answer,
		Sources:       sources,
		Confidence:    confidence,
		RetrievedDocs: len(results),
		Model:         s.modelName,
	}, nil
}

// AddDocuments indexes documents into the knowledge store and returns the
// number successfully embedded and stored.
func (s *System) AddDocuments(ctx context.Context, docs []knowledge.Document) (int, error) {
	return s.store.Upsert(ctx, docs)
}

// Stats reports knowledge base size and collection name.
func (s *System) Stats(ctx context.Context) (Stats, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("counting documents: %w", err)
	}
	return Stats{TotalDocuments: count, CollectionName: s.collection}, nil
}

// buildContext renders retrieved documents in rank order, each prefixed with
// a numbered source tag the prompt instructs the model to cite.
func buildContext(results []knowledge.Result) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Source %d: %s]\n%s", i+1, r.Document.Source, r.Document.Text)
	}
	return b.String()
}

func sourceTitle(doc knowledge.Document) string {
	if doc.Title != "" {
		return doc.Title
	}
	return "Document"
}
