// Package knowledge implements the vector store layer for the portal's
// retrieval pipeline.
//
// A Store persists (embedding, document) pairs and answers nearest-neighbour
// queries. Two backends are provided:
//
//   - Memory: an in-process flat index using cosine similarity, with optional
//     snapshot persistence (vector blob + parallel document list, guarded by
//     a file lock). Suited to small corpora and tests.
//   - Postgres: pgvector-backed index over the documents table, using an HNSW
//     cosine index. Suited to production.
//
// Score semantics: both backends return normalized similarity scores where
// higher is more relevant. The Postgres backend converts pgvector's cosine
// distance in SQL (1 - distance); the memory backend computes cosine
// similarity directly. Callers never see raw distances.
//
// Embeddings are produced through a Genkit ai.Embedder. Provider failures are
// wrapped in ErrEmbedding and never panic; input violations are rejected with
// ErrValidation before any network call.
package knowledge
