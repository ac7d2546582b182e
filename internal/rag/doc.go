// Package rag assembles the retrieval-augmented answering pipeline: text
// chunking, similarity retrieval over a knowledge store, and grounded answer
// generation with source attribution.
//
// The orchestrator never raises generation failures as Go errors; they are
// folded into the Answer value so callers always get something presentable.
package rag
