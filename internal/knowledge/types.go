package knowledge

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Document is one unit of retrievable knowledge: a chunk of text plus the
// origin it was extracted from. Documents are immutable once created.
type Document struct {
	ID        string    `json:"id"`       // Unique identifier (content hash unless assigned)
	Text      string    `json:"text"`     // Chunk text content
	Source    string    `json:"source"`   // Origin identifier, e.g. URL
	Title     string    `json:"title"`    // Human-readable document title
	ChunkID   int       `json:"chunk_id"` // Position of this chunk within its source
	CreatedAt time.Time `json:"created_at"`
}

// Result is a single search hit with its normalized similarity score
// (higher is more relevant).
type Result struct {
	Document   Document
	Similarity float32
}

// DocID derives a stable document ID from chunk text and source, so
// re-ingesting the same content upserts rather than duplicates.
func DocID(source, text string) string {
	h := sha256.Sum256([]byte(source + "\x00" + text))
	return "doc_" + hex.EncodeToString(h[:16])
}
