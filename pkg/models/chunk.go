package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chunk is a contiguous text window of one Document, the unit of semantic
// search. Chunks are created once, in a single batch, after a successful
// parse and are never individually updated. Token count never exceeds the
// configured ceiling (512); oversized chunks are dropped at ingestion.
type Chunk struct {
	ID              string     `json:"id"` // "<document_id>:<seq>"
	DocumentID      uuid.UUID  `json:"document_id"`
	Seq             int        `json:"seq"`
	Text            string     `json:"text"`
	TokenCount      int        `json:"token_count"`
	CharCount       int        `json:"char_count"`
	DocumentSection string     `json:"document_section"`
	Keywords        []string   `json:"keywords"`
	Region          string     `json:"region"`
	Embedding       []float32  `json:"-"` // Populated by the index refresher
	EmbeddedAt      *time.Time `json:"embedded_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ChunkID derives the stable chunk identifier from document id and sequence.
func ChunkID(documentID uuid.UUID, seq int) string {
	return fmt.Sprintf("%s:%d", documentID, seq)
}
