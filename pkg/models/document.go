package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks a document through the ingestion pipeline.
// SUCCESS and FAILED are terminal; a failed parse is only retried by
// re-running ingestion.
type DocumentStatus string

const (
	DocumentPending    DocumentStatus = "PENDING"
	DocumentProcessing DocumentStatus = "PROCESSING"
	DocumentSuccess    DocumentStatus = "SUCCESS"
	DocumentFailed     DocumentStatus = "FAILED"
)

// Document represents one uploaded PDF in the regulations corpus.
// Stored in the documents table. Identity is the SHA-256 of the staged file
// bytes, so re-running ingestion against the same stage is idempotent.
type Document struct {
	ID            uuid.UUID      `json:"id"`
	FileName      string         `json:"file_name"`
	StagePath     string         `json:"stage_path"`
	ContentHash   string         `json:"content_hash"`
	Region        string         `json:"region"`
	ParsedContent *string        `json:"-"` // Opaque parser output; large, not serialized to API responses
	PageCount     *int           `json:"page_count,omitempty"`
	ByteSize      int64          `json:"byte_size"`
	Status        DocumentStatus `json:"status"`
	ErrorMessage  *string        `json:"error_message,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// IsTerminal returns true once the document has finished processing.
func (d *Document) IsTerminal() bool {
	return d.Status == DocumentSuccess || d.Status == DocumentFailed
}
