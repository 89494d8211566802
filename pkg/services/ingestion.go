// Package services contains the orchestration layer: ingestion of staged
// PDFs, answer synthesis, dataset loads, and the analytical query surface.
// Services own no SQL; they compose repositories, clients, and the pure
// pipeline packages.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/apperrors"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/chunking"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/classify"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/llm"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/parser"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/repositories"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/stage"
)

// minParsedContentChars is the success threshold for a parse: anything at or
// under this is treated as a failed extraction (empty scans, cover-only
// PDFs).
const minParsedContentChars = 100

// IngestResult summarizes one ingestion run over the stage.
type IngestResult struct {
	Ingested []IngestedDocument `json:"ingested"`
	Skipped  []string           `json:"skipped"` // Already ingested, by file name
	Failed   []FailedDocument   `json:"failed"`
}

// IngestedDocument reports one successfully processed document.
type IngestedDocument struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	Region     string `json:"region"`
	PageCount  int    `json:"page_count"`
	Chunks     int    `json:"chunks"`
	Dropped    int    `json:"dropped_chunks"` // Over the token ceiling
}

// FailedDocument reports one document that ended FAILED this run.
type FailedDocument struct {
	DocumentID string `json:"document_id,omitempty"`
	FileName   string `json:"file_name"`
	Error      string `json:"error"`
}

// IngestionService runs the stage-to-chunks pipeline.
type IngestionService interface {
	// IngestStage processes every staged PDF that has not been ingested
	// yet. Idempotent: identity is the SHA-256 of the file bytes, so
	// unchanged files are skipped and FAILED documents are re-attempted.
	IngestStage(ctx context.Context) (*IngestResult, error)

	// GetDocument returns one document by id.
	GetDocument(ctx context.Context, id string) (*models.Document, error)

	// ListDocuments returns documents, optionally filtered by status.
	ListDocuments(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error)
}

type ingestionService struct {
	stage     *stage.Stage
	parser    parser.DocumentParser
	tokenizer llm.Tokenizer
	splitter  *chunking.Splitter
	maxTokens int
	documents repositories.DocumentRepository
	chunks    repositories.ChunkRepository
	logger    *zap.Logger
}

// NewIngestionService creates the ingestion pipeline service.
func NewIngestionService(
	st *stage.Stage,
	docParser parser.DocumentParser,
	tokenizer llm.Tokenizer,
	splitter *chunking.Splitter,
	maxTokens int,
	documents repositories.DocumentRepository,
	chunks repositories.ChunkRepository,
	logger *zap.Logger,
) IngestionService {
	return &ingestionService{
		stage:     st,
		parser:    docParser,
		tokenizer: tokenizer,
		splitter:  splitter,
		maxTokens: maxTokens,
		documents: documents,
		chunks:    chunks,
		logger:    logger.Named("ingestion"),
	}
}

var _ IngestionService = (*ingestionService)(nil)

func (s *ingestionService) IngestStage(ctx context.Context) (*IngestResult, error) {
	files, err := s.stage.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list stage: %w", err)
	}

	result := &IngestResult{
		Ingested: []IngestedDocument{},
		Skipped:  []string{},
		Failed:   []FailedDocument{},
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		data, err := s.stage.Read(file.Name)
		if err != nil {
			result.Failed = append(result.Failed, FailedDocument{FileName: file.Name, Error: err.Error()})
			continue
		}

		hash := sha256.Sum256(data)
		contentHash := hex.EncodeToString(hash[:])

		doc, err := s.documents.GetByHash(ctx, contentHash)
		switch {
		case err == nil:
			if doc.Status == models.DocumentSuccess {
				result.Skipped = append(result.Skipped, file.Name)
				continue
			}
			// PENDING from a crashed run or FAILED: re-attempt.
		case errors.Is(err, apperrors.ErrNotFound):
			doc = &models.Document{
				FileName:    file.Name,
				StagePath:   file.Name,
				ContentHash: contentHash,
				Region:      classify.Region(file.Name),
				ByteSize:    int64(len(data)),
				Status:      models.DocumentPending,
			}
			if err := s.documents.Create(ctx, doc); err != nil {
				result.Failed = append(result.Failed, FailedDocument{FileName: file.Name, Error: err.Error()})
				continue
			}
		default:
			return result, fmt.Errorf("failed to look up document by hash: %w", err)
		}

		ingested, err := s.processDocument(ctx, doc, data)
		if err != nil {
			s.logger.Warn("Document ingestion failed",
				zap.String("file_name", file.Name),
				zap.String("document_id", doc.ID.String()),
				zap.Error(err))
			result.Failed = append(result.Failed, FailedDocument{
				DocumentID: doc.ID.String(),
				FileName:   file.Name,
				Error:      err.Error(),
			})
			continue
		}
		result.Ingested = append(result.Ingested, *ingested)
	}

	s.logger.Info("Stage ingestion completed",
		zap.Int("ingested", len(result.Ingested)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)))

	return result, nil
}

// processDocument runs parse → threshold check → split → token filter →
// classify → persist for one document. Any failure marks the document
// FAILED with the message stored for inspection.
func (s *ingestionService) processDocument(ctx context.Context, doc *models.Document, data []byte) (*IngestedDocument, error) {
	if err := s.documents.MarkProcessing(ctx, doc.ID); err != nil {
		return nil, err
	}

	fail := func(cause error) (*IngestedDocument, error) {
		if markErr := s.documents.MarkFailed(ctx, doc.ID, cause.Error()); markErr != nil {
			s.logger.Error("Failed to mark document FAILED",
				zap.String("document_id", doc.ID.String()),
				zap.Error(markErr))
		}
		return nil, cause
	}

	parsed, err := s.parser.Parse(ctx, doc.FileName, data)
	if err != nil {
		return fail(fmt.Errorf("parse failed: %w", err))
	}

	if len(parsed.Content) <= minParsedContentChars {
		return fail(fmt.Errorf("parsed content too short (%d chars): likely an empty or image-only PDF", len(parsed.Content)))
	}

	pieces := s.splitter.Split(parsed.Content)
	kept, tokenCounts, dropped, err := chunking.FilterByTokens(ctx, s.tokenizer, pieces, s.maxTokens)
	if err != nil {
		return fail(fmt.Errorf("token counting failed: %w", err))
	}

	now := time.Now()
	chunks := make([]*models.Chunk, len(kept))
	for i, text := range kept {
		chunks[i] = &models.Chunk{
			ID:              models.ChunkID(doc.ID, i),
			DocumentID:      doc.ID,
			Seq:             i,
			Text:            text,
			TokenCount:      tokenCounts[i],
			CharCount:       len([]rune(text)),
			DocumentSection: classify.Section(text),
			Keywords:        classify.Keywords(text),
			Region:          doc.Region,
			CreatedAt:       now,
		}
	}

	if err := s.chunks.ReplaceForDocument(ctx, doc.ID, chunks); err != nil {
		return fail(fmt.Errorf("failed to store chunks: %w", err))
	}

	if err := s.documents.MarkSuccess(ctx, doc.ID, parsed.Content, parsed.PageCount); err != nil {
		return nil, err
	}

	s.logger.Info("Document ingested",
		zap.String("document_id", doc.ID.String()),
		zap.String("file_name", doc.FileName),
		zap.Int("chunks", len(chunks)),
		zap.Int("dropped_chunks", dropped))

	return &IngestedDocument{
		DocumentID: doc.ID.String(),
		FileName:   doc.FileName,
		Region:     doc.Region,
		PageCount:  parsed.PageCount,
		Chunks:     len(chunks),
		Dropped:    dropped,
	}, nil
}

func (s *ingestionService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	docID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	return s.documents.GetByID(ctx, docID)
}

func (s *ingestionService) ListDocuments(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error) {
	return s.documents.List(ctx, status)
}

// parseUUID maps malformed ids onto ErrNotFound so callers treat them like
// any other missing resource.
func parseUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id %q", apperrors.ErrNotFound, id)
	}
	return parsed, nil
}
