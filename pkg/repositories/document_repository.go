package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/apperrors"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/database"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
)

// DocumentRepository provides data access for ingested documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	GetByHash(ctx context.Context, contentHash string) (*models.Document, error)
	List(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkSuccess(ctx context.Context, id uuid.UUID, content string, pageCount int) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
}

type documentRepository struct {
	db *database.DB
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *database.DB) DocumentRepository {
	return &documentRepository{db: db}
}

var _ DocumentRepository = (*documentRepository)(nil)

const documentColumns = `id, file_name, stage_path, content_hash, region, parsed_content,
	page_count, byte_size, status, error_message, created_at, updated_at`

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	now := time.Now()
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Status == "" {
		doc.Status = models.DocumentPending
	}

	query := `
		INSERT INTO documents (
			id, file_name, stage_path, content_hash, region, byte_size, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		doc.ID, doc.FileName, doc.StagePath, doc.ContentHash, doc.Region,
		doc.ByteSize, doc.Status, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique violation on content_hash.
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: document with content hash %s already exists", apperrors.ErrConflict, doc.ContentHash)
		}
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *documentRepository) GetByHash(ctx context.Context, contentHash string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE content_hash = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, contentHash))
}

func (r *documentRepository) List(ctx context.Context, status models.DocumentStatus) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}
	return docs, nil
}

func (r *documentRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.updateStatus(ctx,
		`UPDATE documents SET status = 'PROCESSING', error_message = NULL, updated_at = now() WHERE id = $1`, id)
}

// MarkSuccess records the parsed content and page metadata. Callers enforce
// the content-length threshold before declaring success.
func (r *documentRepository) MarkSuccess(ctx context.Context, id uuid.UUID, content string, pageCount int) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE documents
		SET status = 'SUCCESS', parsed_content = $2, page_count = $3, error_message = NULL, updated_at = now()
		WHERE id = $1`,
		id, content, pageCount)
	if err != nil {
		return fmt.Errorf("failed to mark document success: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *documentRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE documents
		SET status = 'FAILED', error_message = $2, updated_at = now()
		WHERE id = $1`,
		id, message)
	if err != nil {
		return fmt.Errorf("failed to mark document failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *documentRepository) updateStatus(ctx context.Context, query string, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *documentRepository) scanOne(row pgx.Row) (*models.Document, error) {
	d, err := scanDocumentRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDocumentRow(row scannable) (*models.Document, error) {
	var d models.Document
	err := row.Scan(
		&d.ID, &d.FileName, &d.StagePath, &d.ContentHash, &d.Region, &d.ParsedContent,
		&d.PageCount, &d.ByteSize, &d.Status, &d.ErrorMessage, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDocument(rows pgx.Rows) (*models.Document, error) {
	d, err := scanDocumentRow(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return d, nil
}
