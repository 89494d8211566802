package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/database"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
)

// ChunkCandidate is a chunk joined with its document's file name, carrying
// the embedded vector for in-process ranking.
type ChunkCandidate struct {
	Chunk    models.Chunk
	FileName string
}

// ChunkRepository provides data access for document chunks and their
// embeddings.
type ChunkRepository interface {
	// ReplaceForDocument atomically replaces a document's chunk batch.
	// Chunks are created once per parse; a re-parse rewrites the batch.
	ReplaceForDocument(ctx context.Context, documentID uuid.UUID, chunks []*models.Chunk) error

	GetByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.Chunk, error)

	// ListPendingEmbedding returns chunks the index refresher still needs
	// to embed, oldest first.
	ListPendingEmbedding(ctx context.Context, limit int) ([]*models.Chunk, error)

	// SetEmbedding stores the vector for one chunk.
	SetEmbedding(ctx context.Context, chunkID string, embedding []float32) error

	// SearchCandidates returns embedded chunks matching the exact-match
	// attribute filter. Chunks without vectors are excluded: they are not
	// yet visible to search (inside the target-lag window).
	SearchCandidates(ctx context.Context, filter *models.SearchFilter) ([]*ChunkCandidate, error)
}

type chunkRepository struct {
	db *database.DB
}

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(db *database.DB) ChunkRepository {
	return &chunkRepository{db: db}
}

var _ ChunkRepository = (*chunkRepository)(nil)

func (r *chunkRepository) ReplaceForDocument(ctx context.Context, documentID uuid.UUID, chunks []*models.Chunk) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin chunk batch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("failed to clear previous chunks: %w", err)
	}

	for _, c := range chunks {
		if c.ID == "" {
			c.ID = models.ChunkID(documentID, c.Seq)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO chunks (
				id, document_id, seq, chunk_text, token_count, char_count,
				document_section, keywords, region
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ID, documentID, c.Seq, c.Text, c.TokenCount, c.CharCount,
			c.DocumentSection, c.Keywords, c.Region,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit chunk batch: %w", err)
	}
	return nil
}

func (r *chunkRepository) GetByDocument(ctx context.Context, documentID uuid.UUID) ([]*models.Chunk, error) {
	query := `
		SELECT id, document_id, seq, chunk_text, token_count, char_count,
			document_section, keywords, region, embedded_at, created_at
		FROM chunks
		WHERE document_id = $1
		ORDER BY seq`

	rows, err := r.db.Query(ctx, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chunks: %w", err)
	}
	defer rows.Close()

	chunks := make([]*models.Chunk, 0)
	for rows.Next() {
		var c models.Chunk
		err := rows.Scan(
			&c.ID, &c.DocumentID, &c.Seq, &c.Text, &c.TokenCount, &c.CharCount,
			&c.DocumentSection, &c.Keywords, &c.Region, &c.EmbeddedAt, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chunks: %w", err)
	}
	return chunks, nil
}

func (r *chunkRepository) ListPendingEmbedding(ctx context.Context, limit int) ([]*models.Chunk, error) {
	query := `
		SELECT id, document_id, seq, chunk_text, token_count, char_count,
			document_section, keywords, region, embedded_at, created_at
		FROM chunks
		WHERE embedding IS NULL
		ORDER BY created_at
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending chunks: %w", err)
	}
	defer rows.Close()

	chunks := make([]*models.Chunk, 0)
	for rows.Next() {
		var c models.Chunk
		err := rows.Scan(
			&c.ID, &c.DocumentID, &c.Seq, &c.Text, &c.TokenCount, &c.CharCount,
			&c.DocumentSection, &c.Keywords, &c.Region, &c.EmbeddedAt, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending chunk: %w", err)
		}
		chunks = append(chunks, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending chunks: %w", err)
	}
	return chunks, nil
}

func (r *chunkRepository) SetEmbedding(ctx context.Context, chunkID string, embedding []float32) error {
	_, err := r.db.Exec(ctx, `
		UPDATE chunks SET embedding = $2, embedded_at = now() WHERE id = $1`,
		chunkID, embedding)
	if err != nil {
		return fmt.Errorf("failed to set embedding for chunk %s: %w", chunkID, err)
	}
	return nil
}

func (r *chunkRepository) SearchCandidates(ctx context.Context, filter *models.SearchFilter) ([]*ChunkCandidate, error) {
	query := `
		SELECT c.id, c.document_id, c.seq, c.chunk_text, c.token_count, c.char_count,
			c.document_section, c.keywords, c.region, c.embedding, d.file_name
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.embedding IS NOT NULL`

	args := []any{}
	n := 0
	addArg := func(v any) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}

	if !filter.IsZero() {
		for attr, value := range filter.Eq {
			switch attr {
			case "document_section":
				query += ` AND c.document_section = ` + addArg(value)
			case "region":
				query += ` AND c.region = ` + addArg(value)
			case "file_name":
				query += ` AND d.file_name = ` + addArg(value)
			case "keyword":
				query += ` AND ` + addArg(value) + ` = ANY(c.keywords)`
			default:
				return nil, fmt.Errorf("unsupported filter attribute %q", attr)
			}
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query search candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]*ChunkCandidate, 0)
	for rows.Next() {
		var cand ChunkCandidate
		err := rows.Scan(
			&cand.Chunk.ID, &cand.Chunk.DocumentID, &cand.Chunk.Seq, &cand.Chunk.Text,
			&cand.Chunk.TokenCount, &cand.Chunk.CharCount, &cand.Chunk.DocumentSection,
			&cand.Chunk.Keywords, &cand.Chunk.Region, &cand.Chunk.Embedding, &cand.FileName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search candidate: %w", err)
		}
		candidates = append(candidates, &cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search candidates: %w", err)
	}
	return candidates, nil
}
