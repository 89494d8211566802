//go:build integration

package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/testhelpers"
)

// setupChunkDocument creates a parent document for chunk tests.
func setupChunkDocument(t *testing.T, name string) uuid.UUID {
	t.Helper()

	testDB := testhelpers.GetTestDB(t)
	repo := NewDocumentRepository(testDB.DB)

	doc := newTestDocument(name)
	require.NoError(t, repo.Create(context.Background(), doc))
	return doc.ID
}

func testChunk(docID uuid.UUID, seq int, text string) *models.Chunk {
	return &models.Chunk{
		DocumentID:      docID,
		Seq:             seq,
		Text:            text,
		TokenCount:      len(text) / 4,
		CharCount:       len([]rune(text)),
		DocumentSection: "daily bag limits",
		Keywords:        []string{"snapper", "bag limit"},
		Region:          "auckland",
	}
}

func TestChunkRepository_ReplaceForDocument(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewChunkRepository(testDB.DB)
	ctx := context.Background()

	docID := setupChunkDocument(t, "chunks_replace.pdf")

	first := []*models.Chunk{
		testChunk(docID, 0, "Snapper daily bag limit is 7 per person."),
		testChunk(docID, 1, "Minimum size for snapper is 30cm."),
	}
	require.NoError(t, repo.ReplaceForDocument(ctx, docID, first))

	got, err := repo.GetByDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.ChunkID(docID, 0), got[0].ID)
	assert.Equal(t, []string{"snapper", "bag limit"}, got[0].Keywords)
	assert.Nil(t, got[0].EmbeddedAt)

	// A re-parse rewrites the batch, not appends to it.
	second := []*models.Chunk{
		testChunk(docID, 0, "Revised: snapper daily bag limit is 10."),
	}
	require.NoError(t, repo.ReplaceForDocument(ctx, docID, second))

	got, err = repo.GetByDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Text, "Revised")
}

func TestChunkRepository_EmbeddingLifecycle(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewChunkRepository(testDB.DB)
	ctx := context.Background()

	docID := setupChunkDocument(t, "chunks_embedding.pdf")
	require.NoError(t, repo.ReplaceForDocument(ctx, docID, []*models.Chunk{
		testChunk(docID, 0, "Paua may not be taken while scuba diving."),
	}))

	pending, err := repo.ListPendingEmbedding(ctx, 1000)
	require.NoError(t, err)
	chunkID := models.ChunkID(docID, 0)
	ids := make([]string, len(pending))
	for i, c := range pending {
		ids[i] = c.ID
	}
	require.Contains(t, ids, chunkID)

	require.NoError(t, repo.SetEmbedding(ctx, chunkID, []float32{0.1, 0.2, 0.3}))

	pending, err = repo.ListPendingEmbedding(ctx, 1000)
	require.NoError(t, err)
	for _, c := range pending {
		assert.NotEqual(t, chunkID, c.ID)
	}

	got, err := repo.GetByDocument(ctx, docID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].EmbeddedAt)
}

func TestChunkRepository_SearchCandidates(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewChunkRepository(testDB.DB)
	ctx := context.Background()

	docID := setupChunkDocument(t, "chunks_search.pdf")
	embedded := testChunk(docID, 0, "Marine reserve: no fishing of any kind.")
	embedded.DocumentSection = "marine reserves"
	unembedded := testChunk(docID, 1, "Check the official rules before fishing.")
	require.NoError(t, repo.ReplaceForDocument(ctx, docID, []*models.Chunk{embedded, unembedded}))
	require.NoError(t, repo.SetEmbedding(ctx, models.ChunkID(docID, 0), []float32{1, 0}))

	// Unembedded chunks are invisible to search.
	candidates, err := repo.SearchCandidates(ctx, &models.SearchFilter{
		Eq: map[string]string{"file_name": "chunks_search.pdf"},
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, models.ChunkID(docID, 0), candidates[0].Chunk.ID)
	assert.Equal(t, "chunks_search.pdf", candidates[0].FileName)
	assert.Equal(t, []float32{1, 0}, candidates[0].Chunk.Embedding)

	candidates, err = repo.SearchCandidates(ctx, &models.SearchFilter{
		Eq: map[string]string{"document_section": "marine reserves", "keyword": "snapper"},
	})
	require.NoError(t, err)
	require.Len(t, candidates, 1)

	candidates, err = repo.SearchCandidates(ctx, &models.SearchFilter{
		Eq: map[string]string{"region": "otago"},
	})
	require.NoError(t, err)
	assert.Empty(t, candidates)

	_, err = repo.SearchCandidates(ctx, &models.SearchFilter{
		Eq: map[string]string{"token_count": "3"},
	})
	assert.Error(t, err)
}
