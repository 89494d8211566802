// Package search implements the semantic index over regulation chunks:
// embedding-backed top-k retrieval with exact-match attribute filters, and
// a background refresher that keeps index staleness inside the configured
// target lag.
package search

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/apperrors"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/llm"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/repositories"
)

// QueryRequest is one search request.
type QueryRequest struct {
	Query  string
	Filter *models.SearchFilter
	Limit  int
}

// Service serves ranked chunk retrieval.
type Service interface {
	Query(ctx context.Context, req QueryRequest) ([]models.SearchResult, error)
}

// Config holds search service limits.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

type service struct {
	chunks   repositories.ChunkRepository
	embedder llm.Client
	breaker  *llm.CircuitBreaker
	cfg      Config
	logger   *zap.Logger
}

// NewService creates the search service.
func NewService(
	chunks repositories.ChunkRepository,
	embedder llm.Client,
	breaker *llm.CircuitBreaker,
	cfg Config,
	logger *zap.Logger,
) Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 5
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 50
	}
	return &service{
		chunks:   chunks,
		embedder: embedder,
		breaker:  breaker,
		cfg:      cfg,
		logger:   logger.Named("search"),
	}
}

var _ Service = (*service)(nil)

// Query embeds the natural-language query, ranks embedded chunks by cosine
// similarity, and returns the top-k results. Chunks whose vectors have not
// been built yet (inside the target-lag window) are not visible.
func (s *service) Query(ctx context.Context, req QueryRequest) ([]models.SearchResult, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		limit = s.cfg.MaxLimit
	}

	if allowed, err := s.breaker.Allow(); !allowed {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrSearchUnavailable, err)
	}

	queryVec, err := s.embedder.CreateEmbedding(ctx, req.Query)
	if err != nil {
		s.breaker.RecordFailure()
		return nil, fmt.Errorf("embed query: %w", err)
	}
	s.breaker.RecordSuccess()

	candidates, err := s.chunks.SearchCandidates(ctx, req.Filter)
	if err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(candidates))
	for _, cand := range candidates {
		score := cosineSimilarity(queryVec, cand.Chunk.Embedding)
		results = append(results, models.SearchResult{
			ChunkID:         cand.Chunk.ID,
			DocumentID:      cand.Chunk.DocumentID.String(),
			FileName:        cand.FileName,
			Text:            cand.Chunk.Text,
			DocumentSection: cand.Chunk.DocumentSection,
			Region:          cand.Chunk.Region,
			Keywords:        cand.Chunk.Keywords,
			Score:           score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}

	s.logger.Debug("Search completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(results)))

	return results, nil
}

// cosineSimilarity returns the cosine of the angle between two vectors.
// Mismatched or zero-length vectors score zero rather than erroring; they
// simply rank last.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
