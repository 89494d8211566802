package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/llm"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/repositories"
)

// RefresherConfig controls the incremental index refresh cycle.
type RefresherConfig struct {
	// TargetLag bounds how stale the index may get: the refresher wakes at
	// least this often and embeds everything pending.
	TargetLag time.Duration
	// EmbedBatchSize is how many chunk texts go into a single embedding call.
	EmbedBatchSize int
}

// Refresher drains chunks that have no embedding yet, in batches, on a
// fixed cadence. New chunks become searchable within one refresh cycle.
type Refresher struct {
	chunks   repositories.ChunkRepository
	embedder llm.Client
	breaker  *llm.CircuitBreaker
	pool     *llm.WorkerPool
	cfg      RefresherConfig
	logger   *zap.Logger
}

// NewRefresher creates the index refresher.
func NewRefresher(
	chunks repositories.ChunkRepository,
	embedder llm.Client,
	breaker *llm.CircuitBreaker,
	pool *llm.WorkerPool,
	cfg RefresherConfig,
	logger *zap.Logger,
) *Refresher {
	if cfg.TargetLag <= 0 {
		cfg.TargetLag = 10 * time.Minute
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 16
	}
	return &Refresher{
		chunks:   chunks,
		embedder: embedder,
		breaker:  breaker,
		pool:     pool,
		cfg:      cfg,
		logger:   logger.Named("index-refresher"),
	}
}

// Run executes refresh cycles until ctx is cancelled. It refreshes once
// immediately so a restart does not wait a full lag interval before catching
// up.
func (r *Refresher) Run(ctx context.Context) {
	r.logger.Info("Index refresher started",
		zap.Duration("target_lag", r.cfg.TargetLag),
		zap.Int("embed_batch_size", r.cfg.EmbedBatchSize))

	ticker := time.NewTicker(r.cfg.TargetLag)
	defer ticker.Stop()

	if err := r.RefreshOnce(ctx); err != nil {
		r.logger.Warn("Index refresh failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Index refresher stopped")
			return
		case <-ticker.C:
			if err := r.RefreshOnce(ctx); err != nil {
				r.logger.Warn("Index refresh failed", zap.Error(err))
			}
		}
	}
}

// RefreshOnce embeds every chunk currently pending. Batches run through the
// worker pool so one slow embedding call does not serialize the whole cycle.
func (r *Refresher) RefreshOnce(ctx context.Context) error {
	var total int
	for {
		pending, err := r.chunks.ListPendingEmbedding(ctx, r.cfg.EmbedBatchSize*8)
		if err != nil {
			return fmt.Errorf("failed to list pending chunks: %w", err)
		}
		if len(pending) == 0 {
			break
		}

		embedded, err := r.embedBatches(ctx, pending)
		total += embedded
		if err != nil {
			return err
		}
		if embedded == 0 {
			// Nothing made progress; avoid spinning on a failing endpoint.
			break
		}
	}

	if total > 0 {
		r.logger.Info("Index refreshed", zap.Int("chunks_embedded", total))
	}
	return nil
}

func (r *Refresher) embedBatches(ctx context.Context, pending []*models.Chunk) (int, error) {
	if allowed, err := r.breaker.Allow(); !allowed {
		return 0, err
	}

	items := make([]llm.WorkItem[int], 0, (len(pending)+r.cfg.EmbedBatchSize-1)/r.cfg.EmbedBatchSize)
	for start := 0; start < len(pending); start += r.cfg.EmbedBatchSize {
		end := start + r.cfg.EmbedBatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		items = append(items, llm.WorkItem[int]{
			ID: fmt.Sprintf("embed-batch-%d", start/r.cfg.EmbedBatchSize),
			Execute: func(ctx context.Context) (int, error) {
				return r.embedBatch(ctx, batch)
			},
		})
	}

	var embedded int
	var firstErr error
	for _, res := range llm.Process(ctx, r.pool, items, nil) {
		embedded += res.Result
		if res.Err != nil {
			r.breaker.RecordFailure()
			if firstErr == nil {
				firstErr = res.Err
			}
			continue
		}
		r.breaker.RecordSuccess()
	}

	return embedded, firstErr
}

// embedBatch embeds one batch and persists each vector. Returns how many
// chunks were stored.
func (r *Refresher) embedBatch(ctx context.Context, batch []*models.Chunk) (int, error) {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	vectors, err := r.embedder.CreateEmbeddings(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed chunk batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return 0, fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(vectors), len(batch))
	}

	var stored int
	for i, chunk := range batch {
		if err := r.chunks.SetEmbedding(ctx, chunk.ID, vectors[i]); err != nil {
			return stored, fmt.Errorf("failed to store embedding for chunk %s: %w", chunk.ID, err)
		}
		stored++
	}
	return stored, nil
}
