package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/database"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/logging"
	enginesql "github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/sql"
)

// QueryRequest is one analytical query submission.
type QueryRequest struct {
	SQL        string         `json:"sql"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// QueryResult holds the rows of an executed analytical query.
type QueryResult struct {
	Columns  []string `json:"columns"`
	Rows     [][]any  `json:"rows"`
	RowCount int      `json:"row_count"`
	// Truncated is set when the row cap cut the result off.
	Truncated bool `json:"truncated"`
	// Cached is set when the result came from the query cache.
	Cached bool `json:"cached"`
}

// QueryConfig bounds the analytical query surface.
type QueryConfig struct {
	Timeout  time.Duration
	MaxRows  int
	CacheTTL time.Duration
}

// QueryService executes validated read-only SQL over the fact tables and
// the documents corpus.
type QueryService interface {
	Execute(ctx context.Context, req QueryRequest) (*QueryResult, error)
}

type queryService struct {
	db     *database.DB
	cache  *redis.Client // nil disables caching
	cfg    QueryConfig
	logger *zap.Logger
}

// NewQueryService creates the analytical query service. cache may be nil,
// which disables result caching without affecting execution.
func NewQueryService(db *database.DB, cache *redis.Client, cfg QueryConfig, logger *zap.Logger) QueryService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 1000
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &queryService{
		db:     db,
		cache:  cache,
		cfg:    cfg,
		logger: logger.Named("query"),
	}
}

var _ QueryService = (*queryService)(nil)

// Execute validates, screens, and runs one read-only statement. The
// pipeline is: normalize and reject non-SELECT or multi-statement input,
// substitute {{name}} parameters into positional bindings, screen string
// parameter values with libinjection, then execute under the statement
// timeout with the row cap applied. Results are cached keyed by the
// normalized SQL plus parameters.
func (s *queryService) Execute(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	if req.SQL == "" {
		return nil, fmt.Errorf("sql is required")
	}

	validation := enginesql.ValidateAndNormalize(req.SQL)
	if validation.Error != nil {
		return nil, validation.Error
	}
	if validation.NormalizedSQL == "" {
		return nil, fmt.Errorf("sql is required")
	}

	if dirty := enginesql.CheckAllParameters(req.Parameters); len(dirty) > 0 {
		return nil, fmt.Errorf("parameter %q failed injection screening (fingerprint %s)",
			dirty[0].ParamName, dirty[0].Fingerprint)
	}

	prepared, values, err := enginesql.SubstituteParameters(validation.NormalizedSQL, req.Parameters)
	if err != nil {
		return nil, err
	}

	cacheKey := s.cacheKey(validation.NormalizedSQL, req.Parameters)
	if cached := s.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	rows, err := s.db.Query(queryCtx, prepared, values...)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, fd := range fields {
		columns[i] = string(fd.Name)
	}

	result := &QueryResult{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		if len(result.Rows) >= s.cfg.MaxRows {
			result.Truncated = true
			break
		}
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil && !result.Truncated {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	result.RowCount = len(result.Rows)

	s.toCache(ctx, cacheKey, result)

	s.logger.Debug("Query executed",
		zap.String("sql", logging.SanitizeQuery(validation.NormalizedSQL)),
		zap.Int("rows", result.RowCount),
		zap.Bool("truncated", result.Truncated))

	return result, nil
}

// cacheKey hashes the normalized SQL plus the parameter values in stable
// order.
func (s *queryService) cacheKey(normalizedSQL string, params map[string]any) string {
	h := sha256.New()
	h.Write([]byte(normalizedSQL))

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(h, "|%s=%v", name, params[name])
	}

	return "query:" + hex.EncodeToString(h.Sum(nil))
}

func (s *queryService) fromCache(ctx context.Context, key string) *QueryResult {
	if s.cache == nil {
		return nil
	}

	payload, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("Query cache read failed", zap.Error(err))
		}
		return nil
	}

	var result QueryResult
	if err := json.Unmarshal(payload, &result); err != nil {
		s.logger.Warn("Query cache entry unreadable", zap.Error(err))
		return nil
	}
	result.Cached = true
	return &result
}

func (s *queryService) toCache(ctx context.Context, key string, result *QueryResult) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cfg.CacheTTL).Err(); err != nil {
		s.logger.Warn("Query cache write failed", zap.Error(err))
	}
}
