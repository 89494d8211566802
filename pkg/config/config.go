package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the platform engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis query-result cache (optional - empty host disables caching)
	Redis RedisConfig `yaml:"redis"`

	// Document stage (local object storage for uploaded PDFs)
	Stage StageConfig `yaml:"stage"`

	// Document layout parser endpoint
	Parser ParserConfig `yaml:"parser"`

	// LLM and embedding endpoints
	AI AIConfig `yaml:"ai"`

	// Chunking parameters
	Chunking ChunkingConfig `yaml:"chunking"`

	// Search index parameters
	Search SearchConfig `yaml:"search"`

	// Analytical query surface limits
	Query QueryConfig `yaml:"query"`

	// Dataset manifest for bulk CSV loads
	Datasets DatasetsConfig `yaml:"datasets"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"moana"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"moana_platform"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisConfig holds the optional Redis cache configuration.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// StageConfig holds the document stage location.
type StageConfig struct {
	// Root is the directory holding staged PDF uploads. Files must be
	// uploaded uncompressed; the layout parser rejects compressed input.
	Root string `yaml:"root" env:"STAGE_ROOT" env-default:"./stage"`
}

// ParserConfig holds the document layout parser endpoint configuration.
type ParserConfig struct {
	Endpoint string        `yaml:"endpoint" env:"PARSER_ENDPOINT" env-default:""`
	APIKey   string        `yaml:"-" env:"PARSER_API_KEY"` // Secret - not in YAML
	Mode     string        `yaml:"mode" env:"PARSER_MODE" env-default:"LAYOUT"`
	Timeout  time.Duration `yaml:"timeout" env:"PARSER_TIMEOUT" env-default:"2m"`
}

// AIConfig holds LLM completion and embedding endpoint configuration.
type AIConfig struct {
	LLMBaseURL       string `yaml:"llm_base_url" env:"AI_LLM_BASE_URL" env-default:""`
	LLMModel         string `yaml:"llm_model" env:"AI_LLM_MODEL" env-default:""`
	LLMAPIKey        string `yaml:"-" env:"AI_LLM_API_KEY"` // Secret - not in YAML
	EmbeddingBaseURL string `yaml:"embedding_base_url" env:"AI_EMBEDDING_BASE_URL" env-default:""`
	EmbeddingModel   string `yaml:"embedding_model" env:"AI_EMBEDDING_MODEL" env-default:"text-embedding-3-small"`
	// TokenizerURL is the model server's tokenize endpoint. When empty, a
	// character-based token estimate is used instead.
	TokenizerURL string `yaml:"tokenizer_url" env:"AI_TOKENIZER_URL" env-default:""`
}

// IsAvailable returns true if a completion endpoint is configured.
func (c *AIConfig) IsAvailable() bool {
	return c.LLMBaseURL != "" && c.LLMModel != ""
}

// EffectiveEmbeddingBaseURL returns the embedding endpoint, falling back to
// the LLM endpoint when no dedicated one is configured.
func (c *AIConfig) EffectiveEmbeddingBaseURL() string {
	if c.EmbeddingBaseURL != "" {
		return c.EmbeddingBaseURL
	}
	return c.LLMBaseURL
}

// ChunkingConfig holds the recursive splitter parameters.
type ChunkingConfig struct {
	TargetChars  int    `yaml:"target_chars" env:"CHUNK_TARGET_CHARS" env-default:"1800"`
	OverlapChars int    `yaml:"overlap_chars" env:"CHUNK_OVERLAP_CHARS" env-default:"50"`
	MinChars     int    `yaml:"min_chars" env:"CHUNK_MIN_CHARS" env-default:"50"`
	MaxTokens    int    `yaml:"max_tokens" env:"CHUNK_MAX_TOKENS" env-default:"512"`
	Format       string `yaml:"format" env:"CHUNK_FORMAT" env-default:"markdown"`
}

// SearchConfig holds search index parameters.
type SearchConfig struct {
	// TargetLag is the maximum staleness between chunk-table changes and
	// index visibility. The refresher wakes on this interval.
	TargetLag      time.Duration `yaml:"target_lag" env:"SEARCH_TARGET_LAG" env-default:"10m"`
	DefaultLimit   int           `yaml:"default_limit" env:"SEARCH_DEFAULT_LIMIT" env-default:"5"`
	MaxLimit       int           `yaml:"max_limit" env:"SEARCH_MAX_LIMIT" env-default:"50"`
	EmbedBatchSize int           `yaml:"embed_batch_size" env:"SEARCH_EMBED_BATCH_SIZE" env-default:"16"`
}

// QueryConfig holds analytical query surface limits.
type QueryConfig struct {
	Timeout  time.Duration `yaml:"timeout" env:"QUERY_TIMEOUT" env-default:"30s"`
	MaxRows  int           `yaml:"max_rows" env:"QUERY_MAX_ROWS" env-default:"1000"`
	CacheTTL time.Duration `yaml:"cache_ttl" env:"QUERY_CACHE_TTL" env-default:"10m"`
}

// DatasetsConfig points at the dataset manifest used by bulk loads.
type DatasetsConfig struct {
	ManifestPath string `yaml:"manifest_path" env:"DATASETS_MANIFEST" env-default:"datasets.yaml"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The version parameter is injected at build time and set on the
// returned Config. Secrets (PGPASSWORD, AI_LLM_API_KEY, ...) must come from
// environment variables (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Chunking.OverlapChars < 0 || c.Chunking.OverlapChars >= c.Chunking.TargetChars {
		return fmt.Errorf("chunking overlap_chars must be >= 0 and < target_chars")
	}
	if c.Chunking.MaxTokens <= 0 {
		return fmt.Errorf("chunking max_tokens must be > 0")
	}
	if c.Search.TargetLag <= 0 {
		return fmt.Errorf("search target_lag must be > 0")
	}
	if c.Search.DefaultLimit <= 0 || c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search default_limit must be > 0 and <= max_limit")
	}
	return nil
}
