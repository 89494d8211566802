package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/chunking"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/config"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/database"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/handlers"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/llm"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/loader"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/logging"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/middleware"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/parser"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/repositories"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/search"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/services"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/stage"
)

// Version is set at build time via ldflags
var Version = "dev"

const migrationsPath = "migrations"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("stage_root", cfg.Stage.Root),
		zap.Duration("search_target_lag", cfg.Search.TargetLag),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		// Driver errors can echo the DSN; redact before logging.
		logger.Fatal("Failed to connect to database",
			zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, migrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	// Redis (optional; nil client disables query caching)
	redisClient, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient == nil {
		logger.Info("Redis not configured, query caching disabled")
	}

	// AI endpoints
	if !cfg.AI.IsAvailable() {
		logger.Fatal("AI endpoint not configured (AI_LLM_BASE_URL / AI_LLM_MODEL)")
	}
	llmClient, err := llm.NewClient(&llm.Config{
		Endpoint: cfg.AI.LLMBaseURL,
		Model:    cfg.AI.LLMModel,
		APIKey:   cfg.AI.LLMAPIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}
	embeddingClient, err := llm.NewClient(&llm.Config{
		Endpoint:       cfg.AI.EffectiveEmbeddingBaseURL(),
		Model:          cfg.AI.LLMModel,
		EmbeddingModel: cfg.AI.EmbeddingModel,
		APIKey:         cfg.AI.LLMAPIKey,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create embedding client", zap.Error(err))
	}

	var tokenizer llm.Tokenizer
	if cfg.AI.TokenizerURL != "" {
		tokenizer = llm.NewHTTPTokenizer(cfg.AI.TokenizerURL, cfg.AI.LLMModel)
	} else {
		tokenizer = llm.NewEstimatingTokenizer()
	}

	completionBreaker := llm.NewCircuitBreaker(llm.DefaultCircuitBreakerConfig())
	embeddingBreaker := llm.NewCircuitBreaker(llm.DefaultCircuitBreakerConfig())
	embeddingPool := llm.NewWorkerPool(llm.DefaultWorkerPoolConfig(), logger)

	// Document stage and layout parser
	st, err := stage.New(cfg.Stage.Root, logger)
	if err != nil {
		logger.Fatal("Failed to open document stage", zap.Error(err))
	}
	docParser, err := parser.New(parser.Config{
		Endpoint: cfg.Parser.Endpoint,
		APIKey:   cfg.Parser.APIKey,
		Mode:     cfg.Parser.Mode,
		Timeout:  cfg.Parser.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create document parser", zap.Error(err))
	}

	// Dataset manifest
	manifest, err := loader.LoadManifest(cfg.Datasets.ManifestPath)
	if err != nil {
		logger.Fatal("Failed to load dataset manifest", zap.Error(err))
	}

	// Repositories
	documentRepo := repositories.NewDocumentRepository(db)
	chunkRepo := repositories.NewChunkRepository(db)
	factRepo := repositories.NewFactRepository(db)

	// Services
	splitter := chunking.NewSplitter(chunking.Config{
		TargetChars:  cfg.Chunking.TargetChars,
		OverlapChars: cfg.Chunking.OverlapChars,
		MinChars:     cfg.Chunking.MinChars,
		Format:       cfg.Chunking.Format,
	})
	ingestionService := services.NewIngestionService(
		st, docParser, tokenizer, splitter, cfg.Chunking.MaxTokens,
		documentRepo, chunkRepo, logger)
	searchService := search.NewService(chunkRepo, embeddingClient, embeddingBreaker, search.Config{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
	}, logger)
	answerService := services.NewAnswerService(searchService, llmClient, completionBreaker, logger)
	datasetService := services.NewDatasetService(manifest, factRepo, logger)
	queryService := services.NewQueryService(db, redisClient, services.QueryConfig{
		Timeout:  cfg.Query.Timeout,
		MaxRows:  cfg.Query.MaxRows,
		CacheTTL: cfg.Query.CacheTTL,
	}, logger)

	// Background index refresher keeps new chunks searchable within the
	// configured target lag.
	refresher := search.NewRefresher(chunkRepo, embeddingClient, embeddingBreaker, embeddingPool,
		search.RefresherConfig{
			TargetLag:      cfg.Search.TargetLag,
			EmbedBatchSize: cfg.Search.EmbedBatchSize,
		}, logger)
	go refresher.Run(ctx)

	mux := http.NewServeMux()

	// Register handlers
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewDocumentsHandler(ingestionService, st, logger).RegisterRoutes(mux)
	handlers.NewSearchHandler(searchService, logger).RegisterRoutes(mux)
	handlers.NewAskHandler(answerService, logger).RegisterRoutes(mux)
	handlers.NewDatasetsHandler(datasetService, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(queryService, logger).RegisterRoutes(mux)

	server := &http.Server{
		Addr:    net.JoinHostPort(cfg.BindAddr, cfg.Port),
		Handler: middleware.RequestLogger(logger)(mux),
	}

	go func() {
		logger.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.String("version", cfg.Version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
