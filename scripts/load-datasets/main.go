// load-datasets bulk-loads theme CSV files into the fact tables.
//
// Usage: go run ./scripts/load-datasets <theme=path> [<theme=path> ...]
//
// Each argument names a manifest theme and the data file to load for it,
// relative to the manifest root, e.g.:
//
//	go run ./scripts/load-datasets tide=tide_predictions_2024.csv events=events.tsv
//
// Rows that fail to decode are skipped and counted, not fatal: a load
// reports loaded and skipped counts per theme and only aborts on file or
// database errors.
//
// Database connection: uses config.yaml plus standard PG* environment
// variables.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/config"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/database"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/loader"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/repositories"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/services"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <theme=path> [<theme=path> ...]\n", os.Args[0])
		os.Exit(1)
	}

	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx := context.Background()

	// Local convenience: pick up PG* and other secrets from .env when present.
	_ = godotenv.Load()

	cfg, err := config.Load("load-datasets")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: 4,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	manifest, err := loader.LoadManifest(cfg.Datasets.ManifestPath)
	if err != nil {
		return err
	}

	datasets := services.NewDatasetService(manifest, repositories.NewFactRepository(db), logger)

	failed := 0
	for _, arg := range args {
		theme, path, ok := strings.Cut(arg, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "skipping malformed argument %q (want theme=path)\n", arg)
			failed++
			continue
		}

		report, err := datasets.LoadTheme(ctx, theme, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: load failed: %v\n", theme, err)
			failed++
			continue
		}

		fmt.Printf("%s: loaded %d rows into %s (%d skipped)\n",
			theme, report.RowsLoaded, report.Table, report.RowsSkipped)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d loads failed", failed, len(args))
	}
	return nil
}
