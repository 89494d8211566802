package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/apperrors"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/loader"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/repositories"
)

// DatasetService bulk-loads theme CSV files into the fact tables.
type DatasetService interface {
	// LoadTheme decodes the file at path (relative to the dataset root) and
	// copies its rows into the theme's fact table. Malformed rows are
	// skipped and counted, never fatal.
	LoadTheme(ctx context.Context, theme string, path string) (*models.LoadReport, error)

	// Themes lists the loadable themes in stable order.
	Themes() []string
}

type datasetService struct {
	manifest *loader.Manifest
	facts    repositories.FactRepository
	logger   *zap.Logger
}

// NewDatasetService creates the dataset load service.
func NewDatasetService(manifest *loader.Manifest, facts repositories.FactRepository, logger *zap.Logger) DatasetService {
	return &datasetService{
		manifest: manifest,
		facts:    facts,
		logger:   logger.Named("datasets"),
	}
}

var _ DatasetService = (*datasetService)(nil)

func (s *datasetService) Themes() []string {
	themes := make([]string, 0, len(s.manifest.Themes))
	for theme := range s.manifest.Themes {
		themes = append(themes, theme)
	}
	sort.Strings(themes)
	return themes
}

func (s *datasetService) LoadTheme(ctx context.Context, theme string, path string) (*models.LoadReport, error) {
	spec, ok := s.manifest.Themes[theme]
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownTheme, theme)
	}

	format, err := s.manifest.FormatFor(theme)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolvePath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: dataset file %q", apperrors.ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	sourceFile := filepath.Base(resolved)

	var loaded int64
	var skipped int64
	switch theme {
	case "tide":
		rows, sk, err := loader.DecodeTidePredictions(format, file, sourceFile)
		if err != nil {
			return nil, err
		}
		loaded, err = s.facts.CopyTidePredictions(ctx, rows)
		if err != nil {
			return nil, err
		}
		skipped = sk
	case "electricity":
		rows, sk, err := loader.DecodeElectricityDemand(format, file, sourceFile)
		if err != nil {
			return nil, err
		}
		loaded, err = s.facts.CopyElectricityDemand(ctx, rows)
		if err != nil {
			return nil, err
		}
		skipped = sk
	case "fuel":
		rows, sk, err := loader.DecodeGenerationByFuel(format, file, sourceFile)
		if err != nil {
			return nil, err
		}
		loaded, err = s.facts.CopyGenerationByFuel(ctx, rows)
		if err != nil {
			return nil, err
		}
		skipped = sk
	case "climate":
		rows, sk, err := loader.DecodeRainfallObservations(format, file, sourceFile)
		if err != nil {
			return nil, err
		}
		loaded, err = s.facts.CopyRainfallObservations(ctx, rows)
		if err != nil {
			return nil, err
		}
		skipped = sk
	case "food":
		rows, sk, err := loader.DecodeFoodPriceProducts(format, file, sourceFile)
		if err != nil {
			return nil, err
		}
		loaded, err = s.facts.CopyFoodPriceProducts(ctx, rows)
		if err != nil {
			return nil, err
		}
		skipped = sk
	case "tourism":
		rows, sk, err := loader.DecodeVisitorArrivals(format, file, sourceFile)
		if err != nil {
			return nil, err
		}
		loaded, err = s.facts.CopyVisitorArrivals(ctx, rows)
		if err != nil {
			return nil, err
		}
		skipped = sk
	case "income":
		rows, sk, err := loader.DecodeIncomeStatistics(format, file, sourceFile)
		if err != nil {
			return nil, err
		}
		loaded, err = s.facts.CopyIncomeStatistics(ctx, rows)
		if err != nil {
			return nil, err
		}
		skipped = sk
	case "events":
		rows, sk, err := loader.DecodeEvents(format, file, sourceFile)
		if err != nil {
			return nil, err
		}
		loaded, err = s.facts.CopyEvents(ctx, rows)
		if err != nil {
			return nil, err
		}
		skipped = sk
	case "maritime":
		rows, sk, err := loader.DecodeMaritimeIncidents(format, file, sourceFile)
		if err != nil {
			return nil, err
		}
		loaded, err = s.facts.CopyMaritimeIncidents(ctx, rows)
		if err != nil {
			return nil, err
		}
		skipped = sk
	default:
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownTheme, theme)
	}

	report := &models.LoadReport{
		Theme:       theme,
		Table:       spec.Table,
		SourceFile:  sourceFile,
		RowsLoaded:  loaded,
		RowsSkipped: skipped,
	}

	s.logger.Info("Dataset loaded",
		zap.String("theme", theme),
		zap.String("table", spec.Table),
		zap.String("source_file", sourceFile),
		zap.Int64("rows_loaded", loaded),
		zap.Int64("rows_skipped", skipped))

	return report, nil
}

// resolvePath joins the request path onto the dataset root, rejecting
// traversal outside it.
func (s *datasetService) resolvePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("dataset path is required")
	}
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("dataset path must be relative to the dataset root")
	}
	cleaned := filepath.Clean(path)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("dataset path escapes the dataset root")
	}

	root := s.manifest.Root
	if root == "" {
		root = "."
	}
	return filepath.Join(root, cleaned), nil
}
