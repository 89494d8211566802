package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/apperrors"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/loader"
)

func newDatasetService(t *testing.T, facts *fakeFactRepo, files map[string]string) DatasetService {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}

	manifest := &loader.Manifest{
		Root: root,
		Themes: map[string]loader.ThemeSpec{
			"tide":   {Table: "tide_predictions"},
			"fuel":   {Table: "generation_by_fuel"},
			"events": {Table: "events"},
		},
	}
	return NewDatasetService(manifest, facts, zap.NewNop())
}

func TestLoadThemeTide(t *testing.T) {
	tideFile := "71,Auckland,36S,174E\n" +
		"header\n" +
		"Day,DoW,Month,Year,Time,Height,Time,Height,Time,Height,Time,Height\n" +
		"1,Mo,7,2024,03:15,0.6,09:30,3.2,,,\n" +
		"bad,Mo,7,2024,03:15,0.6,,,,\n"

	facts := &fakeFactRepo{}
	svc := newDatasetService(t, facts, map[string]string{"tides.csv": tideFile})

	report, err := svc.LoadTheme(context.Background(), "tide", "tides.csv")
	require.NoError(t, err)

	assert.Equal(t, "tide", report.Theme)
	assert.Equal(t, "tide_predictions", report.Table)
	assert.Equal(t, "tides.csv", report.SourceFile)
	assert.Equal(t, int64(2), report.RowsLoaded)
	assert.Equal(t, int64(1), report.RowsSkipped)
	assert.Len(t, facts.tides, 2)
}

func TestLoadThemeFuel(t *testing.T) {
	fuelFile := "calendar_year,hydro,geothermal,biogas,wind,solar_pv,oil,coal,gas\n" +
		"2023,25000,8000,300,3000,500,10,1500,4000\n" +
		"bad-year,1,1,1,1,1,1,1,1\n"

	facts := &fakeFactRepo{}
	svc := newDatasetService(t, facts, map[string]string{"fuel.csv": fuelFile})

	report, err := svc.LoadTheme(context.Background(), "fuel", "fuel.csv")
	require.NoError(t, err)

	assert.Equal(t, "generation_by_fuel", report.Table)
	assert.Equal(t, int64(1), report.RowsLoaded)
	assert.Equal(t, int64(1), report.RowsSkipped)
}

func TestLoadThemeUnknown(t *testing.T) {
	svc := newDatasetService(t, &fakeFactRepo{}, nil)
	_, err := svc.LoadTheme(context.Background(), "airfares", "x.csv")
	assert.ErrorIs(t, err, apperrors.ErrUnknownTheme)
}

func TestLoadThemeMissingFile(t *testing.T) {
	svc := newDatasetService(t, &fakeFactRepo{}, nil)
	_, err := svc.LoadTheme(context.Background(), "tide", "absent.csv")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLoadThemeRejectsTraversal(t *testing.T) {
	svc := newDatasetService(t, &fakeFactRepo{}, nil)

	_, err := svc.LoadTheme(context.Background(), "tide", "../outside.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")

	_, err = svc.LoadTheme(context.Background(), "tide", "/etc/passwd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relative")
}

func TestThemesSorted(t *testing.T) {
	svc := newDatasetService(t, &fakeFactRepo{}, nil)
	assert.Equal(t, []string{"events", "fuel", "tide"}, svc.Themes())
}
