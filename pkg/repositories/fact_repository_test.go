//go:build integration

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/testhelpers"
)

func TestFactRepository_CopyTidePredictions(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewFactRepository(testDB.DB)
	ctx := context.Background()

	rows := []models.TidePrediction{
		{
			PortCode: "AUC", PortName: "Auckland", Latitude: "-36.84", Longitude: "174.76",
			TideTime: time.Date(2024, 1, 15, 4, 32, 0, 0, time.UTC),
			HeightM:  3.1, SourceFile: "auckland_2024.csv",
		},
		{
			PortCode: "AUC", PortName: "Auckland", Latitude: "-36.84", Longitude: "174.76",
			TideTime: time.Date(2024, 1, 15, 10, 51, 0, 0, time.UTC),
			HeightM:  0.4, SourceFile: "auckland_2024.csv",
		},
	}

	copied, err := repo.CopyTidePredictions(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), copied)

	var count int
	require.NoError(t, testDB.DB.QueryRow(ctx,
		"SELECT COUNT(*) FROM tide_predictions WHERE source_file = 'auckland_2024.csv'").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestFactRepository_CopyGenerationByFuel(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewFactRepository(testDB.DB)
	ctx := context.Background()

	rows := []models.GenerationByFuel{
		{
			CalendarYear: 2023,
			HydroGWh:     25000, GeothermalGWh: 8000, BiogasGWh: 300, WindGWh: 3000, SolarPVGWh: 500,
			OilGWh: 10, CoalGWh: 1500, GasGWh: 4000,
			RenewableGWh: 36800, FossilFuelGWh: 5510, RenewablePercentage: 86.99,
			SourceFile: "fuel_2023.csv",
		},
	}

	copied, err := repo.CopyGenerationByFuel(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(1), copied)

	var pct float64
	require.NoError(t, testDB.DB.QueryRow(ctx,
		"SELECT renewable_percentage FROM generation_by_fuel WHERE calendar_year = 2023 AND source_file = 'fuel_2023.csv'").Scan(&pct))
	assert.Equal(t, 86.99, pct)
}

func TestFactRepository_CopyRainfallWithNulls(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewFactRepository(testDB.DB)
	ctx := context.Background()

	rain := 12.4
	rows := []models.RainfallObservation{
		{
			Station:    "Wellington Aero",
			ObservedOn: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			RainfallMM: &rain,
			SourceFile: "rainfall_nulls.csv",
		},
	}

	copied, err := repo.CopyRainfallObservations(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(1), copied)

	var gotRain *float64
	var gotMin *float64
	require.NoError(t, testDB.DB.QueryRow(ctx,
		"SELECT rainfall_mm, temp_min_c FROM rainfall_observations WHERE source_file = 'rainfall_nulls.csv'").
		Scan(&gotRain, &gotMin))
	require.NotNil(t, gotRain)
	assert.InDelta(t, 12.4, *gotRain, 0.001)
	assert.Nil(t, gotMin)
}

func TestFactRepository_CopyEventsOptionalTimes(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewFactRepository(testDB.DB)
	ctx := context.Background()

	starts := time.Date(2024, 3, 8, 19, 0, 0, 0, time.UTC)
	rows := []models.Event{
		{Name: "Seafood Festival", Venue: "Viaduct", Region: "auckland", StartsAt: &starts,
			Category: "food", URL: "https://example.org/seafood", SourceFile: "events_opt.tsv"},
		{Name: "Undated Market", Region: "otago", SourceFile: "events_opt.tsv"},
	}

	copied, err := repo.CopyEvents(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), copied)

	var endsAt *time.Time
	require.NoError(t, testDB.DB.QueryRow(ctx,
		"SELECT ends_at FROM events WHERE name = 'Undated Market' AND source_file = 'events_opt.tsv'").
		Scan(&endsAt))
	assert.Nil(t, endsAt)
}

func TestFactRepository_CopyEmptyBatch(t *testing.T) {
	testDB := testhelpers.GetTestDB(t)
	repo := NewFactRepository(testDB.DB)

	copied, err := repo.CopyMaritimeIncidents(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, copied)
}
