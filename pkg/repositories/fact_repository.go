package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/database"
	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
)

// FactRepository bulk-loads the per-theme analytical fact tables using the
// Postgres COPY protocol. Fact rows are append-only; there are no update or
// delete paths.
type FactRepository interface {
	CopyTidePredictions(ctx context.Context, rows []models.TidePrediction) (int64, error)
	CopyElectricityDemand(ctx context.Context, rows []models.ElectricityDemand) (int64, error)
	CopyGenerationByFuel(ctx context.Context, rows []models.GenerationByFuel) (int64, error)
	CopyRainfallObservations(ctx context.Context, rows []models.RainfallObservation) (int64, error)
	CopyFoodPriceProducts(ctx context.Context, rows []models.FoodPriceProduct) (int64, error)
	CopyVisitorArrivals(ctx context.Context, rows []models.VisitorArrival) (int64, error)
	CopyIncomeStatistics(ctx context.Context, rows []models.IncomeStatistic) (int64, error)
	CopyEvents(ctx context.Context, rows []models.Event) (int64, error)
	CopyMaritimeIncidents(ctx context.Context, rows []models.MaritimeIncident) (int64, error)
}

type factRepository struct {
	db *database.DB
}

// NewFactRepository creates a new FactRepository.
func NewFactRepository(db *database.DB) FactRepository {
	return &factRepository{db: db}
}

var _ FactRepository = (*factRepository)(nil)

func (r *factRepository) copyInto(ctx context.Context, table string, columns []string, rowCount int, valuesAt func(i int) []any) (int64, error) {
	copied, err := r.db.CopyFrom(ctx,
		pgx.Identifier{table},
		columns,
		pgx.CopyFromSlice(rowCount, func(i int) ([]any, error) {
			return valuesAt(i), nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy into %s: %w", table, err)
	}
	return copied, nil
}

func (r *factRepository) CopyTidePredictions(ctx context.Context, rows []models.TidePrediction) (int64, error) {
	return r.copyInto(ctx, "tide_predictions",
		[]string{"port_code", "port_name", "latitude", "longitude", "tide_time", "height_m", "source_file"},
		len(rows), func(i int) []any {
			t := rows[i]
			return []any{t.PortCode, t.PortName, t.Latitude, t.Longitude, t.TideTime, t.HeightM, t.SourceFile}
		})
}

func (r *factRepository) CopyElectricityDemand(ctx context.Context, rows []models.ElectricityDemand) (int64, error) {
	return r.copyInto(ctx, "electricity_demand",
		[]string{"region", "period_start", "period_end", "demand_gwh", "source_file"},
		len(rows), func(i int) []any {
			e := rows[i]
			return []any{e.Region, e.PeriodStart, e.PeriodEnd, e.DemandGWh, e.SourceFile}
		})
}

func (r *factRepository) CopyGenerationByFuel(ctx context.Context, rows []models.GenerationByFuel) (int64, error) {
	return r.copyInto(ctx, "generation_by_fuel",
		[]string{
			"calendar_year", "hydro_gwh", "geothermal_gwh", "biogas_gwh", "wind_gwh",
			"solar_pv_gwh", "oil_gwh", "coal_gwh", "gas_gwh",
			"renewable_gwh", "fossil_fuel_gwh", "renewable_percentage", "source_file",
		},
		len(rows), func(i int) []any {
			g := rows[i]
			return []any{
				g.CalendarYear, g.HydroGWh, g.GeothermalGWh, g.BiogasGWh, g.WindGWh,
				g.SolarPVGWh, g.OilGWh, g.CoalGWh, g.GasGWh,
				g.RenewableGWh, g.FossilFuelGWh, g.RenewablePercentage, g.SourceFile,
			}
		})
}

func (r *factRepository) CopyRainfallObservations(ctx context.Context, rows []models.RainfallObservation) (int64, error) {
	return r.copyInto(ctx, "rainfall_observations",
		[]string{"station", "observed_on", "rainfall_mm", "temp_min_c", "temp_max_c", "source_file"},
		len(rows), func(i int) []any {
			o := rows[i]
			return []any{o.Station, o.ObservedOn, o.RainfallMM, o.TempMinC, o.TempMaxC, o.SourceFile}
		})
}

func (r *factRepository) CopyFoodPriceProducts(ctx context.Context, rows []models.FoodPriceProduct) (int64, error) {
	return r.copyInto(ctx, "food_price_products",
		[]string{"product", "unit", "price_month", "avg_price_nzd", "source_file"},
		len(rows), func(i int) []any {
			p := rows[i]
			return []any{p.Product, p.Unit, p.PriceMonth, p.AvgPriceNZD, p.SourceFile}
		})
}

func (r *factRepository) CopyVisitorArrivals(ctx context.Context, rows []models.VisitorArrival) (int64, error) {
	return r.copyInto(ctx, "visitor_arrivals",
		[]string{"arrival_month", "country", "visitor_count", "travel_purpose", "source_file"},
		len(rows), func(i int) []any {
			v := rows[i]
			return []any{v.ArrivalMonth, v.Country, v.VisitorCount, v.TravelPurpose, v.SourceFile}
		})
}

func (r *factRepository) CopyIncomeStatistics(ctx context.Context, rows []models.IncomeStatistic) (int64, error) {
	return r.copyInto(ctx, "income_statistics",
		[]string{"region", "stat_year", "median_weekly_income_nzd", "source_file"},
		len(rows), func(i int) []any {
			s := rows[i]
			return []any{s.Region, s.StatYear, s.MedianWeeklyIncomeNZD, s.SourceFile}
		})
}

func (r *factRepository) CopyEvents(ctx context.Context, rows []models.Event) (int64, error) {
	return r.copyInto(ctx, "events",
		[]string{"name", "venue", "region", "starts_at", "ends_at", "category", "url", "source_file"},
		len(rows), func(i int) []any {
			e := rows[i]
			return []any{e.Name, e.Venue, e.Region, e.StartsAt, e.EndsAt, e.Category, e.URL, e.SourceFile}
		})
}

func (r *factRepository) CopyMaritimeIncidents(ctx context.Context, rows []models.MaritimeIncident) (int64, error) {
	return r.copyInto(ctx, "maritime_incidents",
		[]string{"occurred_on", "region", "vessel_type", "outcome", "source_file"},
		len(rows), func(i int) []any {
			m := rows[i]
			return []any{m.OccurredOn, m.Region, m.VesselType, m.Outcome, m.SourceFile}
		})
}
