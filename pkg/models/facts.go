package models

import "time"

// Fact-table row types for the per-theme analytical datasets. These are
// flat immutable observations as published by the source agencies; rows are
// loaded in bulk and never updated.

// TidePrediction is one predicted tide at a port (LINZ, up to four per day).
type TidePrediction struct {
	PortCode   string
	PortName   string
	Latitude   string
	Longitude  string
	TideTime   time.Time
	HeightM    float64
	SourceFile string
}

// ElectricityDemand is regional demand over a reporting period.
type ElectricityDemand struct {
	Region      string
	PeriodStart time.Time
	PeriodEnd   time.Time
	DemandGWh   float64
	SourceFile  string
}

// GenerationByFuel is annual electricity generation split by fuel type,
// in GWh, with the renewable and fossil shares derived from the fuel
// columns.
type GenerationByFuel struct {
	CalendarYear        int
	HydroGWh            float64
	GeothermalGWh       float64
	BiogasGWh           float64
	WindGWh             float64
	SolarPVGWh          float64
	OilGWh              float64
	CoalGWh             float64
	GasGWh              float64
	RenewableGWh        float64
	FossilFuelGWh       float64
	RenewablePercentage float64
	SourceFile          string
}

// RainfallObservation is a daily climate station reading.
type RainfallObservation struct {
	Station    string
	ObservedOn time.Time
	RainfallMM *float64
	TempMinC   *float64
	TempMaxC   *float64
	SourceFile string
}

// FoodPriceProduct is a monthly average retail price for one product.
type FoodPriceProduct struct {
	Product     string
	Unit        string
	PriceMonth  time.Time
	AvgPriceNZD float64
	SourceFile  string
}

// VisitorArrival is a monthly arrivals count by country and purpose.
type VisitorArrival struct {
	ArrivalMonth  time.Time
	Country       string
	VisitorCount  int64
	TravelPurpose string
	SourceFile    string
}

// IncomeStatistic is a yearly regional median income figure.
type IncomeStatistic struct {
	Region                string
	StatYear              int
	MedianWeeklyIncomeNZD float64
	SourceFile            string
}

// Event is one listed public event.
type Event struct {
	Name       string
	Venue      string
	Region     string
	StartsAt   *time.Time
	EndsAt     *time.Time
	Category   string
	URL        string
	SourceFile string
}

// MaritimeIncident is one reported incident.
type MaritimeIncident struct {
	OccurredOn time.Time
	Region     string
	VesselType string
	Outcome    string
	SourceFile string
}

// LoadReport summarizes a bulk load: rows written, rows skipped due to
// malformed input. Mirrors the skip-and-continue load contract; only
// aggregate counts are surfaced, there is no row-level error table.
type LoadReport struct {
	Theme       string `json:"theme"`
	Table       string `json:"table"`
	SourceFile  string `json:"source_file"`
	RowsLoaded  int64  `json:"rows_loaded"`
	RowsSkipped int64  `json:"rows_skipped"`
}
