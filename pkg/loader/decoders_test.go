package loader

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tideFile = "\ufeff71,Auckland,36°51'S,174°46'E\n" +
	"Daily tide predictions\n" +
	"Day,DoW,Month,Year,Time,Height,Time,Height,Time,Height,Time,Height\n" +
	"1,Mo,7,2024,03:15,0.6,09:30,3.2,15:45,0.5,21:58,3.3\n" +
	"2,Tu,7,2024,04:02,0.7,10:18,3.1,16:33,0.6,\n" +
	"31,We,2,2024,04:02,0.7,10:18,3.1,16:33,0.6,22:45,3.2\n" +
	"bogus,Th,7,2024,04:02,0.7,10:18,3.1,16:33,0.6,22:45,3.2\n"

func TestDecodeTidePredictions(t *testing.T) {
	rows, skipped, err := DecodeTidePredictions(Formats["tide"], strings.NewReader(tideFile), "auckland_2024.csv")
	require.NoError(t, err)

	// Day 1 yields four tides, day 2 only three (fourth pair empty), the
	// 31st of February and the non-numeric day are skipped.
	require.Len(t, rows, 7)
	assert.Equal(t, int64(2), skipped)

	first := rows[0]
	assert.Equal(t, "71", first.PortCode, "BOM marker must not leak into the port code")
	assert.Equal(t, "Auckland", first.PortName)
	assert.Equal(t, time.Date(2024, 7, 1, 3, 15, 0, 0, time.UTC), first.TideTime)
	assert.Equal(t, 0.6, first.HeightM)
	assert.Equal(t, "auckland_2024.csv", first.SourceFile)

	last := rows[6]
	assert.Equal(t, time.Date(2024, 7, 2, 16, 33, 0, 0, time.UTC), last.TideTime)
}

func TestDecodeElectricityDemand(t *testing.T) {
	input := "region,period_start,period_end,demand_gwh\n" +
		"Auckland,2024-01-01,2024-03-31,1052.4\n" +
		"Wellington,2024-01-01,2024-03-31,not-a-number\n" +
		"Canterbury,2024-01-01,2024-03-31,801.9\n"

	rows, skipped, err := DecodeElectricityDemand(Formats["electricity"], strings.NewReader(input), "demand.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), skipped)
	assert.Equal(t, "Auckland", rows[0].Region)
	assert.Equal(t, 1052.4, rows[0].DemandGWh)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), rows[0].PeriodEnd)
}

func TestDecodeGenerationByFuelDerivesShares(t *testing.T) {
	input := "calendar_year,hydro,geothermal,biogas,wind,solar_pv,oil,coal,gas\n" +
		"2023,25000,8000,300,3000,500,10,1500,4000\n" +
		"1960,100,0,0,0,0,0,0,0\n" +
		"2024,26000,8100,not-a-number,3100,600,5,1200,3600\n"

	rows, skipped, err := DecodeGenerationByFuel(Formats["fuel"], strings.NewReader(input), "fuel_2023.csv")
	require.NoError(t, err)

	// The pre-1974 year and the non-numeric fuel column are skipped.
	require.Len(t, rows, 1)
	assert.Equal(t, int64(2), skipped)

	row := rows[0]
	assert.Equal(t, 2023, row.CalendarYear)
	assert.Equal(t, 25000.0, row.HydroGWh)
	assert.Equal(t, 36800.0, row.RenewableGWh)
	assert.Equal(t, 5510.0, row.FossilFuelGWh)
	assert.Equal(t, 86.99, row.RenewablePercentage)
	assert.Equal(t, "fuel_2023.csv", row.SourceFile)
}

func TestDecodeRainfallObservationsNullSentinels(t *testing.T) {
	input := "station,date,rainfall_mm,temp_min_c,temp_max_c\n" +
		"Leigh,2024-06-01,12.5,n/a,18.2\n" +
		"Leigh,2024-06-02,NULL,9.1,17.0\n" +
		"Leigh,2024-06-03,-,n/a,NULL\n" +
		"Leigh,not-a-date,1.0,2.0,3.0\n"

	rows, skipped, err := DecodeRainfallObservations(Formats["climate"], strings.NewReader(input), "leigh.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(2), skipped, "all-null row and bad date both skip")

	assert.Nil(t, rows[0].TempMinC)
	require.NotNil(t, rows[0].RainfallMM)
	assert.Equal(t, 12.5, *rows[0].RainfallMM)
	assert.Nil(t, rows[1].RainfallMM)
}

func TestDecodeFoodPriceProducts(t *testing.T) {
	input := "product,unit,month,avg_price_nzd\n" +
		"Snapper fillets,per kg,2024-05,39.90\n" +
		"Butter,500g,2024-05-01,7.45\n"

	rows, skipped, err := DecodeFoodPriceProducts(Formats["food"], strings.NewReader(input), "prices.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Zero(t, skipped)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), rows[0].PriceMonth)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), rows[1].PriceMonth)
}

func TestDecodeVisitorArrivals(t *testing.T) {
	input := "month,country,visitor_count,purpose\n" +
		"2024-02,Australia,\"128,450\",Holiday\n" +
		"2024-02,China,-12,Holiday\n"

	rows, skipped, err := DecodeVisitorArrivals(Formats["tourism"], strings.NewReader(input), "arrivals.csv")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), skipped, "negative counts are rejected")
	assert.Equal(t, int64(128450), rows[0].VisitorCount, "thousands separators are tolerated")
}

func TestDecodeIncomeStatistics(t *testing.T) {
	input := "region,year,median_weekly_income_nzd\n" +
		"Northland,2023,1054\n" +
		"Auckland,2023,1327.50\n"

	rows, skipped, err := DecodeIncomeStatistics(Formats["income"], strings.NewReader(input), "income.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Zero(t, skipped)
	assert.Equal(t, 2023, rows[0].StatYear)
	assert.Equal(t, 1327.50, rows[1].MedianWeeklyIncomeNZD)
}

func TestDecodeEventsTabSeparated(t *testing.T) {
	input := "name\tvenue\tregion\tstart\tend\tcategory\turl\n" +
		"Seafood Festival\tViaduct\tAuckland\t2024-09-14\t2024-09-15\tFood\thttps://example.org/seafood\n" +
		"Pop-up Market\tWharf\tNorthland\tn/a\tn/a\tMarkets\thttps://example.org/market\n" +
		"\tWharf\tNorthland\t2024-09-14\t2024-09-15\tMarkets\thttps://example.org/anon\n"

	rows, skipped, err := DecodeEvents(Formats["events"], strings.NewReader(input), "events.tsv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), skipped, "nameless events are rejected")

	require.NotNil(t, rows[0].StartsAt)
	assert.Equal(t, time.Date(2024, 9, 14, 0, 0, 0, 0, time.UTC), *rows[0].StartsAt)
	assert.Nil(t, rows[1].StartsAt, "unannounced dates decode as nil")
}

func TestDecodeMaritimeIncidentsPipeDelimited(t *testing.T) {
	input := "date|region|vessel_type|outcome\n" +
		"2023-11-04|Hauraki Gulf|Recreational|Capsize\n" +
		"12/11/2023|Bay of Islands|Charter|Grounding\n" +
		"garbage line\n"

	rows, skipped, err := DecodeMaritimeIncidents(Formats["maritime"], strings.NewReader(input), "incidents.psv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), skipped)
	assert.Equal(t, time.Date(2023, 11, 12, 0, 0, 0, 0, time.UTC), rows[1].OccurredOn)
}

func TestFormatNullSentinelMatchingIsCaseInsensitive(t *testing.T) {
	f := Formats["climate"]
	assert.True(t, f.isNull("null"))
	assert.True(t, f.isNull(" N/A "))
	assert.True(t, f.isNull(""))
	assert.True(t, f.isNull("-"))
	assert.False(t, f.isNull("0"))
}
