package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sfc-gh-makukreja/nz-partner-hackathon/pkg/models"
)

// forEachRecord runs fn over every data record, counting rows fn rejects.
// CSV-level parse failures on individual lines count as skips too; only
// reader-level failures (I/O) abort the decode.
func forEachRecord(cr *csv.Reader, skipped *int64, fn func(record []string) bool) error {
	for {
		record, err := cr.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				*skipped++
				continue
			}
			return fmt.Errorf("failed to read record: %w", err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if !fn(record) {
			*skipped++
		}
	}
}

// DecodeTidePredictions parses a LINZ tide prediction file. The first line
// names the port (code, name, latitude, longitude), lines two and three are
// column headers, and each data row carries day-of-month, weekday, month,
// year followed by up to four time/height pairs.
func DecodeTidePredictions(f Format, r io.Reader, sourceFile string) ([]models.TidePrediction, int64, error) {
	cr := csv.NewReader(r)
	cr.Comma = f.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read port header: %w", err)
	}
	var portCode, portName, latitude, longitude string
	if len(header) > 0 {
		portCode = strings.TrimPrefix(strings.TrimSpace(header[0]), "\ufeff")
	}
	if len(header) > 1 {
		portName = strings.TrimSpace(header[1])
	}
	if len(header) > 2 {
		latitude = strings.TrimSpace(header[2])
	}
	if len(header) > 3 {
		longitude = strings.TrimSpace(header[3])
	}

	// Remaining header lines are column captions.
	for i := 1; i < f.HeaderLines; i++ {
		if _, err := cr.Read(); err != nil {
			if err == io.EOF {
				return nil, 0, nil
			}
			return nil, 0, fmt.Errorf("failed to read header line %d: %w", i+1, err)
		}
	}

	var rows []models.TidePrediction
	var skipped int64
	err = forEachRecord(cr, &skipped, func(record []string) bool {
		if len(record) < 6 {
			return false
		}
		day, err1 := strconv.Atoi(strings.TrimSpace(record[0]))
		month, err2 := strconv.Atoi(strings.TrimSpace(record[2]))
		year, err3 := strconv.Atoi(strings.TrimSpace(record[3]))
		if err1 != nil || err2 != nil || err3 != nil {
			return false
		}
		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if date.Day() != day || int(date.Month()) != month {
			return false // e.g. 31/02 rolled over
		}

		var added bool
		for i := 0; i < 4; i++ {
			timeIdx, heightIdx := 4+i*2, 5+i*2
			if heightIdx >= len(record) {
				break
			}
			timeStr := strings.TrimSpace(record[timeIdx])
			heightStr := strings.TrimSpace(record[heightIdx])
			if timeStr == "" || heightStr == "" {
				continue
			}
			clock, err := time.Parse("15:04", timeStr)
			if err != nil {
				continue
			}
			height, err := parseFloat(heightStr)
			if err != nil {
				continue
			}
			rows = append(rows, models.TidePrediction{
				PortCode:   portCode,
				PortName:   portName,
				Latitude:   latitude,
				Longitude:  longitude,
				TideTime:   date.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute),
				HeightM:    height,
				SourceFile: sourceFile,
			})
			added = true
		}
		return added
	})
	if err != nil {
		return nil, skipped, err
	}
	return rows, skipped, nil
}

// DecodeElectricityDemand parses region, period_start, period_end,
// demand_gwh rows.
func DecodeElectricityDemand(f Format, r io.Reader, sourceFile string) ([]models.ElectricityDemand, int64, error) {
	cr, err := f.newReader(r)
	if err != nil {
		return nil, 0, err
	}

	var rows []models.ElectricityDemand
	var skipped int64
	err = forEachRecord(cr, &skipped, func(record []string) bool {
		if len(record) < 4 {
			return false
		}
		start, err1 := parseDate(record[1])
		end, err2 := parseDate(record[2])
		demand, err3 := parseFloat(record[3])
		if err1 != nil || err2 != nil || err3 != nil {
			return false
		}
		rows = append(rows, models.ElectricityDemand{
			Region:      strings.TrimSpace(record[0]),
			PeriodStart: start,
			PeriodEnd:   end,
			DemandGWh:   demand,
			SourceFile:  sourceFile,
		})
		return true
	})
	if err != nil {
		return nil, skipped, err
	}
	return rows, skipped, nil
}

// DecodeGenerationByFuel parses calendar_year followed by annual per-fuel
// GWh columns (hydro, geothermal, biogas, wind, solar PV, oil, coal, gas).
// The renewable and fossil splits are derived from the fuel columns here
// rather than read from the file, so the stored shares always agree with
// the per-fuel figures.
func DecodeGenerationByFuel(f Format, r io.Reader, sourceFile string) ([]models.GenerationByFuel, int64, error) {
	cr, err := f.newReader(r)
	if err != nil {
		return nil, 0, err
	}

	var rows []models.GenerationByFuel
	var skipped int64
	err = forEachRecord(cr, &skipped, func(record []string) bool {
		if len(record) < 9 {
			return false
		}
		year, err := strconv.Atoi(strings.TrimSpace(record[0]))
		if err != nil || year < 1974 {
			return false
		}
		fuels := make([]float64, 8)
		for i := range fuels {
			v, err := parseFloat(record[1+i])
			if err != nil {
				return false
			}
			fuels[i] = v
		}

		renewable := fuels[0] + fuels[1] + fuels[2] + fuels[3] + fuels[4]
		fossil := fuels[5] + fuels[6] + fuels[7]
		var pct float64
		if total := renewable + fossil; total > 0 {
			pct = math.Round(renewable/total*10000) / 100
		}

		rows = append(rows, models.GenerationByFuel{
			CalendarYear:        year,
			HydroGWh:            fuels[0],
			GeothermalGWh:       fuels[1],
			BiogasGWh:           fuels[2],
			WindGWh:             fuels[3],
			SolarPVGWh:          fuels[4],
			OilGWh:              fuels[5],
			CoalGWh:             fuels[6],
			GasGWh:              fuels[7],
			RenewableGWh:        renewable,
			FossilFuelGWh:       fossil,
			RenewablePercentage: pct,
			SourceFile:          sourceFile,
		})
		return true
	})
	if err != nil {
		return nil, skipped, err
	}
	return rows, skipped, nil
}

// DecodeRainfallObservations parses station, date, rainfall_mm, temp_min_c,
// temp_max_c rows. The three readings are individually optional; a row with
// none of them carries no information and is skipped.
func DecodeRainfallObservations(f Format, r io.Reader, sourceFile string) ([]models.RainfallObservation, int64, error) {
	cr, err := f.newReader(r)
	if err != nil {
		return nil, 0, err
	}

	var rows []models.RainfallObservation
	var skipped int64
	err = forEachRecord(cr, &skipped, func(record []string) bool {
		if len(record) < 5 {
			return false
		}
		observedOn, err := parseDate(record[1])
		if err != nil {
			return false
		}
		rainfall, err1 := f.optionalFloat(record[2])
		tempMin, err2 := f.optionalFloat(record[3])
		tempMax, err3 := f.optionalFloat(record[4])
		if err1 != nil || err2 != nil || err3 != nil {
			return false
		}
		if rainfall == nil && tempMin == nil && tempMax == nil {
			return false
		}
		rows = append(rows, models.RainfallObservation{
			Station:    strings.TrimSpace(record[0]),
			ObservedOn: observedOn,
			RainfallMM: rainfall,
			TempMinC:   tempMin,
			TempMaxC:   tempMax,
			SourceFile: sourceFile,
		})
		return true
	})
	if err != nil {
		return nil, skipped, err
	}
	return rows, skipped, nil
}

// DecodeFoodPriceProducts parses product, unit, month, avg_price_nzd rows.
func DecodeFoodPriceProducts(f Format, r io.Reader, sourceFile string) ([]models.FoodPriceProduct, int64, error) {
	cr, err := f.newReader(r)
	if err != nil {
		return nil, 0, err
	}

	var rows []models.FoodPriceProduct
	var skipped int64
	err = forEachRecord(cr, &skipped, func(record []string) bool {
		if len(record) < 4 {
			return false
		}
		month, err1 := parseMonth(record[2])
		price, err2 := parseFloat(record[3])
		if err1 != nil || err2 != nil {
			return false
		}
		rows = append(rows, models.FoodPriceProduct{
			Product:     strings.TrimSpace(record[0]),
			Unit:        strings.TrimSpace(record[1]),
			PriceMonth:  month,
			AvgPriceNZD: price,
			SourceFile:  sourceFile,
		})
		return true
	})
	if err != nil {
		return nil, skipped, err
	}
	return rows, skipped, nil
}

// DecodeVisitorArrivals parses month, country, visitor_count, purpose rows.
func DecodeVisitorArrivals(f Format, r io.Reader, sourceFile string) ([]models.VisitorArrival, int64, error) {
	cr, err := f.newReader(r)
	if err != nil {
		return nil, 0, err
	}

	var rows []models.VisitorArrival
	var skipped int64
	err = forEachRecord(cr, &skipped, func(record []string) bool {
		if len(record) < 4 {
			return false
		}
		month, err1 := parseMonth(record[0])
		count, err2 := parseInt(record[2])
		if err1 != nil || err2 != nil || count < 0 {
			return false
		}
		rows = append(rows, models.VisitorArrival{
			ArrivalMonth:  month,
			Country:       strings.TrimSpace(record[1]),
			VisitorCount:  count,
			TravelPurpose: strings.TrimSpace(record[3]),
			SourceFile:    sourceFile,
		})
		return true
	})
	if err != nil {
		return nil, skipped, err
	}
	return rows, skipped, nil
}

// DecodeIncomeStatistics parses region, year, median_weekly_income_nzd rows.
func DecodeIncomeStatistics(f Format, r io.Reader, sourceFile string) ([]models.IncomeStatistic, int64, error) {
	cr, err := f.newReader(r)
	if err != nil {
		return nil, 0, err
	}

	var rows []models.IncomeStatistic
	var skipped int64
	err = forEachRecord(cr, &skipped, func(record []string) bool {
		if len(record) < 3 {
			return false
		}
		year, err1 := strconv.Atoi(strings.TrimSpace(record[1]))
		income, err2 := parseFloat(record[2])
		if err1 != nil || err2 != nil {
			return false
		}
		rows = append(rows, models.IncomeStatistic{
			Region:                strings.TrimSpace(record[0]),
			StatYear:              year,
			MedianWeeklyIncomeNZD: income,
			SourceFile:            sourceFile,
		})
		return true
	})
	if err != nil {
		return nil, skipped, err
	}
	return rows, skipped, nil
}

// DecodeEvents parses name, venue, region, start, end, category, url rows
// (tab-separated as exported by the listings API). Start and end are
// optional; unannounced dates come through as null sentinels.
func DecodeEvents(f Format, r io.Reader, sourceFile string) ([]models.Event, int64, error) {
	cr, err := f.newReader(r)
	if err != nil {
		return nil, 0, err
	}

	var rows []models.Event
	var skipped int64
	err = forEachRecord(cr, &skipped, func(record []string) bool {
		if len(record) < 7 {
			return false
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			return false
		}
		startsAt, err1 := f.optionalTime(record[3])
		endsAt, err2 := f.optionalTime(record[4])
		if err1 != nil || err2 != nil {
			return false
		}
		rows = append(rows, models.Event{
			Name:       name,
			Venue:      strings.TrimSpace(record[1]),
			Region:     strings.TrimSpace(record[2]),
			StartsAt:   startsAt,
			EndsAt:     endsAt,
			Category:   strings.TrimSpace(record[5]),
			URL:        strings.TrimSpace(record[6]),
			SourceFile: sourceFile,
		})
		return true
	})
	if err != nil {
		return nil, skipped, err
	}
	return rows, skipped, nil
}

// DecodeMaritimeIncidents parses date, region, vessel_type, outcome rows
// (pipe-delimited incident register export).
func DecodeMaritimeIncidents(f Format, r io.Reader, sourceFile string) ([]models.MaritimeIncident, int64, error) {
	cr, err := f.newReader(r)
	if err != nil {
		return nil, 0, err
	}

	var rows []models.MaritimeIncident
	var skipped int64
	err = forEachRecord(cr, &skipped, func(record []string) bool {
		if len(record) < 4 {
			return false
		}
		occurredOn, err := parseDate(record[0])
		if err != nil {
			return false
		}
		rows = append(rows, models.MaritimeIncident{
			OccurredOn: occurredOn,
			Region:     strings.TrimSpace(record[1]),
			VesselType: strings.TrimSpace(record[2]),
			Outcome:    strings.TrimSpace(record[3]),
			SourceFile: sourceFile,
		})
		return true
	})
	if err != nil {
		return nil, skipped, err
	}
	return rows, skipped, nil
}
