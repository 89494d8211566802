// Package loader decodes the per-theme source files into fact rows. Each
// source agency publishes a slightly different flat-file dialect, so every
// theme carries an explicit file format: delimiter, header line count, and
// the sentinels that agency uses for missing values. Malformed rows are
// skipped and counted, never fatal.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Format describes one source agency's flat-file dialect.
type Format struct {
	// Delimiter separates fields. Comma, tab and pipe occur in practice.
	Delimiter rune
	// HeaderLines is how many leading lines to discard before data rows.
	HeaderLines int
	// NullSentinels are the literal field values this source uses for
	// "no value". Matching is case-insensitive after trimming.
	NullSentinels []string
}

// defaultNulls covers the sentinels seen across the source files.
var defaultNulls = []string{"", "NULL", "n/a", "-"}

// Formats maps each dataset theme to its source file dialect.
var Formats = map[string]Format{
	"tide":        {Delimiter: ',', HeaderLines: 3, NullSentinels: defaultNulls},
	"electricity": {Delimiter: ',', HeaderLines: 1, NullSentinels: defaultNulls},
	"fuel":        {Delimiter: ',', HeaderLines: 1, NullSentinels: defaultNulls},
	"climate":     {Delimiter: ',', HeaderLines: 1, NullSentinels: defaultNulls},
	"food":        {Delimiter: ',', HeaderLines: 1, NullSentinels: defaultNulls},
	"tourism":     {Delimiter: ',', HeaderLines: 1, NullSentinels: defaultNulls},
	"income":      {Delimiter: ',', HeaderLines: 1, NullSentinels: defaultNulls},
	"events":      {Delimiter: '\t', HeaderLines: 1, NullSentinels: defaultNulls},
	"maritime":    {Delimiter: '|', HeaderLines: 1, NullSentinels: defaultNulls},
}

// newReader builds a csv.Reader for the format and discards its header
// lines. LazyQuotes and a free field count keep one ragged row from aborting
// the whole file; such rows are skipped by the decoders instead.
func (f Format) newReader(r io.Reader) (*csv.Reader, error) {
	cr := csv.NewReader(r)
	cr.Comma = f.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	for i := 0; i < f.HeaderLines; i++ {
		if _, err := cr.Read(); err != nil {
			if err == io.EOF {
				return cr, nil
			}
			return nil, fmt.Errorf("failed to read header line %d: %w", i+1, err)
		}
	}
	return cr, nil
}

// isNull reports whether a field is one of the format's missing-value
// sentinels.
func (f Format) isNull(field string) bool {
	field = strings.TrimSpace(field)
	for _, s := range f.NullSentinels {
		if strings.EqualFold(field, s) {
			return true
		}
	}
	return false
}

func parseFloat(field string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(field, ",", "")), 64)
}

func parseInt(field string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(strings.ReplaceAll(field, ",", "")), 10, 64)
}

// optionalFloat maps null sentinels to nil and anything else through
// parseFloat.
func (f Format) optionalFloat(field string) (*float64, error) {
	if f.isNull(field) {
		return nil, nil
	}
	v, err := parseFloat(field)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// dateLayouts are the date spellings the source files use.
var dateLayouts = []string{
	"2006-01-02",
	"2/01/2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDate(field string) (time.Time, error) {
	field = strings.TrimSpace(field)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, field); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", field)
}

// parseMonth accepts YYYY-MM and YYYY-MM-DD month spellings.
func parseMonth(field string) (time.Time, error) {
	field = strings.TrimSpace(field)
	if t, err := time.Parse("2006-01", field); err == nil {
		return t, nil
	}
	return parseDate(field)
}

// optionalTime maps null sentinels to nil and parses the rest as a date or
// timestamp.
func (f Format) optionalTime(field string) (*time.Time, error) {
	if f.isNull(field) {
		return nil, nil
	}
	t, err := parseDate(field)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
