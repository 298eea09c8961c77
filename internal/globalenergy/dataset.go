// Package globalenergy serves read-only analytics over a static CSV of
// per-country, per-year energy totals.
//
// The dataset is loaded once at process start and is immutable for the
// process lifetime; a changed file is only picked up by a restart.
package globalenergy

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Source CSV column names, mirrored verbatim into the JSON output so
// the dashboard sees the same shape as the raw dataset.
const (
	colCountry     = "Country"
	colYear        = "Year"
	colGeneration  = "Total Energy Generation (TWh)"
	colConsumption = "Total Energy Consumption (TWh)"
)

// Row is one country-year observation.
type Row struct {
	Country        string  `json:"Country"`
	Year           int     `json:"Year"`
	GenerationTWh  float64 `json:"Total Energy Generation (TWh)"`
	ConsumptionTWh float64 `json:"Total Energy Consumption (TWh)"`
}

// Query holds the optional filters. Zero values mean "not set"; a
// MaxEnergyTWh of 0 is therefore indistinguishable from unset, matching
// the dashboard contract.
type Query struct {
	// Country matches by case-insensitive equality. This is stricter
	// than the record listing adapter's substring match on purpose:
	// this endpoint is fed from a dropdown of known values.
	Country      string
	Year         int
	MaxEnergyTWh float64
}

// FilterOptions lists the distinct filterable values, sorted.
type FilterOptions struct {
	Countries []string `json:"countries"`
	Years     []int    `json:"years"`
}

// Dataset is the in-memory table. It is safe for concurrent use since
// rows never change after Load.
type Dataset struct {
	rows []Row
}

// Load reads the CSV at path into memory. Rows with a blank country or
// an unparsable year are skipped, mirroring how the dashboard drops
// incomplete observations instead of failing the whole load.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses CSV data from r into a Dataset.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading dataset header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{colCountry, colYear, colGeneration, colConsumption} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("dataset missing column %q", required)
		}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading dataset row: %w", err)
		}

		country := strings.TrimSpace(rec[idx[colCountry]])
		if country == "" {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(rec[idx[colYear]]))
		if err != nil {
			continue
		}

		gen, _ := strconv.ParseFloat(rec[idx[colGeneration]], 64)
		cons, _ := strconv.ParseFloat(rec[idx[colConsumption]], 64)

		rows = append(rows, Row{
			Country:        country,
			Year:           year,
			GenerationTWh:  gen,
			ConsumptionTWh: cons,
		})
	}

	return &Dataset{rows: rows}, nil
}

// Len returns the number of loaded rows.
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Query returns rows matching all set filters. MaxEnergyTWh is an
// inclusive upper bound on consumption.
func (d *Dataset) Query(q Query) []Row {
	out := make([]Row, 0)
	for _, row := range d.rows {
		if q.Country != "" && !strings.EqualFold(row.Country, q.Country) {
			continue
		}
		if q.Year != 0 && row.Year != q.Year {
			continue
		}
		if q.MaxEnergyTWh != 0 && row.ConsumptionTWh > q.MaxEnergyTWh {
			continue
		}
		out = append(out, row)
	}
	return out
}

// FilterOptions returns the sorted distinct countries and years present
// in the dataset.
func (d *Dataset) FilterOptions() FilterOptions {
	countrySet := make(map[string]struct{})
	yearSet := make(map[int]struct{})
	for _, row := range d.rows {
		countrySet[row.Country] = struct{}{}
		yearSet[row.Year] = struct{}{}
	}

	countries := make([]string, 0, len(countrySet))
	for c := range countrySet {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	return FilterOptions{Countries: countries, Years: years}
}
