package energy

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// ErrSourceMissing is returned when the seed CSV does not exist.
var ErrSourceMissing = errors.New("energy: source csv not found")

// twhToKWh converts terawatt-hours to kilowatt-hours.
const twhToKWh = 1e9

// Source CSV column names.
const (
	colCountry     = "Country"
	colDate        = "date"
	colGeneration  = "Total Energy Generation (TWh)"
	colConsumption = "Total Energy Consumption (TWh)"
)

// SeedRow is one line of the source CSV before expansion into records.
type SeedRow struct {
	Country        string
	Date           time.Time
	GenerationTWh  float64
	ConsumptionTWh float64
}

// seedDateLayouts are tried in order; the dataset uses day-first dates.
var seedDateLayouts = []string{"02-01-2006", "2-1-2006", "02/01/2006", "2006-01-02"}

// LoadSeedRows reads the source CSV. Rows with unparsable numbers or
// dates are rejected with an error rather than silently dropped, since
// a bad seed file should be fixed, not partially imported.
func LoadSeedRows(path string) ([]SeedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSourceMissing
		}
		return nil, fmt.Errorf("opening seed csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading seed csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, required := range []string{colCountry, colDate, colGeneration, colConsumption} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("seed csv missing column %q", required)
		}
	}

	var rows []SeedRow
	for line := 2; ; line++ {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading seed csv line %d: %w", line, err)
		}

		date, err := parseSeedDate(rec[idx[colDate]])
		if err != nil {
			return nil, fmt.Errorf("seed csv line %d: %w", line, err)
		}
		gen, err := strconv.ParseFloat(rec[idx[colGeneration]], 64)
		if err != nil {
			return nil, fmt.Errorf("seed csv line %d: bad generation value: %w", line, err)
		}
		cons, err := strconv.ParseFloat(rec[idx[colConsumption]], 64)
		if err != nil {
			return nil, fmt.Errorf("seed csv line %d: bad consumption value: %w", line, err)
		}

		rows = append(rows, SeedRow{
			Country:        rec[idx[colCountry]],
			Date:           date,
			GenerationTWh:  gen,
			ConsumptionTWh: cons,
		})
	}

	return rows, nil
}

// SeedRecords expands source rows into stored records: each row becomes
// one generation and one consumption record, values converted from TWh
// to kWh.
func SeedRecords(rows []SeedRow) []Record {
	records := make([]Record, 0, 2*len(rows))
	for _, row := range rows {
		records = append(records,
			Record{
				Country:  row.Country,
				Type:     TypeGeneration,
				Source:   "mixed",
				ValueKWh: row.GenerationTWh * twhToKWh,
				Date:     row.Date,
			},
			Record{
				Country:  row.Country,
				Type:     TypeConsumption,
				Source:   "mixed",
				ValueKWh: row.ConsumptionTWh * twhToKWh,
				Date:     row.Date,
			},
		)
	}
	return records
}

func parseSeedDate(s string) (time.Time, error) {
	for _, layout := range seedDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("bad date %q", s)
}
