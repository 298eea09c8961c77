package globalenergy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = `Country,Year,date,Total Energy Generation (TWh),Total Energy Consumption (TWh)
India,2020,15-06-2020,1500,1400
India,2021,15-06-2021,1600,1500
Germany,2020,15-06-2020,600,550
Brazil,2019,15-06-2019,650,620
,2020,15-06-2020,1,1
Norway,notayear,15-06-2020,150,130
`

func loadTestDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := Read(strings.NewReader(testCSV))
	require.NoError(t, err)
	return ds
}

func TestRead(t *testing.T) {
	t.Run("skips incomplete rows", func(t *testing.T) {
		ds := loadTestDataset(t)
		// Blank country and unparsable year rows are dropped.
		assert.Equal(t, 4, ds.Len())
	})

	t.Run("rejects missing columns", func(t *testing.T) {
		_, err := Read(strings.NewReader("Country,Year\nIndia,2020\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing column")
	})
}

func TestQuery(t *testing.T) {
	ds := loadTestDataset(t)

	t.Run("no filters returns everything", func(t *testing.T) {
		assert.Len(t, ds.Query(Query{}), 4)
	})

	t.Run("country is case-insensitive exact equality", func(t *testing.T) {
		rows := ds.Query(Query{Country: "india"})
		require.Len(t, rows, 2)
		for _, row := range rows {
			assert.Equal(t, "India", row.Country)
		}

		// Substrings do not match here, unlike the record listing.
		assert.Empty(t, ds.Query(Query{Country: "Ind"}))
	})

	t.Run("country and year combine", func(t *testing.T) {
		rows := ds.Query(Query{Country: "India", Year: 2020})
		require.Len(t, rows, 1)
		assert.Equal(t, 2020, rows[0].Year)
		assert.Equal(t, 1400.0, rows[0].ConsumptionTWh)
	})

	t.Run("max energy is an inclusive upper bound on consumption", func(t *testing.T) {
		rows := ds.Query(Query{MaxEnergyTWh: 620})
		require.Len(t, rows, 2)
		for _, row := range rows {
			assert.LessOrEqual(t, row.ConsumptionTWh, 620.0)
		}
	})

	t.Run("no match returns empty non-nil slice", func(t *testing.T) {
		rows := ds.Query(Query{Country: "Atlantis"})
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})
}

func TestFilterOptions(t *testing.T) {
	ds := loadTestDataset(t)
	opts := ds.FilterOptions()

	assert.Equal(t, []string{"Brazil", "Germany", "India"}, opts.Countries)
	assert.Equal(t, []int{2019, 2020, 2021}, opts.Years)
}
