package aggregate

import (
	"fmt"
	"math/rand"
	"slices"
	"sort"
	"testing"

	"github.com/jgoulah/energyviz/internal/dateindex"
	"github.com/jgoulah/energyviz/internal/filter"
	"github.com/jgoulah/energyviz/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(ts string, kwh float64) models.EnergyRecord {
	return models.EnergyRecord{Timestamp: ts, EnergyKWh: kwh}
}

func TestByDateExample(t *testing.T) {
	consumption := []models.EnergyRecord{
		rec("2025-01-01T08:00:00", 10),
		rec("2025-01-01T23:59:00", 5),
		rec("2025-01-02T23:59:00", 3),
	}
	generation := []models.EnergyRecord{
		rec("2025-01-01T23:59:00", 2),
	}

	got := ByDate(consumption, generation, DateFilter{Start: "2025-01-01", End: "2025-01-02"})
	assert.Equal(t, []string{"2025-01-01", "2025-01-02"}, got.Labels)
	assert.Equal(t, []float64{15, 3}, got.Consumption)
	assert.Equal(t, []float64{2, 0}, got.Generation)
}

func TestByDateRangeIsInclusiveByDay(t *testing.T) {
	consumption := []models.EnergyRecord{
		rec("2024-12-31T23:59:59", 100),
		rec("2025-01-01T00:00:00", 1),
		rec("2025-01-03T23:59:00", 3),
		rec("2025-01-04T00:00:01", 100),
	}
	got := ByDate(consumption, nil, DateFilter{Start: "2025-01-01", End: "2025-01-03"})
	assert.Equal(t, []string{"2025-01-01", "2025-01-03"}, got.Labels)
	assert.Equal(t, []float64{1, 3}, got.Consumption)
	assert.Equal(t, []float64{0, 0}, got.Generation)
}

func TestByDateLocationFilter(t *testing.T) {
	consumption := []models.EnergyRecord{
		{Timestamp: "2025-01-01T23:59:00", EnergyKWh: 4, Location: "London"},
		{Timestamp: "2025-01-01T23:59:00", EnergyKWh: 6, Location: "Sydney"},
	}
	generation := []models.EnergyRecord{
		{Timestamp: "2025-01-02T23:59:00", EnergyKWh: 7, Location: "UK"},
	}

	t.Run("subset", func(t *testing.T) {
		got := ByDate(consumption, generation, DateFilter{
			ConsumptionLocations: map[string]struct{}{"London": {}},
		})
		assert.Equal(t, []string{"2025-01-01", "2025-01-02"}, got.Labels)
		assert.Equal(t, []float64{4, 0}, got.Consumption)
		assert.Equal(t, []float64{0, 7}, got.Generation)
	})

	t.Run("empty selection matches nothing", func(t *testing.T) {
		got := ByDate(consumption, generation, DateFilter{
			ConsumptionLocations: map[string]struct{}{},
			GenerationLocations:  map[string]struct{}{},
		})
		assert.Empty(t, got.Labels)
		assert.Empty(t, got.Consumption)
		assert.Empty(t, got.Generation)
	})
}

func TestByDateEmptyGeneration(t *testing.T) {
	consumption := []models.EnergyRecord{rec("2025-01-01T00:00:00", 1), rec("2025-01-02T00:00:00", 2)}

	got := ByDate(consumption, []models.EnergyRecord{}, DateFilter{})
	assert.Equal(t, []float64{1, 2}, got.Consumption)
	assert.Equal(t, []float64{0, 0}, got.Generation)

	empty := ByDate(nil, nil, DateFilter{})
	assert.Empty(t, empty.Labels)
	assert.Empty(t, empty.Consumption)
	assert.Empty(t, empty.Generation)
}

// Labels must be the sorted union of days, and each value the exact sum of
// that collection's records on that day.
func TestByDateProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	days, err := dateindex.Parse("2025-01-01", "2025-02-28")
	require.NoError(t, err)

	for iter := 0; iter < 50; iter++ {
		var consumption, generation []models.EnergyRecord
		for i := 0; i < rng.Intn(40); i++ {
			consumption = append(consumption, rec(days[rng.Intn(len(days))]+"T12:00:00", float64(rng.Intn(100))))
		}
		for i := 0; i < rng.Intn(40); i++ {
			generation = append(generation, rec(days[rng.Intn(len(days))]+"T23:59:00", float64(rng.Intn(100))))
		}
		start, end := days[10], days[40]

		got := ByDate(consumption, generation, DateFilter{Start: start, End: end})

		want := map[string]bool{}
		wantC := map[string]float64{}
		wantG := map[string]float64{}
		for _, r := range consumption {
			if d := r.Day(); d >= start && d <= end {
				want[d] = true
				wantC[d] += r.EnergyKWh
			}
		}
		for _, r := range generation {
			if d := r.Day(); d >= start && d <= end {
				want[d] = true
				wantG[d] += r.EnergyKWh
			}
		}
		var wantLabels []string
		for d := range want {
			wantLabels = append(wantLabels, d)
		}
		sort.Strings(wantLabels)

		require.Len(t, got.Labels, len(wantLabels), "iteration %d", iter)
		require.Len(t, got.Consumption, len(got.Labels))
		require.Len(t, got.Generation, len(got.Labels))
		for i, d := range got.Labels {
			assert.Equal(t, wantLabels[i], d)
			assert.Equal(t, wantC[d], got.Consumption[i], fmt.Sprintf("consumption on %s", d))
			assert.Equal(t, wantG[d], got.Generation[i], fmt.Sprintf("generation on %s", d))
		}
	}
}

func TestByCategoryExample(t *testing.T) {
	records := []models.EnergyRecord{
		{Sector: "res", EnergyKWh: 4},
		{Sector: "com", EnergyKWh: 6},
		{Sector: "res", EnergyKWh: 1},
	}
	got := ByCategory(records, models.FieldSector)
	assert.Equal(t, []string{"res", "com"}, got.Labels)
	assert.Equal(t, []float64{5, 6}, got.Totals)
	assert.Equal(t, 11.0, got.Sum())
}

func TestByCategoryMissingValueIsOwnBucket(t *testing.T) {
	records := []models.EnergyRecord{
		{Source: "wind", EnergyKWh: 1},
		{EnergyKWh: 2},
		{Source: "wind", EnergyKWh: 3},
		{EnergyKWh: 4},
	}
	got := ByCategory(records, models.FieldSource)
	assert.Equal(t, []string{"wind", ""}, got.Labels)
	assert.Equal(t, []float64{4, 6}, got.Totals)
}

func TestByCategoryEmpty(t *testing.T) {
	got := ByCategory(nil, models.FieldSector)
	assert.Empty(t, got.Labels)
	assert.Empty(t, got.Totals)
}

func TestByCategoryDoesNotRound(t *testing.T) {
	a, b := 0.1, 0.2
	got := ByCategory([]models.EnergyRecord{
		{Sector: "res", EnergyKWh: a},
		{Sector: "res", EnergyKWh: b},
	}, models.FieldSector)
	assert.Equal(t, a+b, got.Totals[0])
	assert.NotEqual(t, 0.3, got.Totals[0])
}

func TestOnlyKeepsOrder(t *testing.T) {
	c := CategorySeries{Labels: []string{"a", "b", "c"}, Totals: []float64{1, 2, 3}}
	got := c.Only(map[string]struct{}{"c": {}, "a": {}})
	assert.Equal(t, []string{"a", "c"}, got.Labels)
	assert.Equal(t, []float64{1, 3}, got.Totals)
}

func fixture() Records {
	return Records{
		Consumption: []models.EnergyRecord{
			{Timestamp: "2025-01-01T23:59:00", EnergyKWh: 10, Location: "London", Sector: "residential"},
			{Timestamp: "2025-01-01T23:59:00", EnergyKWh: 5, Location: "Sydney", Sector: "commercial"},
			{Timestamp: "2025-01-02T23:59:00", EnergyKWh: 3, Location: "London", Sector: "residential"},
			{Timestamp: "2025-01-05T23:59:00", EnergyKWh: 8, Location: "London", Sector: "industrial"},
		},
		Generation: []models.EnergyRecord{
			{Timestamp: "2025-01-01T23:59:00", EnergyKWh: 2, Location: "UK", Source: "wind"},
			{Timestamp: "2025-01-03T23:59:00", EnergyKWh: 9, Location: "USA", Source: "solar"},
		},
	}
}

func fixtureState(t *testing.T, raw Records) *filter.State {
	t.Helper()
	ix, err := dateindex.Parse("2025-01-01", "2025-01-10")
	require.NoError(t, err)
	st := filter.New(ix, dateindex.Range{Start: 0, End: 3})
	st.Observe(models.Consumption, raw.Consumption)
	st.Observe(models.Generation, raw.Generation)
	return st
}

func TestAggregate(t *testing.T) {
	raw := fixture()
	st := fixtureState(t, raw)

	got := Aggregate(raw, st)
	assert.Equal(t, "2025-01-01", got.Start)
	assert.Equal(t, "2025-01-04", got.End)
	assert.Equal(t, []string{"2025-01-01", "2025-01-02", "2025-01-03"}, got.Dates.Labels)
	assert.Equal(t, []float64{15, 3, 0}, got.Dates.Consumption)
	assert.Equal(t, []float64{2, 0, 9}, got.Dates.Generation)

	require.Len(t, got.Datasets, 2)
	assert.Equal(t, models.Consumption, got.Datasets[0].Collection)
	assert.Equal(t, "Energy Consumption (kWh)", got.Datasets[0].Label)

	// categorical aggregation ignores the date range
	assert.Equal(t, []string{"residential", "commercial", "industrial"}, got.Sectors.Labels)
	assert.Equal(t, []float64{13, 5, 8}, got.Sectors.Totals)
	assert.Equal(t, []string{"wind", "solar"}, got.Sources.Labels)
}

func TestAggregateVisibilityDoesNotChangeSeries(t *testing.T) {
	raw := fixture()
	st := fixtureState(t, raw)
	before := Aggregate(raw, st)

	st.ToggleSeries(models.Consumption)
	after := Aggregate(raw, st)

	assert.Equal(t, before.Dates, after.Dates)
	require.Len(t, after.Datasets, 1)
	assert.Equal(t, models.Generation, after.Datasets[0].Collection)

	st.ToggleSeries(models.Generation)
	assert.Empty(t, Aggregate(raw, st).Datasets)
}

func TestAggregateLocationSelection(t *testing.T) {
	raw := fixture()
	st := fixtureState(t, raw)

	st.ConsumptionLocations.Toggle("Sydney")
	got := Aggregate(raw, st)
	assert.Equal(t, []float64{10, 3, 0}, got.Dates.Consumption)

	st.FilterByLocation = false
	got = Aggregate(raw, st)
	assert.Equal(t, []float64{15, 3, 0}, got.Dates.Consumption)
}

func TestAggregateSectorSelection(t *testing.T) {
	raw := fixture()
	st := fixtureState(t, raw)
	st.Sectors.Toggle("commercial")

	got := Aggregate(raw, st)
	assert.Equal(t, []string{"residential", "industrial"}, got.Sectors.Labels)
	assert.Equal(t, []float64{13, 8}, got.Sectors.Totals)
}

func TestAggregateRangeChangeLeavesRawUntouched(t *testing.T) {
	raw := fixture()
	snapshot := Records{
		Consumption: slices.Clone(raw.Consumption),
		Generation:  slices.Clone(raw.Generation),
	}
	st := fixtureState(t, raw)

	for i := 0; i < 5; i++ {
		st.MoveStart(1)
		_ = Aggregate(raw, st)
		st.MoveEnd(2)
		_ = Aggregate(raw, st)
	}
	assert.Equal(t, snapshot, raw)
}

func TestDaily(t *testing.T) {
	raw := fixture()
	got := Daily(models.Consumption, raw.Consumption, "2025-01-02", "")
	require.Len(t, got, 2)
	assert.Equal(t, "2025-01-02", got[0].DateString())
	assert.Equal(t, 3.0, got[0].KWh)
	assert.Equal(t, "2025-01-05", got[1].DateString())
	assert.Equal(t, models.Consumption, got[1].Collection)
}
