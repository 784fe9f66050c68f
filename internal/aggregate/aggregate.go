// Package aggregate turns raw energy records and a filter selection into the
// label-aligned series consumed by the chart renderers. Everything here is a
// pure function of its inputs; raw records are never modified.
package aggregate

import (
	"sort"
	"time"

	"github.com/jgoulah/energyviz/internal/filter"
	"github.com/jgoulah/energyviz/pkg/models"
)

// Records holds the two raw collections of a dashboard session
type Records struct {
	Consumption []models.EnergyRecord `json:"consumption"`
	Generation  []models.EnergyRecord `json:"generation"`
}

// Get returns the collection's records
func (r Records) Get(c models.Collection) []models.EnergyRecord {
	if c == models.Generation {
		return r.Generation
	}
	return r.Consumption
}

// DateSeries is the per-day line chart data. Every label has exactly one
// value per collection; days without records are 0.
type DateSeries struct {
	Labels      []string  `json:"labels"`
	Consumption []float64 `json:"consumption"`
	Generation  []float64 `json:"generation"`
}

// Values returns the collection's values
func (d DateSeries) Values(c models.Collection) []float64 {
	if c == models.Generation {
		return d.Generation
	}
	return d.Consumption
}

// CategorySeries holds one total per distinct category value, in first-seen order
type CategorySeries struct {
	Field  models.Field `json:"field"`
	Labels []string     `json:"labels"`
	Totals []float64    `json:"totals"`
}

// Dataset is a visible line series ready for a renderer
type Dataset struct {
	Collection models.Collection `json:"collection"`
	Label      string            `json:"label"`
	Values     []float64         `json:"values"`
}

// SeriesData is everything the dashboard renders for one filter state
type SeriesData struct {
	Start    string         `json:"start"`
	End      string         `json:"end"`
	Dates    DateSeries     `json:"dates"`
	Datasets []Dataset      `json:"datasets"`
	Sectors  CategorySeries `json:"sectors"`
	Sources  CategorySeries `json:"sources"`
}

// DateFilter restricts records for date aggregation. Empty bounds are open.
// A nil location set disables location filtering; an empty one matches nothing.
type DateFilter struct {
	Start                string
	End                  string
	ConsumptionLocations map[string]struct{}
	GenerationLocations  map[string]struct{}
}

// FilterRecords returns the records whose calendar day lies in [start, end]
// and whose location is in locations (when locations is non-nil)
func FilterRecords(records []models.EnergyRecord, start, end string, locations map[string]struct{}) []models.EnergyRecord {
	out := make([]models.EnergyRecord, 0, len(records))
	for _, r := range records {
		if locations != nil {
			if _, ok := locations[r.Location]; !ok {
				continue
			}
		}
		day := r.Day()
		if start != "" && day < start {
			continue
		}
		if end != "" && day > end {
			continue
		}
		out = append(out, r)
	}
	return out
}

// GroupByDay sums energy per calendar day
func GroupByDay(records []models.EnergyRecord) map[string]float64 {
	totals := make(map[string]float64)
	for _, r := range records {
		totals[r.Day()] += r.EnergyKWh
	}
	return totals
}

// ByDate filters both collections and aligns their daily totals on the
// sorted union of days present in either
func ByDate(consumption, generation []models.EnergyRecord, f DateFilter) DateSeries {
	consumptionTotals := GroupByDay(FilterRecords(consumption, f.Start, f.End, f.ConsumptionLocations))
	generationTotals := GroupByDay(FilterRecords(generation, f.Start, f.End, f.GenerationLocations))

	labels := make([]string, 0, len(consumptionTotals)+len(generationTotals))
	for day := range consumptionTotals {
		labels = append(labels, day)
	}
	for day := range generationTotals {
		if _, ok := consumptionTotals[day]; !ok {
			labels = append(labels, day)
		}
	}
	sort.Strings(labels)

	series := DateSeries{
		Labels:      labels,
		Consumption: make([]float64, len(labels)),
		Generation:  make([]float64, len(labels)),
	}
	for i, day := range labels {
		series.Consumption[i] = consumptionTotals[day]
		series.Generation[i] = generationTotals[day]
	}
	return series
}

// ByCategory sums energy per distinct value of field, keeping first-seen order.
// Records with no value for the field are bucketed under the empty label.
func ByCategory(records []models.EnergyRecord, field models.Field) CategorySeries {
	totals := make(map[string]float64)
	order := make([]string, 0)
	for _, r := range records {
		key := r.Value(field)
		if _, ok := totals[key]; !ok {
			order = append(order, key)
		}
		totals[key] += r.EnergyKWh
	}

	series := CategorySeries{
		Field:  field,
		Labels: order,
		Totals: make([]float64, len(order)),
	}
	for i, key := range order {
		series.Totals[i] = totals[key]
	}
	return series
}

// Only keeps the labels present in keep, preserving order
func (c CategorySeries) Only(keep map[string]struct{}) CategorySeries {
	out := CategorySeries{Field: c.Field, Labels: []string{}, Totals: []float64{}}
	for i, label := range c.Labels {
		if _, ok := keep[label]; ok {
			out.Labels = append(out.Labels, label)
			out.Totals = append(out.Totals, c.Totals[i])
		}
	}
	return out
}

// Sum returns the total over every category
func (c CategorySeries) Sum() float64 {
	var total float64
	for _, v := range c.Totals {
		total += v
	}
	return total
}

// Aggregate derives everything the dashboard renders from raw records and
// the current selection
func Aggregate(raw Records, st *filter.State) SeriesData {
	start, end := st.Bounds()

	f := DateFilter{Start: start, End: end}
	if st.FilterByLocation {
		f.ConsumptionLocations = st.ConsumptionLocations.Lookup()
		f.GenerationLocations = st.GenerationLocations.Lookup()
	}

	dates := ByDate(raw.Consumption, raw.Generation, f)

	datasets := make([]Dataset, 0, len(models.Collections))
	for _, c := range models.Collections {
		if !st.Visible(c) {
			continue
		}
		datasets = append(datasets, Dataset{
			Collection: c,
			Label:      c.Label(),
			Values:     dates.Values(c),
		})
	}

	return SeriesData{
		Start:    start,
		End:      end,
		Dates:    dates,
		Datasets: datasets,
		Sectors:  ByCategory(raw.Consumption, models.FieldSector).Only(st.Sectors.Lookup()),
		Sources:  ByCategory(raw.Generation, models.FieldSource).Only(st.Sources.Lookup()),
	}
}

// Daily flattens a collection's filtered daily totals into usage rows,
// ordered by day
func Daily(c models.Collection, records []models.EnergyRecord, start, end string) []models.DailyUsage {
	totals := GroupByDay(FilterRecords(records, start, end, nil))
	days := make([]string, 0, len(totals))
	for day := range totals {
		days = append(days, day)
	}
	sort.Strings(days)

	usage := make([]models.DailyUsage, 0, len(days))
	for _, day := range days {
		d, err := time.Parse(models.DayLayout, day)
		if err != nil {
			continue
		}
		usage = append(usage, models.DailyUsage{Date: d, KWh: totals[day], Collection: c})
	}
	return usage
}
