// Package filter holds the dashboard's mutable selection: visible series,
// the selected date range and the location/sector/source subsets.
package filter

import (
	"github.com/jgoulah/energyviz/internal/dateindex"
	"github.com/jgoulah/energyviz/pkg/models"
)

// State is the user's current selection. It is owned by a single view and is
// not safe for concurrent use on its own.
type State struct {
	Dates        dateindex.Index
	Range        dateindex.Range
	DefaultRange dateindex.Range

	ShowConsumption bool
	ShowGeneration  bool

	// FilterByLocation enables the location subsets in date aggregation
	FilterByLocation bool

	ConsumptionLocations Selection
	GenerationLocations  Selection
	Sectors              Selection
	Sources              Selection
}

// New returns the defaults for a freshly mounted dashboard
func New(dates dateindex.Index, defaultRange dateindex.Range) *State {
	r := dates.Clamp(defaultRange)
	return &State{
		Dates:            dates,
		Range:            r,
		DefaultRange:     r,
		ShowConsumption:  true,
		ShowGeneration:   true,
		FilterByLocation: true,
	}
}

// Visible reports whether a collection's series is displayed
func (s *State) Visible(c models.Collection) bool {
	switch c {
	case models.Consumption:
		return s.ShowConsumption
	case models.Generation:
		return s.ShowGeneration
	default:
		return false
	}
}

// ToggleSeries flips the visibility of a collection's series
func (s *State) ToggleSeries(c models.Collection) {
	switch c {
	case models.Consumption:
		s.ShowConsumption = !s.ShowConsumption
	case models.Generation:
		s.ShowGeneration = !s.ShowGeneration
	}
}

// Locations returns the location selection for a collection
func (s *State) Locations(c models.Collection) *Selection {
	if c == models.Generation {
		return &s.GenerationLocations
	}
	return &s.ConsumptionLocations
}

// Categories returns the categorical selection for a collection
// (sectors for consumption, sources for generation)
func (s *State) Categories(c models.Collection) *Selection {
	if c == models.Generation {
		return &s.Sources
	}
	return &s.Sectors
}

// SetRange replaces the selected range, clamped into the index
func (s *State) SetRange(r dateindex.Range) {
	s.Range = s.Dates.Clamp(r)
}

// MoveStart shifts the start of the range without crossing the end
func (s *State) MoveStart(delta int) {
	if s.Dates.Len() == 0 {
		return
	}
	s.Range.Start = min(max(s.Range.Start+delta, 0), s.Range.End)
}

// MoveEnd shifts the end of the range without crossing the start
func (s *State) MoveEnd(delta int) {
	if s.Dates.Len() == 0 {
		return
	}
	s.Range.End = max(min(s.Range.End+delta, s.Dates.Len()-1), s.Range.Start)
}

// ResetRange restores the default range
func (s *State) ResetRange() {
	s.Range = s.DefaultRange
}

// Bounds returns the selected start and end days
func (s *State) Bounds() (string, string) {
	return s.Dates.Bounds(s.Range)
}

// Observe resets every selection derived from a collection to all of the
// values present in records. Called whenever the collection is replaced.
func (s *State) Observe(c models.Collection, records []models.EnergyRecord) {
	s.Locations(c).Reset(models.Distinct(records, models.FieldLocation))
	switch c {
	case models.Consumption:
		s.Sectors.Reset(models.Distinct(records, models.FieldSector))
	case models.Generation:
		s.Sources.Reset(models.Distinct(records, models.FieldSource))
	}
}

// Clone returns a deep copy of the state
func (s *State) Clone() *State {
	c := *s
	c.Dates = s.Dates
	c.ConsumptionLocations = cloneSelection(s.ConsumptionLocations)
	c.GenerationLocations = cloneSelection(s.GenerationLocations)
	c.Sectors = cloneSelection(s.Sectors)
	c.Sources = cloneSelection(s.Sources)
	return &c
}

func cloneSelection(s Selection) Selection {
	return Selection{known: s.Known(), selected: s.Selected()}
}
