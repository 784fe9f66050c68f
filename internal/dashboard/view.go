// Package dashboard owns one dashboard session: the raw collections, the
// filter state and the derived series.
package dashboard

import (
	"sync"

	"github.com/jgoulah/energyviz/internal/aggregate"
	"github.com/jgoulah/energyviz/internal/dateindex"
	"github.com/jgoulah/energyviz/internal/filter"
	"github.com/jgoulah/energyviz/pkg/models"
)

// View is safe for concurrent use. Fetch results arrive through Apply on
// fetcher goroutines while user input goes through Update.
type View struct {
	mu       sync.Mutex
	raw      aggregate.Records
	state    *filter.State
	closed   bool
	onChange func()
}

// Option configures a View
type Option func(*View)

// WithOnChange registers a callback run after every accepted change.
// It is called without the view lock held.
func WithOnChange(fn func()) Option {
	return func(v *View) {
		v.onChange = fn
	}
}

// WithFilterByLocation overrides the location filtering default
func WithFilterByLocation(enabled bool) Option {
	return func(v *View) {
		v.state.FilterByLocation = enabled
	}
}

// New mounts a view over the date index with empty collections
func New(dates dateindex.Index, defaultRange dateindex.Range, opts ...Option) *View {
	v := &View{state: filter.New(dates, defaultRange)}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SetOnChange replaces the change callback
func (v *View) SetOnChange(fn func()) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// Apply replaces a collection wholesale and resets the selections derived
// from it. Results arriving after Close are dropped.
func (v *View) Apply(c models.Collection, records []models.EnergyRecord) bool {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return false
	}
	switch c {
	case models.Consumption:
		v.raw.Consumption = records
	case models.Generation:
		v.raw.Generation = records
	default:
		v.mu.Unlock()
		return false
	}
	v.state.Observe(c, records)
	v.mu.Unlock()

	v.changed()
	return true
}

// Update mutates the filter state under the view lock
func (v *View) Update(fn func(*filter.State)) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	fn(v.state)
	v.mu.Unlock()

	v.changed()
}

// State returns a copy of the current filter state
func (v *View) State() *filter.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state.Clone()
}

// Records returns the current raw collections
func (v *View) Records() aggregate.Records {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.raw
}

// Series aggregates the current records under the current selection
func (v *View) Series() aggregate.SeriesData {
	v.mu.Lock()
	raw, st := v.raw, v.state.Clone()
	v.mu.Unlock()
	return aggregate.Aggregate(raw, st)
}

// Close unmounts the view; later Apply and Update calls are ignored
func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}

// Closed reports whether Close was called
func (v *View) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}

func (v *View) changed() {
	v.mu.Lock()
	fn := v.onChange
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
}
