// Package fetcher reads both record collections concurrently and hands each
// successful result to a sink. A failed read never affects the other.
package fetcher

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jgoulah/energyviz/pkg/models"
)

// Source reads one collection from the API
type Source interface {
	Records(ctx context.Context, c models.Collection) ([]models.EnergyRecord, error)
}

// Sink receives a collection that replaces the previous one wholesale.
// Apply reports whether the records were accepted.
type Sink interface {
	Apply(c models.Collection, records []models.EnergyRecord) bool
}

// SinkFunc adapts a function to Sink
type SinkFunc func(c models.Collection, records []models.EnergyRecord) bool

// Apply calls f
func (f SinkFunc) Apply(c models.Collection, records []models.EnergyRecord) bool {
	return f(c, records)
}

// Result reports the outcome of one collection's read
type Result struct {
	Collection models.Collection
	Count      int
	Applied    bool
	Duration   time.Duration
	Err        error
}

// Failed reports whether any result carries an error
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

func logger() *slog.Logger {
	return slog.Default().With("component", "fetcher")
}

// FetchAll reads every collection concurrently. Each success is applied to
// sink as soon as it arrives; a failure is logged and leaves the sink's
// collection untouched. Results come back in models.Collections order.
func FetchAll(ctx context.Context, src Source, sink Sink) []Result {
	results := make([]Result, len(models.Collections))

	// Goroutines never return an error so one failure cannot cancel the other read.
	var g errgroup.Group
	var mu sync.Mutex
	for i, c := range models.Collections {
		g.Go(func() error {
			started := time.Now()
			records, err := src.Records(ctx, c)
			res := Result{Collection: c, Duration: time.Since(started), Err: err}
			if err != nil {
				logger().Warn("fetch failed", "collection", c, "error", err)
			} else {
				res.Count = len(records)
				mu.Lock()
				res.Applied = sink.Apply(c, records)
				mu.Unlock()
				logger().Debug("fetched", "collection", c, "records", res.Count, "applied", res.Applied)
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results
}
