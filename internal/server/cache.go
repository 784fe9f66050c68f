package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jgoulah/energyviz/internal/aggregate"
	"github.com/jgoulah/energyviz/internal/fetcher"
	"github.com/jgoulah/energyviz/pkg/models"
)

// RecordCache holds the last fetched collections for a TTL. Concurrent
// refreshes share one upstream fetch.
type RecordCache struct {
	src fetcher.Source
	ttl time.Duration
	now func() time.Time

	mu        sync.RWMutex
	records   aggregate.Records
	expiresAt time.Time

	group singleflight.Group
}

// NewRecordCache creates an empty cache over src
func NewRecordCache(src fetcher.Source, ttl time.Duration) *RecordCache {
	return &RecordCache{src: src, ttl: ttl, now: time.Now}
}

// Apply replaces one collection wholesale, satisfying fetcher.Sink
func (c *RecordCache) Apply(col models.Collection, records []models.EnergyRecord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch col {
	case models.Consumption:
		c.records.Consumption = records
	case models.Generation:
		c.records.Generation = records
	default:
		return false
	}
	return true
}

// Get returns the cached records, refreshing them first when expired
func (c *RecordCache) Get(ctx context.Context) aggregate.Records {
	c.mu.RLock()
	fresh := c.now().Before(c.expiresAt)
	records := c.records
	c.mu.RUnlock()

	if fresh {
		return records
	}
	c.Refresh(ctx)
	return c.Snapshot()
}

// Snapshot returns the cached records without refreshing
func (c *RecordCache) Snapshot() aggregate.Records {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.records
}

// Refresh refetches both collections. Failed collections keep their
// previous records; the expiry moves forward either way so a failing
// upstream is not hammered.
func (c *RecordCache) Refresh(ctx context.Context) []fetcher.Result {
	v, _, shared := c.group.Do("refresh", func() (interface{}, error) {
		// Detached from the caller so one cancelled request does not fail the others
		fetchCtx := context.WithoutCancel(ctx)
		results := fetcher.FetchAll(fetchCtx, c.src, c)

		c.mu.Lock()
		c.expiresAt = c.now().Add(c.ttl)
		c.mu.Unlock()
		return results, nil
	})
	if shared {
		slog.Debug("refresh shared", "component", "server")
	}
	return v.([]fetcher.Result)
}
