package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// MaxEntryAge is the absolute ceiling applied by Sweep regardless of TTL.
const MaxEntryAge = 24 * time.Hour

// Cache is a typed TTL cache over a Store. Values are stored as JSON.
type Cache[T any] struct {
	store Store
	ttl   time.Duration
	clock clockwork.Clock
}

// NewCache creates a cache. A nil clock uses real time.
func NewCache[T any](store Store, ttl time.Duration, clock clockwork.Clock) *Cache[T] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache[T]{store: store, ttl: ttl, clock: clock}
}

// Get returns the cached value for key. Entries at or past their TTL are
// deleted and reported as a miss.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T

	e, err := c.store.Get(ctx, key)
	if err != nil {
		return zero, false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if e == nil {
		return zero, false, nil
	}

	if c.clock.Since(e.Timestamp) >= c.ttl {
		if err := c.store.Delete(ctx, key); err != nil {
			return zero, false, fmt.Errorf("cache expire %s: %w", key, err)
		}
		return zero, false, nil
	}

	var v T
	if err := json.Unmarshal(e.Data, &v); err != nil {
		return zero, false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores v under key, stamped with the current time.
func (c *Cache[T]) Set(ctx context.Context, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.store.Set(ctx, key, Entry{Timestamp: c.clock.Now(), Data: data}); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Sweep deletes every entry older than maxAge and returns how many were
// removed. A non-positive maxAge uses MaxEntryAge.
func (c *Cache[T]) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = MaxEntryAge
	}

	entries, err := c.store.ListEntries(ctx)
	if err != nil {
		return 0, fmt.Errorf("cache sweep: %w", err)
	}

	removed := 0
	for _, ke := range entries {
		if c.clock.Since(ke.Entry.Timestamp) <= maxAge {
			continue
		}
		if err := c.store.Delete(ctx, ke.Key); err != nil {
			return removed, fmt.Errorf("cache sweep %s: %w", ke.Key, err)
		}
		removed++
	}
	return removed, nil
}
