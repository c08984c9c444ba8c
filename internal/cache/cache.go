// Package cache provides the data server's in-memory table cache: a
// key → (value, insertion time) map with a fixed time-to-live, a
// get-or-compute operation, and explicit full clear. The result set (a
// handful of small tables) is bounded and known in advance, so there is no
// eviction policy beyond the TTL and Clear.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value    V
	inserted time.Time
}

// Cache is a TTL-bounded memoization map. The zero value is not usable;
// construct with New.
type Cache[V any] struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu      sync.RWMutex
	entries map[string]entry[V]
	hits    uint64
	misses  uint64
}

// Stats is a snapshot of cache effectiveness counters.
type Stats struct {
	Entries int           `json:"entries"`
	Hits    uint64        `json:"hits"`
	Misses  uint64        `json:"misses"`
	TTL     time.Duration `json:"ttl"`
}

// New creates a cache with the given time-to-live. A non-positive ttl
// disables expiry.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry[V]),
	}
}

// GetOrCompute returns the cached value for key when it is younger than the
// TTL, otherwise invokes compute, stores the result and returns it.
// Concurrent computes for the same key are collapsed into one call.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	fresh := ok && (c.ttl <= 0 || c.now().Sub(e.inserted) < c.ttl)
	c.mu.RUnlock()

	if fresh {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return e.value, nil
	}

	value, err, _ := c.group.Do(key, func() (any, error) {
		// Re-check under the flight: another caller may have filled the
		// entry while this one waited.
		c.mu.RLock()
		e, ok := c.entries[key]
		fresh := ok && (c.ttl <= 0 || c.now().Sub(e.inserted) < c.ttl)
		c.mu.RUnlock()
		if fresh {
			return e.value, nil
		}

		v, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = entry[V]{value: v, inserted: c.now()}
		c.misses++
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return value.(V), nil
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
		TTL:     c.ttl,
	}
}
