// Package cache provides a TTL cache of computed visibility results.
//
// Visibility curves for a given (target, window, interval, limit) tuple are
// deterministic, so identical requests inside the TTL are served from memory
// instead of re-running the full per-site evaluation.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/skyvis/skyvis/internal/metrics"
	"github.com/skyvis/skyvis/internal/visibility"
)

// Key identifies one visibility request. Comparable, so usable directly as a
// map key.
type Key struct {
	RA           float64
	Dec          float64
	Type         visibility.TargetType
	StartUnix    int64
	EndUnix      int64
	Interval     time.Duration
	AirmassLimit float64
}

// NewKey builds a cache key from request parameters.
func NewKey(target visibility.Target, start, end time.Time, interval time.Duration, airmassLimit float64) Key {
	return Key{
		RA:           target.RA,
		Dec:          target.Dec,
		Type:         target.Type,
		StartUnix:    start.UTC().Unix(),
		EndUnix:      end.UTC().Unix(),
		Interval:     interval,
		AirmassLimit: airmassLimit,
	}
}

type entry struct {
	result     visibility.Result
	computedAt time.Time
}

// ResultCache is a TTL cache of visibility results, safe for concurrent use.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[Key]entry

	ttl   time.Duration
	clock clockwork.Clock

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a ResultCache with the given TTL. A nil clock uses the real
// clock; tests inject a fake.
func New(ttl time.Duration, clock clockwork.Clock) *ResultCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ResultCache{
		entries: make(map[Key]entry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns the cached result for key if present and fresh.
func (c *ResultCache) Get(key Key) (visibility.Result, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.clock.Since(e.computedAt) > c.ttl {
		c.misses.Add(1)
		metrics.IncCacheMisses()
		return nil, false
	}

	c.hits.Add(1)
	metrics.IncCacheHits()
	return e.result, true
}

// Put stores a result, evicting any expired entries in the same pass.
func (c *ResultCache) Put(key Key, result visibility.Result) {
	now := c.clock.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, e := range c.entries {
		if now.Sub(e.computedAt) > c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry{result: result, computedAt: now}
}

// Len returns the number of cached entries, including any not yet evicted.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns lifetime hit and miss counts.
func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
