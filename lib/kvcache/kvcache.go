// Package kvcache implements the in-memory keyed caches shared by the
// retrieval services: entries are stamped with an expiry on insert, read
// through a cache-aside pattern, and evicted oldest-expiry-first once a
// fixed capacity is exceeded.
package kvcache

import (
	"sync"
	"time"

	"ntpuassist-backend/lib/timezone"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]

	// ttl <= 0 means entries never expire
	ttl time.Duration
	// maxEntries <= 0 means unbounded
	maxEntries int

	now func() time.Time
}

func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	return &Cache[V]{
		entries:    map[string]entry[V]{},
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        timezone.Now,
	}
}

// SetClock swaps the time source, letting tests advance expiry
// deterministically.
func (c *Cache[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.ttl > 0 && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}
	c.entries[key] = entry[V]{value: value, expiresAt: expiresAt}

	for c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.evictOldest()
	}
}

// caller must hold c.mu
func (c *Cache[V]) evictOldest() {
	oldestKey := ""
	var oldest time.Time
	first := true
	for key, e := range c.entries {
		if first || e.expiresAt.Before(oldest) {
			oldestKey = key
			oldest = e.expiresAt
			first = false
		}
	}
	delete(c.entries, oldestKey)
}

func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Range calls f for every live entry until f returns false. Expired
// entries are skipped but not deleted.
func (c *Cache[V]) Range(f func(key string, value V) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if c.ttl > 0 && !now.Before(e.expiresAt) {
			continue
		}
		if !f(key, e.value) {
			return
		}
	}
}
