// Package cache implements a process-local TTL cache used to de-duplicate
// recent identical gateway requests. Entries expire after a fixed TTL and
// expired entries are evicted opportunistically on access.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL is how long an entry stays valid.
const DefaultTTL = time.Hour

type entry struct {
	value     any
	createdAt time.Time
}

// Cache is a mutex-guarded in-memory key/value store with TTL expiry.
// It is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

// New creates a cache with the given TTL. A non-positive TTL falls back to
// DefaultTTL.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the value stored under key. Entries older than the TTL are
// treated as misses and removed.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.createdAt) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key, replacing any previous entry.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, createdAt: c.now()}
}

// Len returns the number of entries currently held, including any that have
// expired but not yet been evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
