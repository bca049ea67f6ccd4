package ai

import (
	"sync"
	"time"
)

// Cache is the process-local, time-expiring response store. Keys are derived
// from the operation kind plus a bounded prefix of the triggering input, so
// two long inputs sharing the prefix collide on purpose; that staleness is an
// accepted trade for constant key size. Entries are evicted lazily on lookup.
type Cache struct {
	mu        sync.Mutex
	ttl       time.Duration
	prefixLen int
	now       func() time.Time
	entries   map[string]cacheEntry
}

type cacheEntry struct {
	value    any
	storedAt time.Time
}

// NewCache builds a cache with the given time-to-live and key prefix length.
func NewCache(ttl time.Duration, prefixLen int) *Cache {
	return &Cache{
		ttl:       ttl,
		prefixLen: prefixLen,
		now:       time.Now,
		entries:   make(map[string]cacheEntry),
	}
}

// Key derives the cache key for an operation kind and its input.
func (c *Cache) Key(kind, input string) string {
	if len(input) > c.prefixLen {
		input = input[:c.prefixLen]
	}
	return kind + ":" + input
}

// Get returns the cached value when present and fresh. A stale entry is
// removed and reported as a miss.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.value, true
}

// Set stores a value, replacing any prior entry for the key.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}
}
