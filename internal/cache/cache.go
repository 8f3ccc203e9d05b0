// Package cache provides a small time-to-live key/value cache used to avoid
// repeat explorer calls within a session. Expiry is lazy: an expired entry
// behaves as a miss and is evicted on the read that discovers it. There is no
// size-based eviction; the cache is bounded by the session.
package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// entry holds a cached value together with its expiry stamp.
type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a concurrency-safe TTL cache. The zero value is not usable; use New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Key composes the cache key from chain identifier and wallet address.
// The chain prefix prevents collisions between numerically similar addresses
// on different chains.
func Key(chain, address string) string {
	return fmt.Sprintf("%s:%s", chain, strings.ToLower(strings.TrimSpace(address)))
}

// Get returns the cached value for key, or ok=false on a miss or an expired
// entry. Expired entries are removed opportunistically.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed it.
		if cur, still := c.entries[key]; still && c.now().After(cur.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for the given time-to-live.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = entry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

// Len returns the number of entries currently stored, including any whose
// expiry has passed but which no read has evicted yet.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
