package detect

import (
	"sync"
	"time"
)

// Cache memoizes resolutions keyed by tool name. It is an explicit
// object owned by a Resolver, not a package-level singleton, and can be
// reset between resolvers (or in tests).
//
// Entries record when they were stored via an injectable clock; nothing
// expires them yet, so a cached resolution goes stale silently if the
// host environment changes mid-run. That is a documented limitation of
// the per-process memoization, and the timestamp is the hook for future
// invalidation.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	res      Resolution
	storedAt time.Time
}

// NewCache creates an empty Cache using the wall clock.
func NewCache() *Cache {
	return NewCacheWithClock(time.Now)
}

// NewCacheWithClock creates a Cache with an injected clock.
func NewCacheWithClock(now func() time.Time) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		now:     now,
	}
}

// Get returns the cached resolution for a tool, if any.
func (c *Cache) Get(tool string) (Resolution, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[tool]
	return e.res, ok
}

// Put stores a resolution. Concurrent resolutions of the same
// not-yet-cached tool may each probe and store; the last write wins,
// which is benign since all valid resolutions for one tool compare equal.
func (c *Cache) Put(tool string, res Resolution) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[tool] = cacheEntry{res: res, storedAt: c.now()}
}

// StoredAt returns when the tool's resolution was cached.
func (c *Cache) StoredAt(tool string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[tool]
	return e.storedAt, ok
}

// Reset drops all cached resolutions.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of cached resolutions.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
