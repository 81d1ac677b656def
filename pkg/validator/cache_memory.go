package validator

import (
	"sync"
	"time"
)

type memoryEntry struct {
	result    Result
	expiresAt time.Time // zero means no expiry
}

// MemoryCache is an in-process ResultCache guarded by a reader-writer lock
// (§5 "Result cache. Readers-writer lock").
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   func() time.Time
}

// NewMemoryCache constructs an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), clock: time.Now}
}

// WithClock overrides the cache's time source for deterministic TTL tests.
func (c *MemoryCache) WithClock(clock func() time.Time) *MemoryCache {
	c.clock = clock
	return c
}

func (c *MemoryCache) Get(key CacheKey) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key.String()]
	if !ok {
		return Result{}, false
	}
	if !e.expiresAt.IsZero() && c.clock().After(e.expiresAt) {
		return Result{}, false
	}
	return e.result, true
}

func (c *MemoryCache) Set(key CacheKey, result Result, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.clock().Add(ttl)
	}
	c.entries[key.String()] = memoryEntry{result: result, expiresAt: expiresAt}
}
