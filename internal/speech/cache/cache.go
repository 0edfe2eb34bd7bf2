// Package cache keeps generated speech payloads for the lifetime of a
// session. Entries are never evicted.
package cache

import (
	"sync"

	"eduspeak/internal/metrics"
)

// Stats counts lookups since the cache was created.
type Stats struct {
	Hits   int
	Misses int
}

// Cache maps a key (usually the item name) to a base64 audio payload.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string
	bytes   int

	statsMu sync.Mutex
	stats   Stats
}

func New() *Cache {
	return &Cache{entries: make(map[string]string)}
}

// Get returns the payload stored under key.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	payload, ok := c.entries[key]
	c.mu.RUnlock()

	c.statsMu.Lock()
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	c.statsMu.Unlock()

	metrics.RecordCacheLookup(ok)
	return payload, ok
}

// Has reports whether key is cached without counting a lookup.
func (c *Cache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// Put stores payload under key. The last write wins.
func (c *Cache) Put(key, payload string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.bytes -= len(old)
	}
	c.entries[key] = payload
	c.bytes += len(payload)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Bytes returns the total size of the cached payloads.
func (c *Cache) Bytes() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bytes
}

func (c *Cache) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}
