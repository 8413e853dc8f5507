package openmeteo

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultCacheTTL is how long a forecast response is reused.
const DefaultCacheTTL = 30 * time.Minute

// responseCache is a concurrent-safe LRU of decoded responses with TTL
// expiration.
type responseCache struct {
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	order      []string // front=oldest, back=newest
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	hits       atomic.Int64
	misses     atomic.Int64
}

type cacheEntry struct {
	resp      *Response
	createdAt time.Time
}

// CacheStats contains cache performance statistics.
type CacheStats struct {
	Entries    int     `json:"entries"`
	MaxEntries int     `json:"max_entries"`
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
}

func newResponseCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) *responseCache {
	return &responseCache{
		entries:    make(map[string]*cacheEntry),
		maxEntries: max(maxEntries, 1),
		ttl:        ttl,
		clock:      clock,
	}
}

// get returns nil on miss or expiration.
func (c *responseCache) get(key string) *Response {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil
	}
	if c.clock.Since(entry.createdAt) >= c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		c.misses.Add(1)
		return nil
	}

	c.removeFromOrder(key)
	c.order = append(c.order, key)
	c.hits.Add(1)
	return entry.resp
}

func (c *responseCache) put(key string, resp *Response) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.removeFromOrder(key)
	} else {
		for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
	}
	c.entries[key] = &cacheEntry{resp: resp, createdAt: c.clock.Now()}
	c.order = append(c.order, key)
}

func (c *responseCache) stats() CacheStats {
	c.mu.Lock()
	entries := len(c.entries)
	c.mu.Unlock()

	hits, misses := c.hits.Load(), c.misses.Load()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return CacheStats{
		Entries:    entries,
		MaxEntries: c.maxEntries,
		Hits:       hits,
		Misses:     misses,
		HitRate:    hitRate,
	}
}

func (c *responseCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
