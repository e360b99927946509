package server

import (
	"sync"
	"time"

	"github.com/mj1618/rotator/internal/platform"
)

// cacheEntry holds a cached title listing with its timestamp.
type cacheEntry struct {
	titles    []string
	timestamp time.Time
}

// TitleCache provides a TTL-based cache for window title enumeration.
type TitleCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

// NewTitleCache creates a new cache. A ttl of 0 disables caching.
func NewTitleCache(ttl time.Duration) *TitleCache {
	return &TitleCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Titles returns cached titles for filter if within TTL, otherwise lists fresh.
func (c *TitleCache) Titles(wm platform.WindowManager, filter string) ([]string, error) {
	if c.ttl == 0 {
		return wm.ListTitles(filter)
	}

	c.mu.Lock()
	if entry, ok := c.entries[filter]; ok && time.Since(entry.timestamp) < c.ttl {
		titles := entry.titles
		c.mu.Unlock()
		return titles, nil
	}
	c.mu.Unlock()

	titles, err := wm.ListTitles(filter)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[filter] = cacheEntry{titles: titles, timestamp: time.Now()}
	c.mu.Unlock()

	return titles, nil
}

// InvalidateAll clears the entire cache.
func (c *TitleCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}
