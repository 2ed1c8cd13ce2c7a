// ABOUTME: In-memory cache in front of a DOT render function, keyed by a sha256 of the DOT text and format.
// ABOUTME: Entries expire after a TTL; failed renders are never cached.
package render

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// Func renders DOT text to a format. Source satisfies it.
type Func func(ctx context.Context, dotText, format string) ([]byte, error)

type cacheEntry struct {
	data      []byte
	createdAt time.Time
}

// Cache wraps a Func. The decision map rarely changes between requests for
// its image, so repeat renders of the same text are served from memory.
type Cache struct {
	render  Func
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewCache wraps fn with a cache whose entries live for ttl.
func NewCache(fn Func, ttl time.Duration) *Cache {
	return &Cache{
		render:  fn,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Render returns the cached output for dotText and format, rendering on a
// miss or after expiry.
func (c *Cache) Render(ctx context.Context, dotText, format string) ([]byte, error) {
	key := cacheKey(dotText, format)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.createdAt) < c.ttl {
		return entry.data, nil
	}

	data, err := c.render(ctx, dotText, format)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.prune()
	c.entries[key] = cacheEntry{data: data, createdAt: c.now()}
	c.mu.Unlock()
	return data, nil
}

// prune drops expired entries. Callers hold the write lock.
func (c *Cache) prune() {
	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.createdAt) >= c.ttl {
			delete(c.entries, k)
		}
	}
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

func cacheKey(dotText, format string) string {
	return fmt.Sprintf("%x:%s", sha256.Sum256([]byte(dotText)), format)
}
