package dupe

import (
	"sync"
	"time"
)

// Cache remembers keys for a limited time. The zero value is ready to use.
type Cache struct {
	mu       sync.Mutex
	lastSeen map[string]time.Time
	now      func() time.Time
}

// Exists reports whether key was recorded less than interval ago. A key that
// does not exist is recorded, so the next call within interval returns true.
func (c *Cache) Exists(key string, interval time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastSeen == nil {
		c.lastSeen = make(map[string]time.Time)
	}

	now := c.clock()

	for k, seen := range c.lastSeen {
		if !now.Before(seen.Add(interval)) {
			delete(c.lastSeen, k)
		}
	}

	if _, ok := c.lastSeen[key]; ok {
		return true
	}

	c.lastSeen[key] = now

	return false
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.lastSeen)
}

func (c *Cache) clock() time.Time {
	if c.now != nil {
		return c.now()
	}

	return time.Now()
}
