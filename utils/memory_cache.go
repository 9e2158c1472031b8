package utils

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value   interface{}
	expires time.Time
}

// MemoryCache is a TTL map. It holds verified tokens and revoked token ids,
// so nothing is ever written to disk.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time

	stop chan struct{}
	once sync.Once
}

// NewMemoryCache starts a cache that drops expired entries every sweepInterval.
// A zero interval starts no goroutine; expired entries are then dropped on read.
func NewMemoryCache(sweepInterval time.Duration) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go c.sweepLoop(sweepInterval)
	}
	return c
}

// Set stores value under key until ttl elapses
func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, expires: c.now().Add(ttl)}
	c.mu.Unlock()
}

// Get returns the live value under key
func (c *MemoryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expires) {
		c.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Has reports whether key holds a live value
func (c *MemoryCache) Has(key string) bool {
	_, ok := c.Get(key)
	return ok
}

func (c *MemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Sweep drops every expired entry and returns how many are left
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, key)
		}
	}
	return len(c.entries)
}

// Close stops the sweep goroutine. Safe to call more than once.
func (c *MemoryCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *MemoryCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if left := c.Sweep(); left > 0 {
				Log.Debug("cache sweep: %d live entries", left)
			}
		case <-c.stop:
			return
		}
	}
}
