package apiclient

import (
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	data    []byte
	expires time.Time
}

// Cache holds GET responses for a short time and collapses concurrent fetches
// of the same key. Clear drops everything, including results of fetches that
// were still in flight when it was called.
type Cache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	epoch   uint64

	group singleflight.Group
}

// NewCache returns a cache whose entries live for ttl. A non-positive ttl
// only de-duplicates in-flight fetches.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Fetch returns the cached value for key or calls fetch to fill it
func (c *Cache) Fetch(key string, fetch func() ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Before(e.expires) {
		c.mu.Unlock()
		return e.data, nil
	}
	epoch := c.epoch
	c.mu.Unlock()

	v, err, _ := c.group.Do(strconv.FormatUint(epoch, 10)+"|"+key, func() (any, error) {
		data, err := fetch()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.epoch == epoch && c.ttl > 0 {
			c.entries[key] = cacheEntry{data: data, expires: c.now().Add(c.ttl)}
		}
		c.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Clear implements session.CacheClearer
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	c.epoch++
}

// Len returns the number of live entries
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	now := c.now()
	for _, e := range c.entries {
		if now.Before(e.expires) {
			n++
		}
	}
	return n
}
