package feeds

import (
	"sync"
	"time"

	"github.com/reelfeed/reelfeed/internal/media"
	"github.com/reelfeed/reelfeed/internal/media/scoring"
)

// Cache provides in-memory caching with TTL for assembled feeds.
type Cache struct {
	mu       sync.RWMutex
	items    map[string]cacheItem
	ttl      time.Duration
	maxItems int

	stop     chan struct{}
	stopOnce sync.Once
}

type cacheItem struct {
	value     interface{}
	expiresAt time.Time
}

// CacheConfig holds cache configuration.
type CacheConfig struct {
	TTL      time.Duration
	MaxItems int
}

// DefaultCacheConfig returns default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:      15 * time.Minute,
		MaxItems: 1000,
	}
}

// NewCache creates a new cache with the given configuration.
func NewCache(cfg CacheConfig) *Cache {
	if cfg.TTL == 0 {
		cfg.TTL = 15 * time.Minute
	}
	if cfg.MaxItems == 0 {
		cfg.MaxItems = 1000
	}

	c := &Cache{
		items:    make(map[string]cacheItem),
		ttl:      cfg.TTL,
		maxItems: cfg.MaxItems,
		stop:     make(chan struct{}),
	}

	// Start background cleanup goroutine
	go c.cleanup()

	return c
}

// Get retrieves an item from the cache.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[key]
	if !ok {
		return nil, false
	}

	if time.Now().After(item.expiresAt) {
		return nil, false
	}

	return item.value, true
}

// Set stores an item in the cache.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) >= c.maxItems {
		c.evictExpired()
	}

	c.items[key] = cacheItem{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Delete removes an item from the cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]cacheItem)
}

// Len returns the number of items in the cache.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictExpired removes expired items; must be called with lock held.
func (c *Cache) evictExpired() {
	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}

// cleanup periodically removes expired items until Close is called.
func (c *Cache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			c.evictExpired()
			c.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine and drops all entries. Safe to call
// more than once.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
	c.Clear()
}

// GetHomeFeeds retrieves a cached home feed assembly.
func (c *Cache) GetHomeFeeds(key string) (*HomeFeeds, bool) {
	val, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	feeds, ok := val.(*HomeFeeds)
	return feeds, ok
}

// GetScoredItems retrieves a cached scored feed.
func (c *Cache) GetScoredItems(key string) ([]scoring.ScoredItem, bool) {
	val, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	items, ok := val.([]scoring.ScoredItem)
	return items, ok
}

// GetGenres retrieves a cached genre list.
func (c *Cache) GetGenres(key string) ([]media.Genre, bool) {
	val, ok := c.Get(key)
	if !ok {
		return nil, false
	}
	genres, ok := val.([]media.Genre)
	return genres, ok
}
