// Package cache implements the exploration result cache: a key/value store
// with per-entry TTL, least-recently-used eviction, and optional write-through
// persistence to a directory of JSON files.
//
// A Cache is not safe for concurrent use. Each agent owns its own instance
// (and its own persistence directory, to avoid filename collisions between
// agents hashing the same keys).
package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Entry is a single cached value with its bookkeeping timestamps.
type Entry struct {
	Value      any       `json:"value"`
	CreatedAt  time.Time `json:"created_at"`
	LastAccess time.Time `json:"last_access"`
}

// Options configures a Cache.
type Options struct {
	MaxEntries int           // capacity before LRU eviction; <= 0 uses 100
	TTL        time.Duration // per-entry lifetime; <= 0 uses 5 minutes
	Dir        string        // persistence directory; empty disables persistence
	Logger     *zap.Logger   // optional; nil uses a no-op logger
}

// Cache is a TTL + LRU cache with optional disk persistence.
type Cache struct {
	entries    map[string]*Entry
	maxEntries int
	ttl        time.Duration
	dir        string
	logger     *zap.Logger

	hits   int
	misses int

	now func() time.Time // injectable for tests
}

// New creates a Cache. If a persistence directory is configured, any
// non-expired entries found there are loaded back into memory; corrupted
// files are deleted rather than causing an error.
func New(opts Options) (*Cache, error) {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 100
	}
	if opts.TTL <= 0 {
		opts.TTL = 5 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Cache{
		entries:    make(map[string]*Entry),
		maxEntries: opts.MaxEntries,
		ttl:        opts.TTL,
		dir:        opts.Dir,
		logger:     logger,
		now:        time.Now,
	}

	if c.dir != "" {
		if err := c.loadPersisted(); err != nil {
			return nil, fmt.Errorf("cache: loading persisted entries: %w", err)
		}
	}
	return c, nil
}

// Get returns the value for key, or ok=false if the key is absent or its
// entry has outlived the TTL. Expired entries are purged on access, so a
// logically expired value is never returned even if it was not yet evicted.
func (c *Cache) Get(key string) (any, bool) {
	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.expired(entry) {
		c.remove(key)
		c.misses++
		return nil, false
	}
	entry.LastAccess = c.now()
	c.hits++
	return entry.Value, true
}

// Set stores value under key. Expired entries are purged first; if the cache
// is still at capacity the least-recently-accessed entry is evicted. With
// persistence enabled the entry is also written through to disk.
func (c *Cache) Set(key string, value any) {
	c.purgeExpired()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLRU()
	}

	now := c.now()
	entry := &Entry{Value: value, CreatedAt: now, LastAccess: now}
	c.entries[key] = entry

	if c.dir != "" {
		if err := c.persist(key, entry); err != nil {
			c.logger.Warn("cache: persist failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// Clear removes all entries, including any persisted files.
func (c *Cache) Clear() {
	c.entries = make(map[string]*Entry)
	if c.dir != "" {
		c.removePersisted()
	}
}

// Len returns the number of entries currently held (including entries that
// may be expired but not yet purged).
func (c *Cache) Len() int { return len(c.entries) }

// Hits returns the number of Get calls served from the cache.
func (c *Cache) Hits() int { return c.hits }

// Misses returns the number of Get calls that found nothing usable.
func (c *Cache) Misses() int { return c.misses }

func (c *Cache) expired(e *Entry) bool {
	return c.now().Sub(e.CreatedAt) > c.ttl
}

func (c *Cache) purgeExpired() {
	for key, entry := range c.entries {
		if c.expired(entry) {
			c.remove(key)
		}
	}
}

func (c *Cache) evictLRU() {
	var oldestKey string
	var oldestAccess time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.LastAccess.Before(oldestAccess) {
			oldestKey = key
			oldestAccess = entry.LastAccess
		}
	}
	if oldestKey != "" {
		c.remove(oldestKey)
	}
}

func (c *Cache) remove(key string) {
	delete(c.entries, key)
	if c.dir != "" {
		c.deletePersisted(key)
	}
}
