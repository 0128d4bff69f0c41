package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

const persistedExt = ".json"

// fileForKey maps a cache key to its on-disk filename: an xxhash of the key,
// so arbitrary keys never produce unsafe path components.
func (c *Cache) fileForKey(key string) string {
	sum := xxhash.Sum64String(key)
	return filepath.Join(c.dir, fmt.Sprintf("%016x%s", sum, persistedExt))
}

// persistedEntry is the on-disk shape. The original key travels with the
// entry so a fresh Cache can rebuild its map from filenames alone.
type persistedEntry struct {
	Key   string `json:"key"`
	Entry Entry  `json:"entry"`
}

func (c *Cache) persist(key string, entry *Entry) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(persistedEntry{Key: key, Entry: *entry})
	if err != nil {
		return err
	}
	return os.WriteFile(c.fileForKey(key), data, 0o644)
}

func (c *Cache) deletePersisted(key string) {
	if err := os.Remove(c.fileForKey(key)); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("cache: remove persisted entry failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) removePersisted() {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("cache: clear persisted entries failed", zap.Error(err))
		}
		return
	}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), persistedExt) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, f.Name())); err != nil {
			c.logger.Warn("cache: clear persisted entries failed", zap.String("file", f.Name()), zap.Error(err))
		}
	}
}

// loadPersisted reads every persisted entry back into memory. Expired entries
// and files that fail to decode are deleted instead of surfacing an error.
func (c *Cache) loadPersisted() error {
	files, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	loaded := 0
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), persistedExt) {
			continue
		}
		path := filepath.Join(c.dir, f.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var pe persistedEntry
		if err := json.Unmarshal(data, &pe); err != nil || pe.Key == "" {
			c.logger.Warn("cache: deleting corrupted entry file", zap.String("file", f.Name()))
			_ = os.Remove(path)
			continue
		}
		entry := pe.Entry
		if c.expired(&entry) {
			_ = os.Remove(path)
			continue
		}
		c.entries[pe.Key] = &entry
		loaded++
	}

	// The directory may hold more entries than the configured capacity,
	// e.g. after a restart with a smaller MaxEntries. Trim by LastAccess.
	for len(c.entries) > c.maxEntries {
		c.evictLRU()
	}

	if loaded > 0 {
		c.logger.Debug("cache: loaded persisted entries", zap.Int("count", loaded))
	}
	return nil
}
