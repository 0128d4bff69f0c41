package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, opts Options) (*Cache, *time.Time) {
	t.Helper()
	c, err := New(opts)
	require.NoError(t, err)
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return clock }
	return c, &clock
}

func TestGetSetRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, Options{MaxEntries: 10, TTL: time.Minute})

	c.Set("k", "v")
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", got)

	_, ok = c.Get("absent")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Hits())
	assert.Equal(t, 1, c.Misses())
}

func TestTTLExpiry(t *testing.T) {
	c, clock := newTestCache(t, Options{MaxEntries: 10, TTL: time.Minute})

	c.Set("k", "v")
	*clock = clock.Add(59 * time.Second)
	_, ok := c.Get("k")
	assert.True(t, ok, "entry within TTL should be returned")

	*clock = clock.Add(2 * time.Second)
	_, ok = c.Get("k")
	assert.False(t, ok, "entry older than TTL must never be returned")
	assert.Equal(t, 0, c.Len(), "expired entry should be purged on access")
}

func TestTTLExpiryWithoutInterveningSet(t *testing.T) {
	c, clock := newTestCache(t, Options{MaxEntries: 10, TTL: time.Minute})
	c.Set("k", 42)
	*clock = clock.Add(2 * time.Minute)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestLRUEviction(t *testing.T) {
	c, clock := newTestCache(t, Options{MaxEntries: 3, TTL: time.Hour})

	// Distinct access times so LRU order is deterministic.
	c.Set("a", 1)
	*clock = clock.Add(time.Second)
	c.Set("b", 2)
	*clock = clock.Add(time.Second)
	c.Set("c", 3)
	*clock = clock.Add(time.Second)

	// Capacity reached: inserting d must evict a, the least recently accessed.
	c.Set("d", 4)

	_, ok := c.Get("a")
	assert.False(t, ok, "first-inserted key should be evicted")
	for _, key := range []string{"b", "c", "d"} {
		_, ok := c.Get(key)
		assert.True(t, ok, "key %s should survive", key)
	}
}

func TestLRURespectsAccessOrder(t *testing.T) {
	c, clock := newTestCache(t, Options{MaxEntries: 2, TTL: time.Hour})

	c.Set("a", 1)
	*clock = clock.Add(time.Second)
	c.Set("b", 2)
	*clock = clock.Add(time.Second)

	// Touch a so b becomes the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)
	*clock = clock.Add(time.Second)

	c.Set("c", 3)
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("a")
	assert.True(t, ok)
}

func TestSetOverwriteDoesNotEvict(t *testing.T) {
	c, _ := newTestCache(t, Options{MaxEntries: 2, TTL: time.Hour})
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10)

	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, got)
	got, ok = c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 10, got)
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()

	first, err := New(Options{MaxEntries: 10, TTL: time.Hour, Dir: dir})
	require.NoError(t, err)
	first.Set("scan_directory", map[string]any{"files": []any{"main.py"}})
	first.Set("read_file", "print('hello')")

	// A fresh instance over the same directory sees the persisted entries.
	second, err := New(Options{MaxEntries: 10, TTL: time.Hour, Dir: dir})
	require.NoError(t, err)

	got, ok := second.Get("read_file")
	require.True(t, ok)
	assert.Equal(t, "print('hello')", got)

	raw, ok := second.Get("scan_directory")
	require.True(t, ok)
	assert.Contains(t, raw.(map[string]any), "files")
}

func TestPersistenceSkipsExpiredOnLoad(t *testing.T) {
	dir := t.TempDir()

	first, err := New(Options{MaxEntries: 10, TTL: time.Nanosecond, Dir: dir})
	require.NoError(t, err)
	first.Set("k", "v")

	time.Sleep(2 * time.Millisecond)
	second, err := New(Options{MaxEntries: 10, TTL: time.Nanosecond, Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Len())

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files, "expired persisted file should be deleted on load")
}

func TestLoadPersistedTrimsToCapacity(t *testing.T) {
	dir := t.TempDir()

	first, err := New(Options{MaxEntries: 10, TTL: time.Hour, Dir: dir})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		first.Set(fmt.Sprintf("k%d", i), i)
		time.Sleep(time.Millisecond) // distinct LastAccess timestamps
	}

	second, err := New(Options{MaxEntries: 2, TTL: time.Hour, Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 2, second.Len(), "reload must not exceed capacity")

	// The most recently touched entries survive the trim.
	_, ok := second.Get("k4")
	assert.True(t, ok)
	_, ok = second.Get("k3")
	assert.True(t, ok)
	_, ok = second.Get("k0")
	assert.False(t, ok)

	// Trimmed entries lose their files too, so a later reload stays trimmed.
	third, err := New(Options{MaxEntries: 10, TTL: time.Hour, Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 2, third.Len())
}

func TestPersistenceDeletesCorruptedFiles(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "deadbeefdeadbeef.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))

	c, err := New(Options{MaxEntries: 10, TTL: time.Hour, Dir: dir})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())

	_, statErr := os.Stat(bad)
	assert.True(t, os.IsNotExist(statErr), "corrupted file should be removed")
}

func TestClearRemovesPersistedFiles(t *testing.T) {
	dir := t.TempDir()
	c, err := New(Options{MaxEntries: 10, TTL: time.Hour, Dir: dir})
	require.NoError(t, err)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()
	assert.Equal(t, 0, c.Len())

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestPersistedFileShape(t *testing.T) {
	dir := t.TempDir()
	c, err := New(Options{MaxEntries: 10, TTL: time.Hour, Dir: dir})
	require.NoError(t, err)
	c.Set("k", "v")

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(filepath.Join(dir, files[0].Name()))
	require.NoError(t, err)

	var pe struct {
		Key   string `json:"key"`
		Entry struct {
			Value      any       `json:"value"`
			CreatedAt  time.Time `json:"created_at"`
			LastAccess time.Time `json:"last_access"`
		} `json:"entry"`
	}
	require.NoError(t, json.Unmarshal(data, &pe))
	assert.Equal(t, "k", pe.Key)
	assert.Equal(t, "v", pe.Entry.Value)
	assert.False(t, pe.Entry.CreatedAt.IsZero())
}
