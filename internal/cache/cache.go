// Package cache is a small file-backed key/value store with time-based
// expiry. Reads and writes happen in memory; Save merges them into the file
// under an advisory file lock, so entries another run saved in the meantime
// are kept.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/updaun/postkit/internal/logging"
)

// ErrLocked means another process holds the cache file lock.
var ErrLocked = errors.New("cache: file is locked by another run")

// DefaultTTL is the staleness window used when Options.TTL is zero.
const DefaultTTL = 24 * time.Hour

// Options configures a Cache.
type Options struct {
	TTL    time.Duration
	Now    func() time.Time
	Logger *slog.Logger
}

type entry[V any] struct {
	Value    V         `json:"value"`
	CachedAt time.Time `json:"cached_at"`
}

// Info describes one cached key.
type Info struct {
	Key      string
	CachedAt time.Time
	Age      time.Duration
	Fresh    bool
}

// Cache stores values of type V keyed by string.
type Cache[V any] struct {
	path   string
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu      sync.RWMutex
	entries map[string]entry[V]
	// deleted and cleared record removals since the last load or save so a
	// merge does not bring the removed entries back from disk.
	deleted map[string]bool
	cleared bool
}

// Open loads the cache at path. A missing file yields an empty cache; an
// unreadable or corrupt one is logged and also starts empty.
func Open[V any](path string, opts Options) *Cache[V] {
	c := &Cache[V]{
		path:    path,
		ttl:     opts.TTL,
		now:     opts.Now,
		logger:  logging.WithComponent(opts.Logger, "cache"),
		entries: make(map[string]entry[V]),
		deleted: make(map[string]bool),
	}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.now == nil {
		c.now = time.Now
	}

	entries, err := c.read()
	if err != nil {
		c.logger.Warn("cache will start empty", slog.String("path", path), logging.Error(err))
	} else {
		c.entries = entries
	}
	return c
}

// Path returns the backing file.
func (c *Cache[V]) Path() string {
	return c.path
}

// Get returns the value for key and its age, regardless of freshness.
func (c *Cache[V]) Get(key string) (V, time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, 0, false
	}
	return e.Value, c.now().Sub(e.CachedAt), true
}

// Fresh returns the value for key only when it is younger than the TTL.
func (c *Cache[V]) Fresh(key string) (V, bool) {
	v, age, ok := c.Get(key)
	if !ok || age >= c.ttl {
		var zero V
		return zero, false
	}
	return v, true
}

// Put stores value under key stamped with the current time.
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{Value: value, CachedAt: c.now()}
}

// Delete removes key and reports whether it was present.
func (c *Cache[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	delete(c.entries, key)
	c.deleted[key] = true
	return ok
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
	c.deleted = make(map[string]bool)
	c.cleared = true
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Keys returns all keys sorted.
func (c *Cache[V]) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List describes every entry, newest first.
func (c *Cache[V]) List() []Info {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	out := make([]Info, 0, len(c.entries))
	for k, e := range c.entries {
		age := now.Sub(e.CachedAt)
		out = append(out, Info{Key: k, CachedAt: e.CachedAt, Age: age, Fresh: age < c.ttl})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CachedAt.Equal(out[j].CachedAt) {
			return out[i].CachedAt.After(out[j].CachedAt)
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Save writes the cache to disk atomically. While holding the lock it
// merges in entries saved by other runs since this cache was loaded: for a
// key present in both, the newer entry wins, and keys removed here stay
// removed. It returns ErrLocked without writing when another process holds
// the lock.
func (c *Cache[V]) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	lock := flock.New(c.path + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Warn("failed to release cache lock", logging.Error(err))
		}
	}()

	disk, err := c.read()
	if err != nil {
		c.logger.Warn("ignoring unreadable cache file", slog.String("path", c.path), logging.Error(err))
		disk = nil
	}

	c.mu.Lock()
	c.merge(disk)
	data, err := json.MarshalIndent(c.entries, "", "  ")
	n := len(c.entries)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	c.logger.Debug("saved cache", slog.String("path", c.path), slog.Int("entries", n))
	return nil
}

// merge folds disk entries into memory. Callers hold c.mu.
func (c *Cache[V]) merge(disk map[string]entry[V]) {
	if !c.cleared {
		for k, e := range disk {
			if c.deleted[k] {
				continue
			}
			if cur, ok := c.entries[k]; !ok || e.CachedAt.After(cur.CachedAt) {
				c.entries[k] = e
			}
		}
	}
	c.deleted = make(map[string]bool)
	c.cleared = false
}

// read decodes the cache file. A missing or empty file is an empty cache.
func (c *Cache[V]) read() (map[string]entry[V], error) {
	entries := make(map[string]entry[V])
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse cache file: %w", err)
	}
	c.logger.Debug("loaded cache", slog.String("path", c.path), slog.Int("entries", len(entries)))
	return entries, nil
}
