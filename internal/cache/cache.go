// Package cache provides a content-addressed response cache for generation
// results, with interchangeable in-memory and SQLite-backed stores.
package cache

import (
	"crypto/sha256"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kaizenapp/kaizen/pkg/models"
)

// DefaultTTL is the entry lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

// Key derives the deterministic cache key for a generation. The digest is
// stable across process restarts so a durable store survives redeployment.
func Key(prompt string, model models.Model, temperature float64) string {
	input := prompt + ":" + string(model) + ":" + strconv.FormatFloat(temperature, 'g', -1, 64)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(input)))
}

// Entry is one cached generation result. Entries are immutable after
// insertion and removed only by expiry or eviction.
type Entry struct {
	// Key is the content digest the entry is stored under.
	Key string `json:"key"`
	// Result is the cached generation result, with Cached forced true.
	Result models.GenerationResult `json:"response"`
	// CreatedAt is when the entry was stored.
	CreatedAt time.Time `json:"created_at"`
	// ExpiresAt is when the entry stops being served.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry at the given time.
func (e Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Store is the backing-store contract shared by the memory and SQLite
// implementations. Get must not return expired entries.
type Store interface {
	// Get returns the entry for the key, if present and unexpired.
	Get(key string) (Entry, bool, error)
	// Set inserts or replaces the entry for its key.
	Set(entry Entry) error
	// Delete removes the entry for the key, if present.
	Delete(key string) error
	// Len returns the number of physically stored entries, expired included.
	Len() (int64, error)
	// Clear removes entries; only expired ones when expiredOnly is set.
	Clear(expiredOnly bool) error
	// Close releases store resources.
	Close() error
}

// Logger receives diagnostic messages for swallowed backend errors.
type Logger interface {
	Log(format string, args ...interface{})
}

// ResponseCache caches generation results keyed by (prompt, model,
// temperature). Backend failures never abort the generation flow: a failed
// read degrades to a miss and a failed write is dropped, both logged.
type ResponseCache struct {
	store  Store
	logger Logger

	mu  sync.RWMutex
	ttl time.Duration

	hits   atomic.Int64
	misses atomic.Int64

	now func() time.Time
}

// New creates a ResponseCache over the given store. A nil logger silences
// backend error reporting; a non-positive ttl falls back to DefaultTTL.
func New(store Store, ttl time.Duration, logger Logger) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResponseCache{
		store:  store,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// SetTTL updates the lifetime applied to future insertions.
func (c *ResponseCache) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

func (c *ResponseCache) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Log(format, args...)
	}
}

// Get returns the cached result for the triple, if any.
func (c *ResponseCache) Get(prompt string, model models.Model, temperature float64) (models.GenerationResult, bool) {
	entry, ok, err := c.store.Get(Key(prompt, model, temperature))
	if err != nil {
		c.logf("cache get failed, treating as miss: %v", err)
		c.misses.Add(1)
		return models.GenerationResult{}, false
	}
	if !ok {
		c.misses.Add(1)
		return models.GenerationResult{}, false
	}
	c.hits.Add(1)
	return entry.Result, true
}

// Set stores the result under the triple's key with the configured TTL.
// The stored copy has its Cached flag forced true.
func (c *ResponseCache) Set(prompt string, model models.Model, temperature float64, result models.GenerationResult) {
	c.mu.RLock()
	ttl := c.ttl
	c.mu.RUnlock()

	now := c.now()
	result.Cached = true
	entry := Entry{
		Key:       Key(prompt, model, temperature),
		Result:    result,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := c.store.Set(entry); err != nil {
		c.logf("cache set failed, dropping entry: %v", err)
	}
}

// Clear removes entries from the backing store.
func (c *ResponseCache) Clear(expiredOnly bool) error {
	return c.store.Clear(expiredOnly)
}

// Stats returns entry count and hit/miss counters.
func (c *ResponseCache) Stats() models.CacheStats {
	entries, err := c.store.Len()
	if err != nil {
		c.logf("cache stats failed: %v", err)
	}
	return models.CacheStats{
		Entries: entries,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

// Close releases the backing store.
func (c *ResponseCache) Close() error {
	return c.store.Close()
}
