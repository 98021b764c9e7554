package cache

import (
	"sync"
	"time"
)

// DefaultMaxEntries bounds the in-memory store when no capacity is given.
const DefaultMaxEntries = 1000

// Memory is a bounded in-process Store for development and single-instance
// deployments. When the capacity is reached the oldest inserted entry is
// evicted first.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]Entry
	order    []string // insertion order, oldest first
	capacity int
	now      func() time.Time
}

// NewMemory creates a Memory store holding at most capacity entries.
// A non-positive capacity falls back to DefaultMaxEntries.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultMaxEntries
	}
	return &Memory{
		entries:  make(map[string]Entry),
		capacity: capacity,
		now:      time.Now,
	}
}

// Get returns the entry for the key. Expired entries are evicted and
// reported as absent.
func (m *Memory) Get(key string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	if entry.Expired(m.now()) {
		m.remove(key)
		return Entry{}, false, nil
	}
	return entry, true, nil
}

// Set inserts or replaces the entry. Replacing an existing key keeps its
// position in the eviction order.
func (m *Memory) Set(entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[entry.Key]; !exists {
		if len(m.entries) >= m.capacity && len(m.order) > 0 {
			m.remove(m.order[0])
		}
		m.order = append(m.order, entry.Key)
	}
	m.entries[entry.Key] = entry
	return nil
}

// Delete removes the entry for the key.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(key)
	return nil
}

// remove drops the key from the map and the order slice.
// Caller must hold m.mu.
func (m *Memory) remove(key string) {
	if _, ok := m.entries[key]; !ok {
		return
	}
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of stored entries, expired included.
func (m *Memory) Len() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.entries)), nil
}

// Clear removes entries; only expired ones when expiredOnly is set.
func (m *Memory) Clear(expiredOnly bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !expiredOnly {
		m.entries = make(map[string]Entry)
		m.order = nil
		return nil
	}

	now := m.now()
	for key, entry := range m.entries {
		if entry.Expired(now) {
			m.remove(key)
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error {
	return nil
}
