package cache

import (
	"context"
	"sync"
	"time"
)

// Entry is a stored result
type Entry struct {
	Value     any
	ExpiresAt time.Time // zero never expires
}

// Expired reports whether the entry is stale at now
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Store is the backing storage for memoized results
type Store interface {
	// Get returns the entry for key and whether it was found
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Set stores the entry; ttl is a hint for stores with native expiry, zero means none
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	// Delete removes key
	Delete(ctx context.Context, key string) error
	// Purge removes every entry owned by the store
	Purge(ctx context.Context) error
}

// Evicter is implemented by stores that need expired entries removed explicitly
type Evicter interface {
	EvictExpired(ctx context.Context, now time.Time) (int, error)
}

// MemoryStore keeps entries in process memory. Values are returned as stored,
// so pointer results are shared between callers.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
	}
}

// Get implements Store
func (m *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]

	return entry, ok, nil
}

// Set implements Store
func (m *MemoryStore) Set(_ context.Context, key string, entry Entry, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry

	return nil
}

// Delete implements Store
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)

	return nil
}

// Purge implements Store
func (m *MemoryStore) Purge(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]Entry)

	return nil
}

// EvictExpired implements Evicter
func (m *MemoryStore) EvictExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for key, entry := range m.entries {
		if entry.Expired(now) {
			delete(m.entries, key)
			evicted++
		}
	}

	return evicted, nil
}

// Len returns the number of stored entries, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
