package snapshot

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in process memory. Suitable for tests and
// single-node deployments; everything is lost on restart.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	text    string
	savedAt time.Time
}

// NewMemoryStore creates a MemoryStore. A ttl of zero keeps entries forever.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: map[string]memoryEntry{},
		ttl:     ttl,
		now:     time.Now,
	}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, text string) (string, error) {
	id := NewID()
	m.mu.Lock()
	m.entries[id] = memoryEntry{text: text, savedAt: m.now()}
	m.mu.Unlock()
	return id, nil
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return "", ErrNotFound
	}
	if m.ttl > 0 && m.now().Sub(e.savedAt) > m.ttl {
		delete(m.entries, id)
		return "", ErrNotFound
	}
	return e.text, nil
}

// Len reports how many snapshots are held, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
