package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	payload []byte
	at      time.Time
}

// Memory is an in-process TTL cache. Capacity is time-bounded, not
// size-bounded: entries live for the TTL and are evicted lazily on lookup.
// The unbounded map is a deliberate trade-off for a run whose key space is
// the finite target list; deployments needing bounded memory use the Redis
// backend instead.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

// NewMemory creates a Memory cache with the given TTL.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Get returns the payload when a fresh entry exists. Expired entries are
// deleted and reported absent.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if m.now().Sub(e.at) >= m.ttl {
		delete(m.entries, key)
		return nil, false
	}
	return e.payload, true
}

// Put stores the payload with the current timestamp.
func (m *Memory) Put(_ context.Context, key string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{payload: payload, at: m.now()}
}

// Len returns the number of resident entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
