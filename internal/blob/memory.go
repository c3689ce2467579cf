package blob

import (
	"context"
	"sync"
)

// Memory keeps uploaded blobs in a map for inspection by tests.
type Memory struct {
	mu    sync.Mutex
	blobs map[string][]byte
	types map[string]string
}

// NewMemory creates an empty in-memory blob store.
func NewMemory() *Memory {
	return &Memory{
		blobs: make(map[string][]byte),
		types: make(map[string]string),
	}
}

func (m *Memory) Put(_ context.Context, path, contentType string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[path] = append([]byte(nil), data...)
	m.types[path] = contentType
	return "mem://" + path, nil
}

// Get returns the stored bytes for a path.
func (m *Memory) Get(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[path]
	return data, ok
}

// ContentType returns the content type recorded for a path.
func (m *Memory) ContentType(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.types[path]
}

// Len reports how many blobs were stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}
