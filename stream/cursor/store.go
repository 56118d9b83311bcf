package cursor

import "sync"

// Store persists the last seen snapshot cursor per subscription key so
// a restarted consumer can resume instead of replaying history.
type Store interface {
	Set(key string, cursor int64)
	Get(key string) (cursor int64)
}

// MemoryStore keeps cursors for the process lifetime only. Useful for
// tests and for deployments that are fine re-reading one snapshot per
// collection on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	cursors map[string]int64
}

func (m *MemoryStore) Set(key string, cursor int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cursors == nil {
		m.cursors = make(map[string]int64)
	}
	m.cursors[key] = cursor
}

func (m *MemoryStore) Get(key string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursors[key]
}
