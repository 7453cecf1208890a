package coord

import (
	"context"
	"sync"
)

// MemoryCoordinator implements Coordinator with in-process maps. It mirrors
// the Redis semantics and serves tests and DB-less development runs.
type MemoryCoordinator struct {
	mu       sync.Mutex
	values   map[string]string
	counters map[string]int64
	sets     map[string]map[string]struct{}
}

// NewMemory creates an empty in-memory coordinator.
func NewMemory() *MemoryCoordinator {
	return &MemoryCoordinator{
		values:   make(map[string]string),
		counters: make(map[string]int64),
		sets:     make(map[string]map[string]struct{}),
	}
}

func (m *MemoryCoordinator) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.values[key]
	if !ok {
		return "", ErrNoKey
	}
	return val, nil
}

func (m *MemoryCoordinator) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryCoordinator) SetNX(_ context.Context, key, value string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value
	return true, nil
}

func (m *MemoryCoordinator) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key]++
	return m.counters[key], nil
}

func (m *MemoryCoordinator) SAdd(_ context.Context, key string, member string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{})
		m.sets[key] = set
	}
	set[member] = struct{}{}
	return nil
}

func (m *MemoryCoordinator) SMembers(_ context.Context, key string) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]struct{}, len(m.sets[key]))
	for member := range m.sets[key] {
		out[member] = struct{}{}
	}
	return out, nil
}
