package memory

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore is a process-local core.MemoryStore keeping one key/value map
// per namespace.
//
// Concurrency: protected by RWMutex. Values are stored as given; callers that
// store mutable values (maps, slices) must not modify them afterwards.
type InMemoryStore struct {
	mu     sync.RWMutex
	spaces map[string]map[string]any // namespace -> key -> value
}

// NewInMemoryStore creates a new in-memory memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{spaces: make(map[string]map[string]any)}
}

// Get returns the value stored under key in namespace.
func (m *InMemoryStore) Get(ctx context.Context, namespace, key string) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.spaces[namespace][key]
	return v, ok, nil
}

// Put stores value under key, overwriting any previous value.
func (m *InMemoryStore) Put(ctx context.Context, namespace, key string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	space, exists := m.spaces[namespace]
	if !exists {
		space = make(map[string]any)
		m.spaces[namespace] = space
	}
	space[key] = value
	return nil
}

// Delete removes key from namespace. Deleting a missing key is a no-op.
func (m *InMemoryStore) Delete(ctx context.Context, namespace, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.spaces[namespace], key)
	return nil
}

// Keys returns the keys of namespace in sorted order.
func (m *InMemoryStore) Keys(ctx context.Context, namespace string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.spaces[namespace]))
	for k := range m.spaces[namespace] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
