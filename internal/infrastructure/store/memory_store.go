package store

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory KV, used for tests and the "memory" driver.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

// Get retrieves a copy of the value under key
func (ms *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	v, ok := ms.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Apply writes all ops under a single lock
func (ms *MemoryStore) Apply(_ context.Context, ops ...Op) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for _, op := range ops {
		if op.Delete {
			delete(ms.data, op.Key)
			continue
		}
		ms.data[op.Key] = append([]byte(nil), op.Value...)
	}
	return nil
}

func (ms *MemoryStore) Close() error { return nil }
