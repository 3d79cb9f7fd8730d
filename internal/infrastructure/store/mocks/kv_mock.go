package mocks

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/infrastructure/store"
)

// MockKV is an in-memory store.KV that records calls and can inject failures.
type MockKV struct {
	mu   sync.RWMutex
	data map[string][]byte

	// For tracking calls in tests
	GetCalls   []string
	ApplyCalls [][]store.Op

	GetErr   error
	ApplyErr error
	// ApplyCallback, when set, replaces the default Apply behavior.
	ApplyCallback func(ctx context.Context, ops []store.Op) error
}

// NewMockKV creates a new MockKV
func NewMockKV() *MockKV {
	return &MockKV{
		data:       make(map[string][]byte),
		GetCalls:   make([]string, 0),
		ApplyCalls: make([][]store.Op, 0),
	}
}

// Get returns the stored value or GetErr
func (m *MockKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GetCalls = append(m.GetCalls, key)
	if m.GetErr != nil {
		return nil, false, m.GetErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Apply records the batch, then applies it unless ApplyErr is set
func (m *MockKV) Apply(ctx context.Context, ops ...store.Op) error {
	m.mu.Lock()
	m.ApplyCalls = append(m.ApplyCalls, append([]store.Op(nil), ops...))
	callback := m.ApplyCallback
	if callback != nil {
		// Unlocked so the callback may use ApplyPartial.
		m.mu.Unlock()
		return callback(ctx, ops)
	}
	defer m.mu.Unlock()

	if m.ApplyErr != nil {
		return m.ApplyErr
	}
	m.applyLocked(ops)
	return nil
}

func (m *MockKV) applyLocked(ops []store.Op) {
	for _, op := range ops {
		if op.Delete {
			delete(m.data, op.Key)
			continue
		}
		m.data[op.Key] = append([]byte(nil), op.Value...)
	}
}

// ApplyPartial writes only the first n ops of a batch, simulating a backend
// that crashed part-way through a sequence of single-key writes.
func (m *MockKV) ApplyPartial(ops []store.Op, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n > len(ops) {
		n = len(ops)
	}
	m.applyLocked(ops[:n])
}

func (m *MockKV) Close() error { return nil }

// Reset clears all data and recorded calls
func (m *MockKV) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
	m.GetCalls = make([]string, 0)
	m.ApplyCalls = make([][]store.Op, 0)
	m.GetErr = nil
	m.ApplyErr = nil
	m.ApplyCallback = nil
}

// SetRaw sets data directly for testing (without recording the call)
func (m *MockKV) SetRaw(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
}

// Raw gets data directly for testing (without recording the call)
func (m *MockKV) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}
