package store

import "context"

// Op is a single write inside an atomic batch.
type Op struct {
	Key    string
	Value  []byte
	Delete bool
}

// Put returns an Op that sets key to value.
func Put(key string, value []byte) Op {
	return Op{Key: key, Value: value}
}

// Del returns an Op that removes key.
func Del(key string) Op {
	return Op{Key: key, Delete: true}
}

// KV is the local key-value storage the storefront persists into.
type KV interface {
	// Get returns the raw value stored under key; ok is false if absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Apply writes all ops atomically where the backend supports it, and in
	// slice order otherwise. Either every op is visible afterwards or none is.
	Apply(ctx context.Context, ops ...Op) error

	Close() error
}
