package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

// PebbleStore implements KV on a local PebbleDB directory.
type PebbleStore struct {
	db        *pebble.DB
	writeOpts *pebble.WriteOptions
}

// NewPebbleStore opens (or creates) a Pebble database in dir. With sync set,
// every batch is fsynced before Apply returns.
func NewPebbleStore(dir string, sync bool) (*PebbleStore, error) {
	opts := &pebble.Options{
		// State is a handful of small JSON documents.
		MemTableSize: 4 << 20,
	}
	db, err := pebble.Open(filepath.Clean(dir), opts)
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	wo := pebble.NoSync
	if sync {
		wo = pebble.Sync
	}
	return &PebbleStore{db: db, writeOpts: wo}, nil
}

func (p *PebbleStore) Close() error { return p.db.Close() }

func (p *PebbleStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()
	return append([]byte(nil), v...), true, nil
}

// Apply commits ops as one Pebble batch, so they become visible together.
func (p *PebbleStore) Apply(_ context.Context, ops ...Op) error {
	if len(ops) == 0 {
		return nil
	}
	b := p.db.NewBatch()
	defer b.Close()
	for _, op := range ops {
		var err error
		if op.Delete {
			err = b.Delete([]byte(op.Key), nil)
		} else {
			err = b.Set([]byte(op.Key), op.Value, nil)
		}
		if err != nil {
			return fmt.Errorf("pebble batch %s: %w", op.Key, err)
		}
	}
	if err := b.Commit(p.writeOpts); err != nil {
		return fmt.Errorf("pebble commit: %w", err)
	}
	return nil
}
