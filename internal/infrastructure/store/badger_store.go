package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore implements KV using BadgerDB.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(dir string, sync bool) (*BadgerStore, error) {
	opts := badger.DefaultOptions(filepath.Clean(dir)).
		WithSyncWrites(sync).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger open: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (b *BadgerStore) Close() error { return b.db.Close() }

func (b *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// Apply writes ops inside a single read-write transaction.
func (b *BadgerStore) Apply(_ context.Context, ops ...Op) error {
	if len(ops) == 0 {
		return nil
	}
	return b.db.Update(func(txn *badger.Txn) error {
		for _, op := range ops {
			var err error
			if op.Delete {
				err = txn.Delete([]byte(op.Key))
			} else {
				err = txn.Set([]byte(op.Key), op.Value)
			}
			if err != nil {
				return fmt.Errorf("badger txn %s: %w", op.Key, err)
			}
		}
		return nil
	})
}
