package drivers

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore implements kv.Store on an embedded Badger database, the
// durable on-disk equivalent of a browser profile's local storage.
type BadgerStore struct {
	db     *badger.DB
	prefix string
}

// NewBadgerStore opens (or creates) a Badger database at path.
// An empty path opens an in-memory instance.
func NewBadgerStore(path, prefix string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db, prefix: prefix}, nil
}

// Get implements kv.Store.
func (s *BadgerStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(value), true, nil
}

// Set implements kv.Store.
func (s *BadgerStore) Set(ctx context.Context, key, value string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(key), []byte(value))
	})
}

// Remove implements kv.Store.
func (s *BadgerStore) Remove(ctx context.Context, key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key(key))
	})
}

// Close implements kv.Store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) key(key string) []byte {
	return []byte(s.prefix + key)
}
