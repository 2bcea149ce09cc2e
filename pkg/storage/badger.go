package storage

import (
	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
)

var (
	_ Store = (*BadgerStore)(nil)
)

// BadgerStore persists objects and tips in a badger database
type BadgerStore struct {
	kvStore

	db *badger.DB
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "opening badger store")
	}

	s := &BadgerStore{db: db}
	s.kvStore.db = (*badgerKV)(db)

	return s, nil
}

func (s *BadgerStore) Close() error {
	if !s.markClosed() {
		return ErrClosed
	}

	return s.db.Close()
}

type badgerKV badger.DB

func (b *badgerKV) get(key []byte) ([]byte, error) {
	var d []byte

	err := (*badger.DB)(b).View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		d, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "badger get")
	}

	return d, nil
}

func (b *badgerKV) has(key []byte) (bool, error) {
	err := (*badger.DB)(b).View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "badger get")
	}

	return true, nil
}

func (b *badgerKV) set(key, value []byte, sync bool) error {
	db := (*badger.DB)(b)

	err := db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return errors.Wrap(err, "badger set")
	}

	if sync {
		return errors.Wrap(db.Sync(), "badger sync")
	}

	return nil
}
