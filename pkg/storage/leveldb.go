package storage

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

var (
	_ Store = (*LevelDBStore)(nil)
)

// LevelDBStore persists objects and tips in a goleveldb database
type LevelDBStore struct {
	kvStore

	db *leveldb.DB
}

func NewLevelDBStore(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "opening leveldb store")
	}

	s := &LevelDBStore{db: db}
	s.kvStore.db = (*levelKV)(db)

	return s, nil
}

func (s *LevelDBStore) Close() error {
	if !s.markClosed() {
		return ErrClosed
	}

	return s.db.Close()
}

type levelKV leveldb.DB

func (l *levelKV) get(key []byte) ([]byte, error) {
	d, err := (*leveldb.DB)(l).Get(key, nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "leveldb get")
	}

	return d, nil
}

func (l *levelKV) has(key []byte) (bool, error) {
	ok, err := (*leveldb.DB)(l).Has(key, nil)
	if err != nil {
		return false, errors.Wrap(err, "leveldb has")
	}

	return ok, nil
}

func (l *levelKV) set(key, value []byte, sync bool) error {
	return errors.Wrap((*leveldb.DB)(l).Put(key, value, &opt.WriteOptions{Sync: sync}), "leveldb put")
}
