package storage

import (
	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

const (
	cacheSize = 1 << 20 * 100
)

var (
	_ Store = (*PebbleStore)(nil)
)

// PebbleStore persists objects and tips in a pebble database
type PebbleStore struct {
	kvStore

	db *pebble.DB
}

func NewPebbleStore(path string) (*PebbleStore, error) {
	c := pebble.NewCache(cacheSize)
	tc := pebble.NewTableCache(c, 16, 100)
	defer tc.Unref()
	defer c.Unref()

	db, err := pebble.Open(path, &pebble.Options{Cache: c, TableCache: tc})
	if err != nil {
		return nil, errors.Wrap(err, "opening pebble store")
	}

	s := &PebbleStore{db: db}
	s.kvStore.db = (*pebbleKV)(db)

	return s, nil
}

func (s *PebbleStore) Close() error {
	if !s.markClosed() {
		return ErrClosed
	}

	return s.db.Close()
}

type pebbleKV pebble.DB

func (p *pebbleKV) get(key []byte) ([]byte, error) {
	d, done, err := (*pebble.DB)(p).Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "pebble get")
	}
	defer done.Close()

	return append([]byte(nil), d...), nil
}

func (p *pebbleKV) has(key []byte) (bool, error) {
	_, done, err := (*pebble.DB)(p).Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return false, nil
		}
		return false, errors.Wrap(err, "pebble get")
	}
	done.Close()

	return true, nil
}

func (p *pebbleKV) set(key, value []byte, sync bool) error {
	opts := pebble.NoSync
	if sync {
		opts = pebble.Sync
	}

	return errors.Wrap((*pebble.DB)(p).Set(key, value, opts), "pebble set")
}
