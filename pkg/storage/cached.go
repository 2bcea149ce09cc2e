package storage

import (
	"context"

	lru "github.com/hashicorp/golang-lru"
	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
)

var (
	_ ContentStore = (*CachedStore)(nil)
)

// CachedStore keeps recently read objects in memory in front of a slower
// backend. Objects are immutable so entries never need invalidating.
type CachedStore struct {
	ContentStore

	cache *lru.Cache
}

func NewCachedStore(s ContentStore, size int) (*CachedStore, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "creating lru cache")
	}

	return &CachedStore{ContentStore: s, cache: c}, nil
}

func (c *CachedStore) Put(ctx context.Context, d []byte) (cid.Cid, error) {
	id, err := c.ContentStore.Put(ctx, d)
	if err != nil {
		return cid.Undef, err
	}

	c.cache.Add(id, append([]byte(nil), d...))

	return id, nil
}

func (c *CachedStore) Get(ctx context.Context, id cid.Cid) ([]byte, error) {
	if v, ok := c.cache.Get(id); ok {
		return append([]byte(nil), v.([]byte)...), nil
	}

	d, err := c.ContentStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.cache.Add(id, append([]byte(nil), d...))

	return d, nil
}

func (c *CachedStore) Has(ctx context.Context, id cid.Cid) (bool, error) {
	if c.cache.Contains(id) {
		return true, nil
	}

	return c.ContentStore.Has(ctx, id)
}
