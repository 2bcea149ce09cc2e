package storage

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
)

var (
	_ ContentStore = (*FallbackStore)(nil)
)

// FallbackStore reads through an ordered list of stores. Writes only go to the
// first (local) store, and objects found further down the list are copied into
// it so later reads stay local. This is how blocks written by other writers
// reach a local view without the core caring where they came from.
type FallbackStore struct {
	stores []ContentStore
}

func NewFallbackStore(local ContentStore, remotes ...ContentStore) *FallbackStore {
	return &FallbackStore{stores: append([]ContentStore{local}, remotes...)}
}

func (f *FallbackStore) Put(ctx context.Context, d []byte) (cid.Cid, error) {
	return f.stores[0].Put(ctx, d)
}

func (f *FallbackStore) Get(ctx context.Context, id cid.Cid) ([]byte, error) {
	for i, s := range f.stores {
		d, err := s.Get(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}

		if i > 0 {
			if err := Verify(id, d); err != nil {
				return nil, err
			}
			if _, err := f.stores[0].Put(ctx, d); err != nil {
				return nil, errors.Wrap(err, "caching fetched object")
			}
		}

		return d, nil
	}

	return nil, ErrNotFound
}

func (f *FallbackStore) Has(ctx context.Context, id cid.Cid) (bool, error) {
	for _, s := range f.stores {
		ok, err := s.Has(ctx, id)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	return false, nil
}
