package storage

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/pkg/errors"
)

const (
	// CIDEncodingBlock is the multicodec used for every stored object. Objects
	// are opaque bytes to the store, their structure is owned by the caller.
	CIDEncodingBlock = cid.Raw

	hashFunc = multihash.SHA3_256
)

// ContentStore is a content addressed block store.
//
// Put must be idempotent and the returned CID must be derived only from the
// bytes written. There is no update or delete: an object keyed by its own hash
// is immutable by construction. Get returns ErrNotFound for absent objects.
type ContentStore interface {
	Put(context.Context, []byte) (cid.Cid, error)
	Get(context.Context, cid.Cid) ([]byte, error)
	Has(context.Context, cid.Cid) (bool, error)
}

// TipStore is a mutable register of chain tips keyed by chain ID. It is the
// only mutable state kept next to the content store.
type TipStore interface {
	GetTip(ctx context.Context, chainID string) (cid.Cid, error)
	SetTip(ctx context.Context, chainID string, tip cid.Cid) error
}

// Store is a backend providing both blocks and tips
type Store interface {
	ContentStore
	TipStore

	Close() error
}

// Sum returns the CID of d
func Sum(d []byte) (cid.Cid, error) {
	h, err := multihash.Sum(d, hashFunc, multihash.DefaultLengths[hashFunc])
	if err != nil {
		return cid.Undef, errors.Wrap(err, "hashing object")
	}

	return cid.NewCidV1(CIDEncodingBlock, h), nil
}

// Verify checks that d hashes to id
func Verify(id cid.Cid, d []byte) error {
	got, err := id.Prefix().Sum(d)
	if err != nil {
		return errors.Wrap(err, "hashing object")
	}

	if !got.Equals(id) {
		return ErrCIDMismatch
	}

	return nil
}
