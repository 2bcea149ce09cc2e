package chaintree

import (
	"context"
	"sync"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/dag"
	"github.com/tcfw/chaintree/pkg/storage"
	"github.com/tcfw/chaintree/pkg/tx"
)

const (
	Version uint32 = 1
)

// Block is one immutable entry of a chain tree's history, identified by the
// CID of its canonical encoding. It holds no timestamps, nonces or
// signatures; the same transactions against the same parent always produce
// the same block.
type Block struct {
	Version      uint32            `msgpack:"v"`
	ChainID      string            `msgpack:"c,omitempty"`
	Height       uint64            `msgpack:"h"`
	Parents      [][]byte          `msgpack:"p,omitempty"`
	StateRoot    []byte            `msgpack:"r,omitempty"`
	Transactions []*tx.Transaction `msgpack:"x,omitempty"`
	Bloom        []byte            `msgpack:"b,omitempty"`
}

func (b *Block) Marshal() ([]byte, error) {
	d, err := dag.Encode(b)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling block")
	}

	return d, nil
}

func (b *Block) Unmarshal(d []byte) error {
	if err := dag.Decode(d, b); err != nil {
		return errors.Wrap(err, "unmarshalling block")
	}

	if b.Version != Version {
		return errors.Wrapf(ErrInvalidBlock, "unsupported version %d", b.Version)
	}

	for i, t := range b.Transactions {
		if t == nil {
			return errors.Wrapf(ErrInvalidBlock, "nil transaction %d", i)
		}
		if err := t.Validate(); err != nil {
			return errors.Wrapf(err, "transaction %d", i)
		}
	}

	return nil
}

// Parent returns the previous tip, cid.Undef for genesis
func (b *Block) Parent() cid.Cid {
	if len(b.Parents) == 0 {
		return cid.Undef
	}

	c, err := cid.Cast(b.Parents[0])
	if err != nil {
		return cid.Undef
	}

	return c
}

// State returns the state root, cid.Undef for an empty state
func (b *Block) State() cid.Cid {
	if len(b.StateRoot) == 0 {
		return cid.Undef
	}

	c, err := cid.Cast(b.StateRoot)
	if err != nil {
		return cid.Undef
	}

	return c
}

// TransactionIDs returns the CIDs of the block's transactions in order
func (b *Block) TransactionIDs() ([]cid.Cid, error) {
	ids := make([]cid.Cid, 0, len(b.Transactions))

	for _, t := range b.Transactions {
		id, err := t.ID()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// Genesis returns the genesis block. It is the same for every tree, trees are
// told apart by their ID instead.
func Genesis() *Block {
	return &Block{Version: Version}
}

var (
	genesisOnce  sync.Once
	genesisID    cid.Cid
	genesisBytes []byte
)

func genesis() (cid.Cid, []byte) {
	genesisOnce.Do(func() {
		d, err := Genesis().Marshal()
		if err != nil {
			panic(err)
		}

		genesisBytes = d
		genesisID, err = storage.Sum(d)
		if err != nil {
			panic(err)
		}
	})

	return genesisID, genesisBytes
}

// GenesisCID is the CID of the genesis block
func GenesisCID() cid.Cid {
	id, _ := genesis()
	return id
}

// GenesisBytes is the canonical encoding of the genesis block
func GenesisBytes() []byte {
	_, d := genesis()
	return append([]byte(nil), d...)
}

// GetBlock loads and decodes a block
func GetBlock(ctx context.Context, s storage.ContentStore, id cid.Cid) (*Block, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	b := &Block{}
	if err := b.Unmarshal(d); err != nil {
		return nil, err
	}

	return b, nil
}
