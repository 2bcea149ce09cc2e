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

// Candidate is a block built locally but not yet confirmed. Nothing in it is
// visible through the tree until the tree is advanced onto it.
type Candidate struct {
	ChainID string
	Parent  cid.Cid
	Block   *Block
	// ID is the CID the block will have once stored
	ID    cid.Cid
	Bytes []byte
	// Nodes are the encoded state nodes written while applying the block
	Nodes [][]byte
}

func (c *Candidate) Height() uint64 {
	return c.Block.Height
}

// BuildCandidate plays txs onto the tree's current tip
func (t *ChainTree) BuildCandidate(ctx context.Context, txs []*tx.Transaction) (*Candidate, error) {
	return BuildCandidate(ctx, t.store, t.id, t.Tip(), txs)
}

// BuildCandidate plays txs onto parent. New state nodes are written to s,
// the block itself is not.
func BuildCandidate(ctx context.Context, s storage.ContentStore, chainID string, parent cid.Cid, txs []*tx.Transaction) (*Candidate, error) {
	if len(txs) == 0 {
		return nil, errors.Wrap(tx.ErrInvalidTransaction, "no transactions")
	}

	if len(txs) > storage.MaxBlockTxCount {
		return nil, errors.Wrapf(tx.ErrInvalidTransaction, "too many transactions %d > %d", len(txs), storage.MaxBlockTxCount)
	}

	txs = append([]*tx.Transaction(nil), txs...)

	for i, t := range txs {
		if t == nil {
			return nil, errors.Wrapf(tx.ErrInvalidTransaction, "nil transaction %d", i)
		}
		t, err := t.Normalized()
		if err != nil {
			return nil, err
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		txs[i] = t
		if exp := t.ExpectedTip(); exp.Defined() && !exp.Equals(parent) {
			return nil, errors.Wrapf(ErrStaleTransaction, "transaction %d expects %s", i, exp)
		}
	}

	pb, err := GetBlock(ctx, s, parent)
	if err != nil {
		return nil, errors.Wrap(err, "loading parent")
	}

	if pb.Height > 0 && pb.ChainID != chainID {
		return nil, errors.Wrapf(ErrChainMismatch, "parent belongs to %s", pb.ChainID)
	}

	rec := &recordingStore{ContentStore: s}

	root, err := ApplyTransactions(ctx, rec, pb.State(), txs)
	if err != nil {
		return nil, err
	}

	ids := make([]cid.Cid, 0, len(txs))
	for _, t := range txs {
		id, err := t.ID()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	bloom, err := storage.MakeBloom(ids)
	if err != nil {
		return nil, err
	}

	b := &Block{
		Version:      Version,
		ChainID:      chainID,
		Height:       pb.Height + 1,
		Parents:      [][]byte{parent.Bytes()},
		StateRoot:    root.Bytes(),
		Transactions: txs,
		Bloom:        bloom,
	}

	d, err := b.Marshal()
	if err != nil {
		return nil, err
	}

	id, err := storage.Sum(d)
	if err != nil {
		return nil, err
	}

	return &Candidate{
		ChainID: chainID,
		Parent:  parent,
		Block:   b,
		ID:      id,
		Bytes:   d,
		Nodes:   rec.written(),
	}, nil
}

// ApplyTransactions writes each transaction into the state rooted at root in
// order and returns the new root
func ApplyTransactions(ctx context.Context, s storage.ContentStore, root cid.Cid, txs []*tx.Transaction) (cid.Cid, error) {
	var err error

	for i, t := range txs {
		root, err = dag.SetAt(ctx, s, root, t.Path, t.Value)
		if err != nil {
			return cid.Undef, errors.Wrapf(err, "applying transaction %d", i)
		}
	}

	return root, nil
}

type recordingStore struct {
	storage.ContentStore

	mu    sync.Mutex
	nodes [][]byte
}

func (r *recordingStore) Put(ctx context.Context, d []byte) (cid.Cid, error) {
	id, err := r.ContentStore.Put(ctx, d)
	if err != nil {
		return id, err
	}

	r.mu.Lock()
	r.nodes = append(r.nodes, append([]byte(nil), d...))
	r.mu.Unlock()

	return id, nil
}

func (r *recordingStore) written() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.nodes
}
