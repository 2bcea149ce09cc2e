package chaintree

import (
	"context"
	"sync"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/dag"
	"github.com/tcfw/chaintree/pkg/identity"
	"github.com/tcfw/chaintree/pkg/storage"
	"github.com/tcfw/chaintree/pkg/tx"
)

// ChainTree is a local handle onto one tree: its ID and the tip it has
// observed. Every block and state node lives in the content store, the tree
// itself only moves a pointer.
type ChainTree struct {
	id    string
	store storage.ContentStore

	mu     sync.RWMutex
	tip    cid.Cid
	height uint64

	inflight chan struct{}
}

func newTree(id string, s storage.ContentStore, tip cid.Cid, height uint64) *ChainTree {
	return &ChainTree{
		id:       id,
		store:    s,
		tip:      tip,
		height:   height,
		inflight: make(chan struct{}, 1),
	}
}

// NewEmpty creates a tree at genesis owned by owner
func NewEmpty(ctx context.Context, s storage.ContentStore, owner *identity.PublicIdentity) (*ChainTree, error) {
	if owner == nil {
		return nil, errors.New("owner is required")
	}

	id, err := DeriveID(owner.Address)
	if err != nil {
		return nil, err
	}

	gid, gb := genesis()
	if _, err := s.Put(ctx, gb); err != nil {
		return nil, errors.Wrap(err, "storing genesis")
	}

	return newTree(id, s, gid, 0), nil
}

// Load opens a tree at a known tip. The tip block must be available in s.
func Load(ctx context.Context, s storage.ContentStore, id string, tip cid.Cid) (*ChainTree, error) {
	if !ValidID(id) {
		return nil, errors.Errorf("invalid chain tree id %q", id)
	}

	if !tip.Defined() || tip.Equals(GenesisCID()) {
		_, gb := genesis()
		if _, err := s.Put(ctx, gb); err != nil {
			return nil, errors.Wrap(err, "storing genesis")
		}
		return newTree(id, s, GenesisCID(), 0), nil
	}

	b, err := GetBlock(ctx, s, tip)
	if err != nil {
		return nil, errors.Wrap(err, "loading tip")
	}

	if b.ChainID != id {
		return nil, errors.Wrapf(ErrChainMismatch, "tip belongs to %s", b.ChainID)
	}

	return newTree(id, s, tip, b.Height), nil
}

func (t *ChainTree) ID() string {
	return t.id
}

func (t *ChainTree) Store() storage.ContentStore {
	return t.store
}

// Tip returns the last confirmed block CID this handle has observed
func (t *ChainTree) Tip() cid.Cid {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.tip
}

func (t *ChainTree) Height() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.height
}

// Resolve reads path from the state at the current tip
func (t *ChainTree) Resolve(ctx context.Context, path []string) (dag.Result, error) {
	return ResolveAt(ctx, t.store, t.Tip(), path)
}

// Owners returns the owner list recorded in state, or nil when ownership has
// never been transferred and the creator is still the implicit owner
func (t *ChainTree) Owners(ctx context.Context) ([]string, error) {
	return OwnersAt(ctx, t.store, t.Tip())
}

// ResolveAt reads path from the state of an arbitrary block
func ResolveAt(ctx context.Context, s storage.ContentStore, tip cid.Cid, path []string) (dag.Result, error) {
	if !tip.Defined() {
		return dag.Unresolved, nil
	}

	b, err := GetBlock(ctx, s, tip)
	if err != nil {
		return dag.Unresolved, errors.Wrap(err, "loading block")
	}

	return dag.Resolve(ctx, s, b.State(), path)
}

// OwnersAt returns the explicit owner list in the state of tip
func OwnersAt(ctx context.Context, s storage.ContentStore, tip cid.Cid) ([]string, error) {
	res, err := ResolveAt(ctx, s, tip, tx.OwnersPath)
	if err != nil {
		return nil, err
	}

	if !res.Complete() {
		return nil, nil
	}

	list, ok := res.Value.([]interface{})
	if !ok {
		return nil, errors.Errorf("malformed owners %T", res.Value)
	}

	owners := make([]string, 0, len(list))
	for _, o := range list {
		if s, ok := o.(string); ok {
			owners = append(owners, s)
		}
	}

	return owners, nil
}

// IsOwner reports whether address may sign blocks on top of tip
func IsOwner(ctx context.Context, s storage.ContentStore, chainID string, tip cid.Cid, address string) (bool, error) {
	owners, err := OwnersAt(ctx, s, tip)
	if err != nil {
		return false, err
	}

	if owners == nil {
		id, err := DeriveID(address)
		if err != nil {
			return false, nil
		}
		return id == chainID, nil
	}

	for _, o := range owners {
		if o == address {
			return true, nil
		}
	}

	return false, nil
}

// Advance moves the tree onto a newly confirmed tip. Heights only ever move
// forward by one.
func (t *ChainTree) Advance(tip cid.Cid, height uint64) error {
	if !tip.Defined() {
		return errors.Wrap(storage.ErrInvalidCID, "advancing tree")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if height != t.height+1 {
		return errors.Wrapf(ErrHeight, "at %d, got %d", t.height, height)
	}

	t.tip = tip
	t.height = height

	return nil
}

// Reset moves the tree onto an authoritative tip which may be several blocks
// ahead. The tip block must be available in the tree's store.
func (t *ChainTree) Reset(ctx context.Context, tip cid.Cid) error {
	height := uint64(0)

	if !tip.Equals(GenesisCID()) {
		b, err := GetBlock(ctx, t.store, tip)
		if err != nil {
			return errors.Wrap(err, "loading tip")
		}
		if b.ChainID != t.id {
			return errors.Wrapf(ErrChainMismatch, "tip belongs to %s", b.ChainID)
		}
		height = b.Height
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if height < t.height {
		return errors.Wrapf(ErrHeight, "refusing to move back from %d to %d", t.height, height)
	}

	t.tip = tip
	t.height = height

	return nil
}

// Acquire reserves the tree's single submission slot until release is
// called or ctx ends
func (t *ChainTree) Acquire(ctx context.Context) (release func(), err error) {
	select {
	case t.inflight <- struct{}{}:
		return func() { <-t.inflight }, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "waiting for in-flight submission")
	}
}
