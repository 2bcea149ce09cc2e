package chaintree

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/storage"
)

// WalkFunc is called for each block from the tip back to the first block
// after genesis. Returning ErrStopWalk ends the walk without error.
type WalkFunc func(id cid.Cid, b *Block) error

// History walks the tree's blocks newest first
func (t *ChainTree) History(ctx context.Context, fn WalkFunc) error {
	return Walk(ctx, t.store, t.Tip(), fn)
}

// Walk follows parent links from tip down to genesis
func Walk(ctx context.Context, s storage.ContentStore, tip cid.Cid, fn WalkFunc) error {
	gid := GenesisCID()
	cur := tip

	for cur.Defined() && !cur.Equals(gid) {
		if err := ctx.Err(); err != nil {
			return err
		}

		b, err := GetBlock(ctx, s, cur)
		if err != nil {
			return errors.Wrapf(err, "loading block %s", cur)
		}

		if err := fn(cur, b); err != nil {
			if errors.Is(err, ErrStopWalk) {
				return nil
			}
			return err
		}

		cur = b.Parent()
	}

	return nil
}

// FindTransaction returns the block that included txID. Block blooms are
// checked first so most blocks are skipped without hashing their
// transactions.
func (t *ChainTree) FindTransaction(ctx context.Context, txID cid.Cid) (cid.Cid, *Block, error) {
	var (
		foundID    cid.Cid
		foundBlock *Block
	)

	err := t.History(ctx, func(id cid.Cid, b *Block) error {
		if len(b.Bloom) != 0 {
			maybe, err := storage.BloomContains(b.Bloom, txID)
			if err != nil {
				return err
			}
			if !maybe {
				return nil
			}
		}

		ids, err := b.TransactionIDs()
		if err != nil {
			return err
		}

		for _, tid := range ids {
			if tid.Equals(txID) {
				foundID = id
				foundBlock = b
				return ErrStopWalk
			}
		}

		return nil
	})
	if err != nil {
		return cid.Undef, nil, err
	}

	if foundBlock == nil {
		return cid.Undef, nil, errors.Wrapf(storage.ErrNotFound, "transaction %s", txID)
	}

	return foundID, foundBlock, nil
}
