package notary

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/chaintree"
)

// validate replays the submitted block on top of parent and checks that it
// reproduces the claimed state, and that an owner signed it
func (g *LocalGroup) validate(ctx context.Context, sub *Submission, parent, blockID cid.Cid) (*chaintree.Block, error) {
	if !chaintree.ValidID(sub.ChainID) {
		return nil, errors.Errorf("invalid chain id %q", sub.ChainID)
	}

	b := &chaintree.Block{}
	if err := b.Unmarshal(sub.Block); err != nil {
		return nil, err
	}

	if b.ChainID != sub.ChainID {
		return nil, errors.Wrapf(chaintree.ErrChainMismatch, "block for %s", b.ChainID)
	}

	if !b.Parent().Equals(parent) {
		return nil, errors.New("block parent does not match submission parent")
	}

	pb, err := chaintree.GetBlock(ctx, g.store, parent)
	if err != nil {
		return nil, errors.Wrap(err, "loading parent")
	}

	if b.Height != pb.Height+1 {
		return nil, errors.Wrapf(chaintree.ErrHeight, "parent at %d, block at %d", pb.Height, b.Height)
	}

	signer, err := sub.Signer()
	if err != nil {
		return nil, errors.Wrap(err, "owner signature")
	}

	owner, err := chaintree.IsOwner(ctx, g.store, sub.ChainID, parent, signer.Address)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, errors.Errorf("%s is not an owner", signer.Address)
	}

	for _, n := range sub.Nodes {
		if _, err := g.store.Put(ctx, n); err != nil {
			return nil, errors.Wrap(err, "storing state node")
		}
	}

	cand, err := chaintree.BuildCandidate(ctx, g.store, sub.ChainID, parent, b.Transactions)
	if err != nil {
		return nil, err
	}

	// the replayed encoding must hash to the submitted block exactly
	if !cand.ID.Equals(blockID) {
		return nil, errors.Errorf("replay produced %s", cand.ID)
	}

	return b, nil
}
