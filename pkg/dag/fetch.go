package dag

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/storage"
)

// Fetch reads every node reachable from root through s. Used with a
// storage.FallbackStore it pulls a remote state into the local store.
func Fetch(ctx context.Context, s storage.ContentStore, root cid.Cid) error {
	if !root.Defined() {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	n, err := LoadNode(ctx, s, root)
	if err != nil {
		return errors.Wrapf(err, "fetching node %s", root)
	}

	for k := range n.Links {
		c, ok := n.Link(k)
		if !ok {
			return errors.Wrapf(storage.ErrInvalidCID, "link %s", k)
		}
		if err := Fetch(ctx, s, c); err != nil {
			return err
		}
	}

	return nil
}
