package dag

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/storage"
)

// SetAt writes value at path below root and returns the new root. Only the
// nodes along path are rewritten; every other subtree is shared with the old
// root. An undefined root is treated as the empty state.
//
// Inline map values met along the way are promoted to nodes so their sibling
// keys survive; any other inline value in the way is replaced.
func SetAt(ctx context.Context, s storage.ContentStore, root cid.Cid, path []string, value interface{}) (cid.Cid, error) {
	if err := ValidatePath(path); err != nil {
		return cid.Undef, err
	}

	n, err := LoadNode(ctx, s, root)
	if err != nil {
		return cid.Undef, errors.Wrap(err, "loading node")
	}

	return setAt(ctx, s, n, path, value)
}

func setAt(ctx context.Context, s storage.ContentStore, n *Node, path []string, value interface{}) (cid.Cid, error) {
	head, rest := path[0], path[1:]

	if len(rest) == 0 {
		n.setValue(head, value)
		return PutNode(ctx, s, n)
	}

	var child *Node

	if c, ok := n.Link(head); ok {
		var err error
		child, err = LoadNode(ctx, s, c)
		if err != nil {
			return cid.Undef, errors.Wrapf(err, "loading child %s", head)
		}
	} else {
		child = NewNode()

		if m, ok := n.Values[head].(map[string]interface{}); ok {
			for k, v := range m {
				child.Values[k] = v
			}
		}
	}

	childID, err := setAt(ctx, s, child, rest, value)
	if err != nil {
		return cid.Undef, err
	}

	n.setLink(head, childID)

	return PutNode(ctx, s, n)
}
