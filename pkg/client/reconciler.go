package client

import (
	"context"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/jpillora/backoff"
	"github.com/pkg/errors"
	"github.com/tcfw/chaintree/pkg/chaintree"
	"github.com/tcfw/chaintree/pkg/dag"
	"github.com/tcfw/chaintree/pkg/identity"
	"github.com/tcfw/chaintree/pkg/notary"
	"github.com/tcfw/chaintree/pkg/storage"
	"github.com/tcfw/chaintree/pkg/tx"
)

const (
	defaultMaxAttempts = 3
	defaultBackoffMin  = 100 * time.Millisecond
	defaultBackoffMax  = 5 * time.Second
)

// BuildFunc produces the transactions to play on the tree's current state.
// It is called again after every conflict and may return ErrAbort.
type BuildFunc func(ctx context.Context, tree *chaintree.ChainTree) ([]*tx.Transaction, error)

// Reconciler retries submissions until one is confirmed. Conflicts refresh
// the tree and rebuild, timeouts resubmit the identical block.
type Reconciler struct {
	client  *Client
	remotes []storage.ContentStore

	maxAttempts int
	backoffMin  time.Duration
	backoffMax  time.Duration
}

func NewReconciler(c *Client, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		client:      c,
		maxAttempts: defaultMaxAttempts,
		backoffMin:  defaultBackoffMin,
		backoffMax:  defaultBackoffMax,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Refresh moves tree onto the authoritative tip, pulling the blocks and
// state it is missing from the remote stores
func (r *Reconciler) Refresh(ctx context.Context, tree *chaintree.ChainTree) error {
	tip, err := r.client.GetTip(ctx, tree.ID())
	if err != nil {
		return err
	}

	if tip.Equals(tree.Tip()) {
		return nil
	}

	blocks := storage.NewFallbackStore(tree.Store(), r.remotes...)

	if err := r.pull(ctx, blocks, tree.Tip(), tip); err != nil {
		return err
	}

	return tree.Reset(ctx, tip)
}

// pull copies blocks from tip back to known into the first store of blocks,
// along with the full state of tip
func (r *Reconciler) pull(ctx context.Context, blocks *storage.FallbackStore, known, tip cid.Cid) error {
	b, err := chaintree.GetBlock(ctx, blocks, tip)
	if err != nil {
		return errors.Wrap(err, "fetching tip")
	}

	if err := dag.Fetch(ctx, blocks, b.State()); err != nil {
		return errors.Wrap(err, "fetching state")
	}

	genesis := chaintree.GenesisCID()

	for cur := b.Parent(); cur.Defined() && !cur.Equals(known) && !cur.Equals(genesis); {
		pb, err := chaintree.GetBlock(ctx, blocks, cur)
		if err != nil {
			return errors.Wrapf(err, "fetching block %s", cur)
		}
		cur = pb.Parent()
	}

	return nil
}

// Play runs attempts until one is confirmed, an attempt is rejected, build
// aborts or the attempt budget runs out
func (r *Reconciler) Play(ctx context.Context, tree *chaintree.ChainTree, signer identity.PrivateIdentity, build BuildFunc) (*notary.Confirmation, error) {
	b := &backoff.Backoff{
		Min:    r.backoffMin,
		Max:    r.backoffMax,
		Factor: 2,
		Jitter: true,
	}

	var (
		pending *chaintree.Candidate
		stale   bool
		lastErr error
	)

	l := r.client.logger.WithField("chain", tree.ID())

	for i := 0; i < r.maxAttempts; i++ {
		if i > 0 {
			select {
			case <-time.After(b.Duration()):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		var a *Attempt

		if pending != nil {
			a = r.client.Resubmit(tree, signer, pending)
		} else {
			if stale {
				if err := r.Refresh(ctx, tree); err != nil {
					lastErr = err
					l.WithError(err).Warn("refreshing tip")
					continue
				}
			}

			txs, err := build(ctx, tree)
			if err != nil {
				return nil, err
			}

			a = r.client.NewAttempt(tree, signer, txs)
		}

		conf, err := a.Run(ctx)

		switch a.State() {
		case StateConfirmed:
			return conf, err
		case StateConflicted:
			l.WithField("attempt", i+1).Debug("conflict, rebuilding")
			pending, stale = nil, true
		case StateTimedOut:
			l.WithField("attempt", i+1).Debug("timed out, resubmitting")
			pending = a.Candidate()
		default:
			return nil, err
		}

		lastErr = err
	}

	return nil, &ExhaustedError{Attempts: r.maxAttempts, Last: lastErr}
}
