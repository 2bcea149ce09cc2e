package client

import (
	"context"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/chaintree/internal/utils/logging"
	"github.com/tcfw/chaintree/pkg/chaintree"
	"github.com/tcfw/chaintree/pkg/identity"
	"github.com/tcfw/chaintree/pkg/notary"
	"github.com/tcfw/chaintree/pkg/storage"
	"github.com/tcfw/chaintree/pkg/tx"
)

const (
	defaultTimeout = 10 * time.Second
)

// Client submits chain tree blocks to a notary group on behalf of an owner
type Client struct {
	logger *logrus.Entry

	group   notary.Group
	tips    storage.TipStore
	timeout time.Duration

	// trusted signers and quorum, the group's own view when unset
	signers   notary.SignerSet
	threshold int
}

func New(group notary.Group, opts ...Option) *Client {
	c := &Client{
		logger:  logging.Entry().WithField("component", "client"),
		group:   group,
		timeout: defaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Group() notary.Group {
	return c.group
}

// GetTip returns the authoritative tip of a chain. Chains nothing has been
// committed to are at genesis.
func (c *Client) GetTip(ctx context.Context, chainID string) (cid.Cid, error) {
	tip, err := c.group.GetTip(ctx, chainID)
	if storage.IsNotFound(err) {
		return chaintree.GenesisCID(), nil
	} else if err != nil {
		return cid.Undef, errors.Wrap(err, "getting tip")
	}

	return tip, nil
}

// NewAttempt prepares one submission of txs against the tree's current tip
func (c *Client) NewAttempt(tree *chaintree.ChainTree, signer identity.PrivateIdentity, txs []*tx.Transaction) *Attempt {
	return &Attempt{
		client: c,
		tree:   tree,
		signer: signer,
		txs:    txs,
	}
}

// Resubmit prepares an attempt for a candidate that was built before. The
// block, and so its CID, is identical to the earlier submission.
func (c *Client) Resubmit(tree *chaintree.ChainTree, signer identity.PrivateIdentity, cand *chaintree.Candidate) *Attempt {
	return &Attempt{
		client:    c,
		tree:      tree,
		signer:    signer,
		txs:       cand.Block.Transactions,
		candidate: cand,
	}
}

// PlayTransactions builds, submits and on confirmation applies txs. The
// tree only moves when the group confirms the block.
func (c *Client) PlayTransactions(ctx context.Context, tree *chaintree.ChainTree, signer identity.PrivateIdentity, txs []*tx.Transaction) (*notary.Confirmation, error) {
	return c.NewAttempt(tree, signer, txs).Run(ctx)
}

func (c *Client) verify(cand *chaintree.Candidate, conf *notary.Confirmation) error {
	if conf == nil {
		return errors.Wrap(notary.ErrInvalidConfirmation, "empty confirmation")
	}

	if !conf.NewTip.Equals(cand.ID) || conf.Height != cand.Height() || conf.ChainID != cand.ChainID {
		return errors.Wrapf(notary.ErrInvalidConfirmation, "confirms %s at %d", conf.NewTip, conf.Height)
	}

	signers := c.signers
	if signers == nil {
		signers = c.group.Signers()
	}

	threshold := c.threshold
	if threshold <= 0 {
		threshold = c.group.Threshold()
	}

	return conf.Verify(signers, threshold)
}

func (c *Client) commit(ctx context.Context, tree *chaintree.ChainTree, cand *chaintree.Candidate) error {
	if _, err := tree.Store().Put(ctx, cand.Bytes); err != nil {
		return errors.Wrap(err, "storing block")
	}

	if err := tree.Advance(cand.ID, cand.Height()); err != nil {
		return err
	}

	if c.tips != nil {
		if err := c.tips.SetTip(ctx, tree.ID(), cand.ID); err != nil {
			c.logger.WithError(err).Warn("caching tip")
		}
	}

	return nil
}
