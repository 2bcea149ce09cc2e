package client

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tcfw/chaintree/pkg/notary"
	"github.com/tcfw/chaintree/pkg/storage"
)

type Option func(*Client)

// WithTimeout bounds each submission to the notary group
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithTipCache records confirmed tips locally
func WithTipCache(s storage.TipStore) Option {
	return func(c *Client) {
		c.tips = s
	}
}

// WithSigners pins the signer keys confirmations are checked against instead
// of asking the group
func WithSigners(set notary.SignerSet) Option {
	return func(c *Client) {
		c.signers = make(notary.SignerSet, len(set))
		for id, pk := range set {
			c.signers[id] = pk
		}
	}
}

// WithThreshold pins the number of signatures a confirmation needs
func WithThreshold(n int) Option {
	return func(c *Client) {
		c.threshold = n
	}
}

func WithLogger(l *logrus.Entry) Option {
	return func(c *Client) {
		c.logger = l
	}
}

type ReconcilerOption func(*Reconciler)

// WithMaxAttempts caps how many attempts Play makes
func WithMaxAttempts(n int) ReconcilerOption {
	return func(r *Reconciler) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

func WithBackoff(min, max time.Duration) ReconcilerOption {
	return func(r *Reconciler) {
		r.backoffMin = min
		r.backoffMax = max
	}
}

// WithRemoteBlocks adds stores that blocks and state committed by other
// writers can be fetched from
func WithRemoteBlocks(s ...storage.ContentStore) ReconcilerOption {
	return func(r *Reconciler) {
		r.remotes = append(r.remotes, s...)
	}
}
