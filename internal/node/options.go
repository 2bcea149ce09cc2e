package node

import (
	"github.com/sirupsen/logrus"
	"github.com/tcfw/chaintree/internal/config"
	"github.com/tcfw/chaintree/internal/wallet"
	"github.com/tcfw/chaintree/pkg/storage"
)

type NodeOption func(*Node) error

func WithConfig(c *config.Config) NodeOption {
	return func(n *Node) error {
		n.cfg = c
		return nil
	}
}

// WithStorage sets the local store and the store backing the devnet notary
// group instead of opening the configured backend
func WithStorage(local, notary storage.Store) NodeOption {
	return func(n *Node) error {
		n.local = local
		n.notaryStore = notary
		return nil
	}
}

func WithWallet(w *wallet.FileStore) NodeOption {
	return func(n *Node) error {
		n.wallet = w
		return nil
	}
}

func WithLogger(l *logrus.Logger) NodeOption {
	return func(n *Node) error {
		n.logger = l
		return nil
	}
}
