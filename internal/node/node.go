package node

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/chaintree/internal/config"
	"github.com/tcfw/chaintree/internal/wallet"
	"github.com/tcfw/chaintree/pkg/chaintree"
	"github.com/tcfw/chaintree/pkg/client"
	"github.com/tcfw/chaintree/pkg/cryptography"
	"github.com/tcfw/chaintree/pkg/identity"
	"github.com/tcfw/chaintree/pkg/notary"
	"github.com/tcfw/chaintree/pkg/resolver"
	"github.com/tcfw/chaintree/pkg/storage"
)

// Node bundles a local store, an in process devnet notary group and the
// client talking to it
type Node struct {
	cfg    *config.Config
	logger *logrus.Logger

	local       storage.Store
	notaryStore storage.Store
	content     storage.ContentStore

	group      *notary.LocalGroup
	trusted    notary.SignerSet
	threshold  int
	client     *client.Client
	reconciler *client.Reconciler
	wallet     *wallet.FileStore
	resolver   *resolver.Resolver
}

func NewNode(ctx context.Context, opts ...NodeOption) (*Node, error) {
	n := &Node{}

	for _, opt := range opts {
		if err := opt(n); err != nil {
			return nil, err
		}
	}

	if n.logger == nil {
		n.logger = logrus.StandardLogger()
	}

	if n.cfg == nil {
		cfg, err := config.GetConfig()
		if err != nil {
			return nil, err
		}
		n.cfg = cfg
	}

	if err := n.setupStorage(); err != nil {
		n.Close()
		return nil, errors.Wrap(err, "initing storage")
	}

	if err := n.setupNotary(); err != nil {
		n.Close()
		return nil, errors.Wrap(err, "initing notary group")
	}

	if n.wallet == nil {
		w, err := wallet.NewFileStore(n.cfg.Wallet().Path)
		if err != nil {
			n.Close()
			return nil, errors.Wrap(err, "opening wallet")
		}
		n.wallet = w
	}

	var ropts []resolver.Option
	if srv := n.cfg.Resolver().Server; srv != "" {
		ropts = append(ropts, resolver.WithServer(srv))
	}
	n.resolver = resolver.New(ropts...)

	ccfg := n.cfg.Client()
	entry := n.logger.WithField("component", "client")

	n.client = client.New(n.group,
		client.WithTimeout(ccfg.Timeout),
		client.WithSigners(n.trusted),
		client.WithThreshold(n.threshold),
		client.WithTipCache(n.local),
		client.WithLogger(entry),
	)

	n.reconciler = client.NewReconciler(n.client,
		client.WithMaxAttempts(ccfg.Retries),
		client.WithBackoff(ccfg.BackoffMin, ccfg.BackoffMax),
		client.WithRemoteBlocks(n.group.Blocks()),
	)

	return n, nil
}

func (n *Node) setupStorage() error {
	scfg := n.cfg.Storage()

	if n.local == nil {
		s, err := openStore(scfg, "local")
		if err != nil {
			return err
		}
		n.local = s
	}

	if n.notaryStore == nil {
		s, err := openStore(scfg, "notary")
		if err != nil {
			return err
		}
		n.notaryStore = s
	}

	n.content = n.local
	if scfg.CacheSize > 0 {
		cached, err := storage.NewCachedStore(n.local, scfg.CacheSize)
		if err != nil {
			return err
		}
		n.content = cached
	}

	return nil
}

func (n *Node) setupNotary() error {
	ncfg := n.cfg.Notary()

	var (
		signers []*notary.Signer
		err     error
	)

	if len(ncfg.Keys) > 0 {
		for _, k := range ncfg.Keys {
			raw, err := cryptography.DecodeMultibase(k)
			if err != nil {
				return errors.Wrap(err, "decoding notary key")
			}

			sk, err := cryptography.NewBls12381PrivateKeyFromBytes(raw)
			if err != nil {
				return err
			}

			s, err := notary.NewSigner(sk)
			if err != nil {
				return err
			}
			signers = append(signers, s)
		}
	} else {
		signers, err = notary.NewDevnetSigners(ncfg.Seed, ncfg.Signers)
		if err != nil {
			return err
		}
	}

	opts := []notary.Option{notary.WithLogger(n.logger.WithField("component", "notary"))}
	if ncfg.Threshold > 0 {
		opts = append(opts, notary.WithThreshold(ncfg.Threshold))
	}

	n.group, err = notary.NewLocalGroup(n.notaryStore, signers, opts...)
	if err != nil {
		return err
	}

	n.trusted = make(notary.SignerSet, len(signers))
	for _, s := range signers {
		n.trusted[s.ID()] = s.PublicKey()
	}

	n.threshold = ncfg.Threshold
	if n.threshold == 0 {
		n.threshold = notary.DefaultThreshold(len(signers))
	}

	return nil
}

func (n *Node) Client() *client.Client {
	return n.client
}

func (n *Node) Reconciler() *client.Reconciler {
	return n.reconciler
}

func (n *Node) Wallet() *wallet.FileStore {
	return n.wallet
}

func (n *Node) Group() *notary.LocalGroup {
	return n.group
}

// treeStore reads locally first and falls back to the notary group's blocks
func (n *Node) treeStore() storage.ContentStore {
	return storage.NewFallbackStore(n.content, n.group.Blocks())
}

// CreateTree creates a tree owned by the named wallet identity
func (n *Node) CreateTree(ctx context.Context, name string) (*chaintree.ChainTree, error) {
	id, err := n.wallet.Find(name)
	if err != nil {
		return nil, err
	}

	pub, err := id.PublicIdentity()
	if err != nil {
		return nil, err
	}

	tree, err := chaintree.NewEmpty(ctx, n.treeStore(), pub)
	if err != nil {
		return nil, err
	}

	if err := n.wallet.AddChain(name, tree.ID()); err != nil {
		return nil, err
	}

	n.logger.WithField("chain", tree.ID()).Info("created chain tree")

	return tree, nil
}

// OpenTree loads a tree at its authoritative tip. ref is a chain tree ID or
// a did:dns name.
func (n *Node) OpenTree(ctx context.Context, ref string) (*chaintree.ChainTree, error) {
	chainID, err := n.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", ref)
	}

	tip, err := n.client.GetTip(ctx, chainID)
	if err != nil {
		return nil, err
	}

	return chaintree.Load(ctx, n.treeStore(), chainID, tip)
}

// Signer returns the wallet identity to sign with
func (n *Node) Signer(name string) (identity.PrivateIdentity, error) {
	return n.wallet.Find(name)
}

// LocalTip returns the last tip this node saw confirmed for chainID
func (n *Node) LocalTip(ctx context.Context, chainID string) (cid.Cid, error) {
	return n.local.GetTip(ctx, chainID)
}

func (n *Node) Close() error {
	var errs []error

	for _, s := range []storage.Store{n.local, n.notaryStore} {
		if s == nil {
			continue
		}
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Wrap(errs[0], "closing storage")
	}

	return nil
}
