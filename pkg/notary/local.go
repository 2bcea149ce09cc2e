package notary

import (
	"context"
	"sort"
	"sync"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/chaintree/internal/utils/logging"
	"github.com/tcfw/chaintree/pkg/chaintree"
	"github.com/tcfw/chaintree/pkg/storage"
)

var (
	_ Group = (*LocalGroup)(nil)
)

// LocalGroup runs a whole notary group in process. Submissions for the same
// chain are serialized so the parent tip check and the commit are atomic.
type LocalGroup struct {
	logger *logrus.Entry

	store     storage.Store
	signers   []*Signer
	set       SignerSet
	threshold int

	chainMu sync.Mutex
	chains  map[string]chan struct{}

	confMu        sync.RWMutex
	confirmations map[string]*Confirmation
}

func NewLocalGroup(store storage.Store, signers []*Signer, opts ...Option) (*LocalGroup, error) {
	if len(signers) == 0 {
		return nil, errors.New("at least one signer is required")
	}

	g := &LocalGroup{
		logger:        logging.Entry().WithField("component", "notary"),
		store:         store,
		signers:       signers,
		set:           make(SignerSet, len(signers)),
		threshold:     DefaultThreshold(len(signers)),
		chains:        make(map[string]chan struct{}),
		confirmations: make(map[string]*Confirmation),
	}

	for _, s := range signers {
		if _, dup := g.set[s.ID()]; dup {
			return nil, errors.Errorf("duplicate signer %s", s.ID())
		}
		g.set[s.ID()] = s.PublicKey()
	}

	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}

	if _, err := store.Put(context.Background(), chaintree.GenesisBytes()); err != nil {
		return nil, errors.Wrap(err, "storing genesis")
	}

	return g, nil
}

func (g *LocalGroup) Signers() SignerSet {
	set := make(SignerSet, len(g.set))
	for id, pk := range g.set {
		set[id] = pk
	}

	return set
}

func (g *LocalGroup) Threshold() int {
	return g.threshold
}

// Blocks exposes the group's content store so clients can fetch blocks and
// state committed by other writers
func (g *LocalGroup) Blocks() storage.ContentStore {
	return g.store
}

func (g *LocalGroup) GetTip(ctx context.Context, chainID string) (cid.Cid, error) {
	return g.store.GetTip(ctx, chainID)
}

func (g *LocalGroup) Submit(ctx context.Context, sub *Submission) (*Confirmation, error) {
	if sub == nil {
		return nil, errors.Wrap(ErrRejected, "empty submission")
	}

	blockID, err := sub.BlockID()
	if err != nil {
		return nil, errors.Wrapf(ErrRejected, "hashing block: %s", err)
	}

	parent, err := sub.ParentTip()
	if err != nil {
		return nil, errors.Wrapf(ErrRejected, "parent: %s", err)
	}

	l := g.logger.WithFields(logrus.Fields{"chain": sub.ChainID, "block": blockID})

	unlock, err := g.lockChain(ctx, sub.ChainID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tip, err := g.currentTip(ctx, sub.ChainID)
	if err != nil {
		return nil, err
	}

	if tip.Equals(blockID) {
		if c := g.confirmation(blockID); c != nil {
			l.Debug("block already committed")
			return c, nil
		}
	}

	if !tip.Equals(parent) {
		l.WithField("tip", tip).Debug("conflicting parent")
		return nil, &ConflictError{Tip: tip}
	}

	b, err := g.validate(ctx, sub, parent, blockID)
	if err != nil {
		l.WithError(err).Info("rejecting block")
		return nil, errors.Wrap(ErrRejected, err.Error())
	}

	conf, err := g.collect(ctx, &VoteRequest{ChainID: sub.ChainID, Tip: blockID, Height: b.Height})
	if err != nil {
		l.WithError(err).Info("no quorum")
		return nil, err
	}

	if _, err := g.store.Put(ctx, sub.Block); err != nil {
		return nil, errors.Wrap(err, "storing block")
	}

	if err := g.store.SetTip(ctx, sub.ChainID, blockID); err != nil {
		return nil, errors.Wrap(err, "committing tip")
	}

	g.confMu.Lock()
	g.confirmations[blockID.KeyString()] = conf
	g.confMu.Unlock()

	l.WithField("height", b.Height).Info("committed block")

	return conf, nil
}

func (g *LocalGroup) confirmation(id cid.Cid) *Confirmation {
	g.confMu.RLock()
	defer g.confMu.RUnlock()

	return g.confirmations[id.KeyString()]
}

func (g *LocalGroup) currentTip(ctx context.Context, chainID string) (cid.Cid, error) {
	tip, err := g.store.GetTip(ctx, chainID)
	if storage.IsNotFound(err) {
		return chaintree.GenesisCID(), nil
	} else if err != nil {
		return cid.Undef, errors.Wrap(err, "getting tip")
	}

	return tip, nil
}

func (g *LocalGroup) lockChain(ctx context.Context, chainID string) (func(), error) {
	g.chainMu.Lock()
	ch, ok := g.chains[chainID]
	if !ok {
		ch = make(chan struct{}, 1)
		g.chains[chainID] = ch
	}
	g.chainMu.Unlock()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ErrTimeout, ctx.Err().Error())
	}
}

type vote struct {
	signer string
	sig    []byte
	err    error
}

// collect fans the vote out to every signer and returns once threshold
// signatures are in
func (g *LocalGroup) collect(ctx context.Context, req *VoteRequest) (*Confirmation, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	votes := make(chan vote, len(g.signers))
	for _, s := range g.signers {
		go func(s *Signer) {
			sig, err := s.Vote(ctx, req)
			votes <- vote{signer: s.ID(), sig: sig, err: err}
		}(s)
	}

	conf := &Confirmation{ChainID: req.ChainID, NewTip: req.Tip, Height: req.Height}
	refused := 0

	for range g.signers {
		select {
		case v := <-votes:
			if v.err != nil {
				g.logger.WithError(v.err).WithField("signer", v.signer).Debug("vote failed")
				if errors.Is(v.err, ErrVoteRefused) {
					refused++
				}
				if len(g.signers)-refused < g.threshold {
					return nil, errors.Wrapf(ErrRejected, "%d of %d signers refused", refused, len(g.signers))
				}
				continue
			}

			conf.Signatures = append(conf.Signatures, Signature{SignerID: v.signer, Signature: v.sig})
			if len(conf.Signatures) >= g.threshold {
				sort.Slice(conf.Signatures, func(i, j int) bool {
					return conf.Signatures[i].SignerID < conf.Signatures[j].SignerID
				})
				return conf, nil
			}
		case <-ctx.Done():
			return nil, errors.Wrapf(ErrTimeout, "%d of %d votes", len(conf.Signatures), g.threshold)
		}
	}

	return nil, errors.Wrapf(ErrTimeout, "%d of %d votes", len(conf.Signatures), g.threshold)
}
