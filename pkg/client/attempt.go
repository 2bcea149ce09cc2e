package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tcfw/chaintree/pkg/chaintree"
	"github.com/tcfw/chaintree/pkg/identity"
	"github.com/tcfw/chaintree/pkg/notary"
	"github.com/tcfw/chaintree/pkg/tx"
)

type State uint8

const (
	StateBuilding State = iota
	StateSubmitted
	StateConfirmed
	StateRejected
	StateConflicted
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateSubmitted:
		return "submitted"
	case StateConfirmed:
		return "confirmed"
	case StateRejected:
		return "rejected"
	case StateConflicted:
		return "conflicted"
	case StateTimedOut:
		return "timed out"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

func (s State) Terminal() bool {
	return s >= StateConfirmed
}

// Attempt is a single try at getting a block confirmed. It moves from
// building to submitted to exactly one terminal state and is never reused.
type Attempt struct {
	client *Client
	tree   *chaintree.ChainTree
	signer identity.PrivateIdentity
	txs    []*tx.Transaction

	mu        sync.Mutex
	state     State
	running   bool
	candidate *chaintree.Candidate
	conf      *notary.Confirmation
	err       error
}

func (a *Attempt) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// Candidate is the block built for this attempt, nil until built
func (a *Attempt) Candidate() *chaintree.Candidate {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.candidate
}

func (a *Attempt) Confirmation() *notary.Confirmation {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.conf
}

func (a *Attempt) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.err
}

func (a *Attempt) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

func (a *Attempt) finish(s State, conf *notary.Confirmation, err error) (*notary.Confirmation, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.state = s
	a.conf = conf
	a.err = err

	return conf, err
}

// Run takes the tree's submission slot, builds the candidate if needed and
// submits it. The tree only advances on StateConfirmed.
func (a *Attempt) Run(ctx context.Context) (*notary.Confirmation, error) {
	a.mu.Lock()
	if a.running || a.state.Terminal() {
		a.mu.Unlock()
		return nil, ErrAttemptDone
	}
	a.running = true
	a.mu.Unlock()

	release, err := a.tree.Acquire(ctx)
	if err != nil {
		return a.finish(StateTimedOut, nil, errors.Wrap(notary.ErrTimeout, err.Error()))
	}
	defer release()

	l := a.client.logger.WithField("chain", a.tree.ID())

	cand := a.Candidate()
	if cand == nil {
		cand, err = a.tree.BuildCandidate(ctx, a.txs)
		switch {
		case errors.Is(err, chaintree.ErrStaleTransaction):
			return a.finish(StateConflicted, nil, &notary.ConflictError{Tip: a.tree.Tip()})
		case err != nil:
			return a.finish(StateRejected, nil, err)
		}

		a.mu.Lock()
		a.candidate = cand
		a.mu.Unlock()
	} else if !cand.Parent.Equals(a.tree.Tip()) {
		return a.finish(StateConflicted, nil, &notary.ConflictError{Tip: a.tree.Tip()})
	}

	l = l.WithFields(logrus.Fields{"block": cand.ID, "height": cand.Height()})

	sub, err := notary.NewSubmission(cand, a.signer)
	if err != nil {
		return a.finish(StateRejected, nil, err)
	}

	a.setState(StateSubmitted)

	sctx := ctx
	if a.client.timeout > 0 {
		var cancel context.CancelFunc
		sctx, cancel = context.WithTimeout(ctx, a.client.timeout)
		defer cancel()
	}

	conf, err := a.client.group.Submit(sctx, sub)
	switch {
	case err == nil:
	case errors.Is(err, notary.ErrConflict):
		l.WithError(err).Debug("conflict")
		return a.finish(StateConflicted, nil, err)
	case errors.Is(err, notary.ErrRejected):
		l.WithError(err).Info("rejected")
		return a.finish(StateRejected, nil, err)
	case errors.Is(err, notary.ErrTimeout):
		l.WithError(err).Info("timed out")
		return a.finish(StateTimedOut, nil, err)
	default:
		// transport failures leave the outcome unknown, same as a timeout
		l.WithError(err).Warn("submission failed")
		return a.finish(StateTimedOut, nil, errors.Wrap(notary.ErrTimeout, err.Error()))
	}

	if err := a.client.verify(cand, conf); err != nil {
		l.WithError(err).Warn("bad confirmation")
		return a.finish(StateRejected, nil, err)
	}

	if err := a.client.commit(ctx, a.tree, cand); err != nil {
		// the group has committed the block, a refresh will catch the tree up
		return a.finish(StateConfirmed, conf, errors.Wrap(err, "applying confirmed block"))
	}

	l.Debug("confirmed")

	return a.finish(StateConfirmed, conf, nil)
}
