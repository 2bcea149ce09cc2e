package client

import (
	"context"
	"crypto/rand"
	"sync"
	"testing"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/chaintree/pkg/chaintree"
	"github.com/tcfw/chaintree/pkg/identity"
	"github.com/tcfw/chaintree/pkg/notary"
	"github.com/tcfw/chaintree/pkg/notary/mocks"
	"github.com/tcfw/chaintree/pkg/storage"
	"github.com/tcfw/chaintree/pkg/tx"
)

var _ notary.Group = (*mocks.Group)(nil)

type harness struct {
	group   *notary.LocalGroup
	signers []*notary.Signer
	owner   identity.PrivateIdentity
	pub     *identity.PublicIdentity
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	signers, err := notary.NewDevnetSigners(t.Name(), 4)
	require.NoError(t, err)

	g, err := notary.NewLocalGroup(storage.NewMemStore(), signers)
	require.NoError(t, err)

	owner, err := identity.Generate(identity.KeyTypeEd25519, rand.Reader)
	require.NoError(t, err)

	pub, err := owner.PublicIdentity()
	require.NoError(t, err)

	return &harness{group: g, signers: signers, owner: owner, pub: pub}
}

func (h *harness) newTree(t *testing.T) *chaintree.ChainTree {
	t.Helper()

	tree, err := chaintree.NewEmpty(context.Background(), storage.NewMemStore(), h.pub)
	require.NoError(t, err)

	return tree
}

// handle opens another local view of the same tree with its own store
func (h *harness) handle(t *testing.T, tree *chaintree.ChainTree) *chaintree.ChainTree {
	t.Helper()

	other, err := chaintree.Load(context.Background(), storage.NewMemStore(), tree.ID(), chaintree.GenesisCID())
	require.NoError(t, err)

	return other
}

func setData(t *testing.T, path string, v interface{}, opts ...tx.Option) *tx.Transaction {
	t.Helper()

	txn, err := tx.NewSetData(path, v, opts...)
	require.NoError(t, err)

	return txn
}

func resolve(t *testing.T, tree *chaintree.ChainTree, path ...string) interface{} {
	t.Helper()

	res, err := tree.Resolve(context.Background(), path)
	require.NoError(t, err)
	require.True(t, res.Complete(), "resolving %v", path)

	return res.Value
}

func TestPlayTransactionsWriteThenRead(t *testing.T) {
	h := newHarness(t)
	c := New(h.group)
	tree := h.newTree(t)
	ctx := context.Background()

	res, err := tree.Resolve(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.False(t, res.Resolved())

	conf, err := c.PlayTransactions(ctx, tree, h.owner, []*tx.Transaction{setData(t, "a/b", 5)})
	require.NoError(t, err)

	assert.EqualValues(t, 5, resolve(t, tree, "a", "b"))
	assert.Equal(t, uint64(1), tree.Height())
	assert.Equal(t, conf.NewTip, tree.Tip())

	tip, err := c.GetTip(ctx, tree.ID())
	require.NoError(t, err)
	assert.Equal(t, tree.Tip(), tip)
}

func TestGetTipGenesis(t *testing.T) {
	h := newHarness(t)
	c := New(h.group)
	tree := h.newTree(t)

	tip, err := c.GetTip(context.Background(), tree.ID())
	require.NoError(t, err)
	assert.Equal(t, chaintree.GenesisCID(), tip)
}

func TestHeightMonotonic(t *testing.T) {
	h := newHarness(t)
	tips := storage.NewMemStore()
	c := New(h.group, WithTipCache(tips))
	tree := h.newTree(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := c.PlayTransactions(ctx, tree, h.owner, []*tx.Transaction{setData(t, "n", i)})
		require.NoError(t, err)
		assert.Equal(t, uint64(i), tree.Height())
	}

	assert.EqualValues(t, 5, resolve(t, tree, "n"))

	cached, err := tips.GetTip(ctx, tree.ID())
	require.NoError(t, err)
	assert.Equal(t, tree.Tip(), cached)
}

func TestConcurrentHandlesConflict(t *testing.T) {
	h := newHarness(t)
	c := New(h.group)
	tree := h.newTree(t)

	handles := []*chaintree.ChainTree{tree, h.handle(t, tree), h.handle(t, tree)}
	attempts := make([]*Attempt, len(handles))
	for i, hd := range handles {
		attempts[i] = c.NewAttempt(hd, h.owner, []*tx.Transaction{setData(t, "k", i)})
	}

	var wg sync.WaitGroup
	for _, a := range attempts {
		wg.Add(1)
		go func(a *Attempt) {
			defer wg.Done()
			a.Run(context.Background())
		}(a)
	}
	wg.Wait()

	confirmed := 0
	for i, a := range attempts {
		switch a.State() {
		case StateConfirmed:
			confirmed++
			assert.Equal(t, uint64(1), handles[i].Height())
		case StateConflicted:
			assert.ErrorIs(t, a.Err(), notary.ErrConflict)
			assert.Equal(t, chaintree.GenesisCID(), handles[i].Tip())
		default:
			t.Fatalf("unexpected state %s", a.State())
		}
	}

	assert.Equal(t, 1, confirmed)
}

func TestAttemptNotReusable(t *testing.T) {
	h := newHarness(t)
	c := New(h.group)
	tree := h.newTree(t)

	a := c.NewAttempt(tree, h.owner, []*tx.Transaction{setData(t, "a", 1)})
	assert.Equal(t, StateBuilding, a.State())

	_, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, a.State())
	assert.NotNil(t, a.Confirmation())

	_, err = a.Run(context.Background())
	assert.ErrorIs(t, err, ErrAttemptDone)
	assert.Equal(t, uint64(1), tree.Height())
}

func TestTimeoutThenIdenticalResubmit(t *testing.T) {
	h := newHarness(t)
	c := New(h.group, WithTimeout(50*time.Millisecond))
	tree := h.newTree(t)

	for _, s := range h.signers[:2] {
		s.SetFault(notary.FaultOffline, 0)
	}

	a := c.NewAttempt(tree, h.owner, []*tx.Transaction{setData(t, "a", 1)})
	_, err := a.Run(context.Background())
	assert.ErrorIs(t, err, notary.ErrTimeout)
	assert.Equal(t, StateTimedOut, a.State())
	assert.Equal(t, chaintree.GenesisCID(), tree.Tip())

	for _, s := range h.signers[:2] {
		s.SetFault(notary.FaultNone, 0)
	}

	cand := a.Candidate()
	require.NotNil(t, cand)

	retry := c.Resubmit(tree, h.owner, cand)
	conf, err := retry.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, cand.ID, conf.NewTip)
	assert.Equal(t, cand.ID, tree.Tip())
}

func TestStaleExpectedTipSkipsNotary(t *testing.T) {
	h := newHarness(t)
	g := mocks.NewGroup(t)
	c := New(g)
	tree := h.newTree(t)

	other, err := storage.Sum([]byte("other tip"))
	require.NoError(t, err)

	a := c.NewAttempt(tree, h.owner, []*tx.Transaction{setData(t, "a", 1, tx.WithExpectedParentTip(other))})
	_, err = a.Run(context.Background())

	assert.ErrorIs(t, err, notary.ErrConflict)
	assert.Equal(t, StateConflicted, a.State())
	g.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestBadConfirmationRejected(t *testing.T) {
	h := newHarness(t)
	g := mocks.NewGroup(t)
	c := New(g)
	tree := h.newTree(t)

	g.On("Submit", mock.Anything, mock.Anything).Return(func(_ context.Context, sub *notary.Submission) *notary.Confirmation {
		id, _ := sub.BlockID()
		return &notary.Confirmation{ChainID: sub.ChainID, NewTip: id, Height: 1}
	}, nil)
	g.On("Signers").Return(h.group.Signers())
	g.On("Threshold").Return(h.group.Threshold())

	a := c.NewAttempt(tree, h.owner, []*tx.Transaction{setData(t, "a", 1)})
	_, err := a.Run(context.Background())

	assert.ErrorIs(t, err, notary.ErrInvalidConfirmation)
	assert.Equal(t, StateRejected, a.State())
	assert.Equal(t, uint64(0), tree.Height())
}

func TestTransportErrorIsTimeout(t *testing.T) {
	h := newHarness(t)
	g := mocks.NewGroup(t)
	c := New(g)
	tree := h.newTree(t)

	g.On("Submit", mock.Anything, mock.Anything).Return(nil, errors.New("connection reset"))

	a := c.NewAttempt(tree, h.owner, []*tx.Transaction{setData(t, "a", 1)})
	_, err := a.Run(context.Background())

	assert.ErrorIs(t, err, notary.ErrTimeout)
	assert.Equal(t, StateTimedOut, a.State())
}

func TestRejectedByQuorum(t *testing.T) {
	h := newHarness(t)
	c := New(h.group)
	tree := h.newTree(t)

	stranger, err := identity.Generate(identity.KeyTypeEd25519, rand.Reader)
	require.NoError(t, err)

	a := c.NewAttempt(tree, stranger, []*tx.Transaction{setData(t, "a", 1)})
	_, err = a.Run(context.Background())

	assert.ErrorIs(t, err, notary.ErrRejected)
	assert.Equal(t, StateRejected, a.State())
	assert.Equal(t, chaintree.GenesisCID(), tree.Tip())
}

func TestGetTipPassesErrors(t *testing.T) {
	g := mocks.NewGroup(t)
	c := New(g)

	g.On("GetTip", mock.Anything, "did:chaintree:x").Return(cid.Undef, errors.New("unreachable"))

	_, err := c.GetTip(context.Background(), "did:chaintree:x")
	assert.Error(t, err)
}

func TestTrustedSignersOverrideGroup(t *testing.T) {
	h := newHarness(t)
	tree := h.newTree(t)

	rogue, err := notary.NewDevnetSigners("rogue", 4)
	require.NoError(t, err)

	impostor, err := notary.NewLocalGroup(storage.NewMemStore(), rogue)
	require.NoError(t, err)

	c := New(impostor, WithSigners(h.group.Signers()), WithThreshold(h.group.Threshold()))

	a := c.NewAttempt(tree, h.owner, []*tx.Transaction{setData(t, "a", 1)})
	_, err = a.Run(context.Background())

	assert.ErrorIs(t, err, notary.ErrUnknownSigner)
	assert.Equal(t, StateRejected, a.State())
	assert.Equal(t, chaintree.GenesisCID(), tree.Tip())

	strict := New(h.group, WithThreshold(len(h.signers)))
	h.signers[0].SetFault(notary.FaultOffline, 0)
	defer h.signers[0].SetFault(notary.FaultNone, 0)

	a = strict.NewAttempt(tree, h.owner, []*tx.Transaction{setData(t, "a", 1)})
	_, err = a.Run(context.Background())

	assert.ErrorIs(t, err, notary.ErrInvalidConfirmation)
	assert.Equal(t, StateRejected, a.State())
}
