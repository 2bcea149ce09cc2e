package chaintree

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/chaintree/pkg/dag"
	"github.com/tcfw/chaintree/pkg/identity"
	"github.com/tcfw/chaintree/pkg/storage"
	"github.com/tcfw/chaintree/pkg/tx"
)

func newOwner(t *testing.T) *identity.PublicIdentity {
	t.Helper()

	id, err := identity.Generate(identity.KeyTypeEd25519, rand.Reader)
	require.NoError(t, err)

	pub, err := id.PublicIdentity()
	require.NoError(t, err)

	return pub
}

func newTestTree(t *testing.T) (*ChainTree, *storage.MemStore, *identity.PublicIdentity) {
	t.Helper()

	s := storage.NewMemStore()
	owner := newOwner(t)

	tree, err := NewEmpty(context.Background(), s, owner)
	require.NoError(t, err)

	return tree, s, owner
}

func setData(t *testing.T, path string, v interface{}, opts ...tx.Option) *tx.Transaction {
	t.Helper()

	txn, err := tx.NewSetData(path, v, opts...)
	require.NoError(t, err)

	return txn
}

// commit stores a candidate and advances the tree the way a client does once
// a confirmation arrives
func commit(t *testing.T, tree *ChainTree, c *Candidate) {
	t.Helper()

	id, err := tree.Store().Put(context.Background(), c.Bytes)
	require.NoError(t, err)
	require.Equal(t, c.ID, id)

	require.NoError(t, tree.Advance(c.ID, c.Height()))
}

func TestNewEmpty(t *testing.T) {
	tree, _, owner := newTestTree(t)

	assert.True(t, ValidID(tree.ID()))
	assert.Equal(t, GenesisCID(), tree.Tip())
	assert.Equal(t, uint64(0), tree.Height())

	id, err := DeriveID(owner.Address)
	require.NoError(t, err)
	assert.Equal(t, id, tree.ID())

	res, err := tree.Resolve(context.Background(), []string{"anything"})
	require.NoError(t, err)
	assert.False(t, res.Resolved())
}

func TestDeriveIDDistinct(t *testing.T) {
	a, err := DeriveID("owner-a")
	require.NoError(t, err)
	b, err := DeriveID("owner-b")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)

	_, err = DeriveID("")
	assert.Error(t, err)

	assert.False(t, ValidID("did:other:abc"))
}

func TestBuildCandidateDoesNotMoveTip(t *testing.T) {
	tree, _, _ := newTestTree(t)
	ctx := context.Background()

	c, err := tree.BuildCandidate(ctx, []*tx.Transaction{setData(t, "a/b", 5)})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), c.Height())
	assert.Equal(t, GenesisCID(), c.Parent)
	assert.NotEmpty(t, c.Nodes)
	assert.Equal(t, GenesisCID(), tree.Tip())

	res, err := tree.Resolve(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.False(t, res.Resolved())

	commit(t, tree, c)

	res, err = tree.Resolve(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.True(t, res.Complete())
	assert.EqualValues(t, 5, res.Value)
	assert.Equal(t, uint64(1), tree.Height())
}

func TestBuildCandidateDeterministic(t *testing.T) {
	tree, _, _ := newTestTree(t)
	ctx := context.Background()

	txs := []*tx.Transaction{setData(t, "x", "y"), setData(t, "n", map[string]interface{}{"b": 1, "a": 2})}

	c1, err := tree.BuildCandidate(ctx, txs)
	require.NoError(t, err)
	c2, err := tree.BuildCandidate(ctx, txs)
	require.NoError(t, err)

	assert.Equal(t, c1.ID, c2.ID)
	assert.Equal(t, c1.Bytes, c2.Bytes)
}

func TestBuildCandidateRejects(t *testing.T) {
	tree, _, _ := newTestTree(t)
	ctx := context.Background()

	_, err := tree.BuildCandidate(ctx, nil)
	assert.ErrorIs(t, err, tx.ErrInvalidTransaction)

	other, err := storage.Sum([]byte("elsewhere"))
	require.NoError(t, err)

	_, err = tree.BuildCandidate(ctx, []*tx.Transaction{setData(t, "a", 1, tx.WithExpectedParentTip(other))})
	assert.ErrorIs(t, err, ErrStaleTransaction)

	_, err = tree.BuildCandidate(ctx, []*tx.Transaction{setData(t, "a", 1, tx.WithExpectedParentTip(tree.Tip()))})
	assert.NoError(t, err)
}

func TestAdvanceHeightMonotonic(t *testing.T) {
	tree, _, _ := newTestTree(t)
	ctx := context.Background()

	c, err := tree.BuildCandidate(ctx, []*tx.Transaction{setData(t, "a", 1)})
	require.NoError(t, err)

	assert.ErrorIs(t, tree.Advance(c.ID, 2), ErrHeight)
	assert.ErrorIs(t, tree.Advance(c.ID, 0), ErrHeight)
	assert.ErrorIs(t, tree.Advance(cid.Undef, 1), storage.ErrInvalidCID)

	commit(t, tree, c)

	c2, err := tree.BuildCandidate(ctx, []*tx.Transaction{setData(t, "a", 2)})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), c2.Height())
	assert.Equal(t, c.ID, c2.Block.Parent())
}

func TestLoadAndReset(t *testing.T) {
	tree, s, _ := newTestTree(t)
	ctx := context.Background()

	var tips []cid.Cid
	for i := 0; i < 3; i++ {
		c, err := tree.BuildCandidate(ctx, []*tx.Transaction{setData(t, "count", i)})
		require.NoError(t, err)
		commit(t, tree, c)
		tips = append(tips, c.ID)
	}

	loaded, err := Load(ctx, s, tree.ID(), tips[2])
	require.NoError(t, err)
	assert.Equal(t, uint64(3), loaded.Height())

	stale, err := Load(ctx, s, tree.ID(), tips[0])
	require.NoError(t, err)
	require.NoError(t, stale.Reset(ctx, tips[2]))
	assert.Equal(t, tips[2], stale.Tip())
	assert.Equal(t, uint64(3), stale.Height())

	assert.ErrorIs(t, stale.Reset(ctx, tips[1]), ErrHeight)

	_, err = Load(ctx, s, "did:chaintree:"+"zzz", tips[2])
	assert.Error(t, err)

	otherID, err := DeriveID("someone else")
	require.NoError(t, err)
	_, err = Load(ctx, s, otherID, tips[2])
	assert.ErrorIs(t, err, ErrChainMismatch)
}

func TestOwnership(t *testing.T) {
	tree, s, owner := newTestTree(t)
	ctx := context.Background()

	owners, err := tree.Owners(ctx)
	require.NoError(t, err)
	assert.Nil(t, owners)

	ok, err := IsOwner(ctx, s, tree.ID(), tree.Tip(), owner.Address)
	require.NoError(t, err)
	assert.True(t, ok)

	next := newOwner(t)
	txn, err := tx.NewSetOwnership([]string{next.Address})
	require.NoError(t, err)

	c, err := tree.BuildCandidate(ctx, []*tx.Transaction{txn})
	require.NoError(t, err)
	commit(t, tree, c)

	owners, err = tree.Owners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{next.Address}, owners)

	ok, err = IsOwner(ctx, s, tree.ID(), tree.Tip(), owner.Address)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = IsOwner(ctx, s, tree.ID(), tree.Tip(), next.Address)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHistoryAndFindTransaction(t *testing.T) {
	tree, _, _ := newTestTree(t)
	ctx := context.Background()

	var txs []*tx.Transaction
	for i := 0; i < 4; i++ {
		txn := setData(t, "step", i)
		txs = append(txs, txn)

		c, err := tree.BuildCandidate(ctx, []*tx.Transaction{txn})
		require.NoError(t, err)
		commit(t, tree, c)
	}

	var heights []uint64
	err := tree.History(ctx, func(_ cid.Cid, b *Block) error {
		heights = append(heights, b.Height)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{4, 3, 2, 1}, heights)

	heights = nil
	err = tree.History(ctx, func(_ cid.Cid, b *Block) error {
		heights = append(heights, b.Height)
		return ErrStopWalk
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{4}, heights)

	want, err := txs[1].ID()
	require.NoError(t, err)

	_, b, err := tree.FindTransaction(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), b.Height)

	missing, err := setData(t, "never", "played").ID()
	require.NoError(t, err)

	_, _, err = tree.FindTransaction(ctx, missing)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestResolveAtHistoricTip(t *testing.T) {
	tree, s, _ := newTestTree(t)
	ctx := context.Background()

	c1, err := tree.BuildCandidate(ctx, []*tx.Transaction{setData(t, "v", "one")})
	require.NoError(t, err)
	commit(t, tree, c1)

	c2, err := tree.BuildCandidate(ctx, []*tx.Transaction{setData(t, "v", "two")})
	require.NoError(t, err)
	commit(t, tree, c2)

	res, err := ResolveAt(ctx, s, c1.ID, []string{"v"})
	require.NoError(t, err)
	assert.Equal(t, "one", res.Value)

	res, err = tree.Resolve(ctx, []string{"v"})
	require.NoError(t, err)
	assert.Equal(t, "two", res.Value)

	res, err = ResolveAt(ctx, s, cid.Undef, []string{"v"})
	require.NoError(t, err)
	assert.Equal(t, dag.Unresolved, res)
}

func TestAcquireSingleInflight(t *testing.T) {
	tree, _, _ := newTestTree(t)

	release, err := tree.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = tree.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	release()

	release, err = tree.Acquire(context.Background())
	require.NoError(t, err)
	release()
}

func TestBuildCandidateTypedMapReplays(t *testing.T) {
	tree, s, _ := newTestTree(t)
	ctx := context.Background()

	value := map[string]int{}
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		value[k] = len(value)
	}
	lit := &tx.Transaction{Version: tx.Version1, Kind: tx.KindSetData, Path: []string{"m"}, Value: value}

	c, err := tree.BuildCandidate(ctx, []*tx.Transaction{lit})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := tree.BuildCandidate(ctx, []*tx.Transaction{lit})
		require.NoError(t, err)
		assert.Equal(t, c.ID, again.ID)
	}

	decoded := &Block{}
	require.NoError(t, decoded.Unmarshal(c.Bytes))

	replay, err := BuildCandidate(ctx, s, tree.ID(), tree.Tip(), decoded.Transactions)
	require.NoError(t, err)
	assert.Equal(t, c.ID, replay.ID)
}
