package node

import (
	"context"
	"crypto/rand"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tcfw/chaintree/internal/config"
	"github.com/tcfw/chaintree/internal/wallet"
	"github.com/tcfw/chaintree/pkg/identity"
	"github.com/tcfw/chaintree/pkg/tx"
)

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()

	dir := t.TempDir()

	set := map[string]interface{}{
		config.Cfg_storage_backend: backend,
		config.Cfg_storage_path:    filepath.Join(dir, "data"),
		config.Cfg_wallet_path:     filepath.Join(dir, "wallet.yaml"),
	}

	for k, v := range set {
		prev := viper.Get(k)
		viper.Set(k, v)
		k := k
		t.Cleanup(func() { viper.Set(k, prev) })
	}

	cfg, err := config.GetConfig()
	require.NoError(t, err)

	return cfg
}

func newTestNode(t *testing.T, backend string) *Node {
	t.Helper()

	cfg := testConfig(t, backend)

	w, err := wallet.NewFileStore(cfg.Wallet().Path)
	require.NoError(t, err)

	id, err := identity.Generate(identity.KeyTypeEd25519, rand.Reader)
	require.NoError(t, err)
	require.NoError(t, w.Add("default", id))

	n, err := NewNode(context.Background(), WithConfig(cfg), WithWallet(w))
	require.NoError(t, err)
	t.Cleanup(func() { n.Close() })

	return n
}

func TestNodeRoundTrip(t *testing.T) {
	for _, backend := range []string{"memory", "fs", "pebble", "badger", "leveldb"} {
		t.Run(backend, func(t *testing.T) {
			n := newTestNode(t, backend)
			ctx := context.Background()

			tree, err := n.CreateTree(ctx, "default")
			require.NoError(t, err)

			signer, err := n.Signer("default")
			require.NoError(t, err)

			txn, err := tx.NewSetData("a/b", "hello")
			require.NoError(t, err)

			_, err = n.Client().PlayTransactions(ctx, tree, signer, []*tx.Transaction{txn})
			require.NoError(t, err)

			opened, err := n.OpenTree(ctx, tree.ID())
			require.NoError(t, err)
			assert.Equal(t, tree.Tip(), opened.Tip())

			res, err := opened.Resolve(ctx, []string{"a", "b"})
			require.NoError(t, err)
			assert.Equal(t, "hello", res.Value)

			local, err := n.LocalTip(ctx, tree.ID())
			require.NoError(t, err)
			assert.Equal(t, tree.Tip(), local)

			chains, err := n.Wallet().Chains("default")
			require.NoError(t, err)
			assert.Equal(t, []string{tree.ID()}, chains)
		})
	}
}
