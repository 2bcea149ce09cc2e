package cli

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/spf13/cobra"
	"github.com/tcfw/chaintree/internal/node"
	"github.com/tcfw/chaintree/internal/utils/logging"
	"github.com/tcfw/chaintree/pkg/chaintree"
	"github.com/tcfw/chaintree/pkg/dag"
	"github.com/tcfw/chaintree/pkg/tx"
)

var (
	createCmd = &cobra.Command{
		Use:   "create",
		Short: "Create a new chain tree",
		Args:  cobra.NoArgs,
		RunE:  runCreate,
	}

	setCmd = &cobra.Command{
		Use:   "set [chain] [path] [value]",
		Short: "Set a value at a path",
		Args:  cobra.ExactArgs(3),
		RunE:  runSet,
	}

	resolveCmd = &cobra.Command{
		Use:   "resolve [chain] [path]",
		Short: "Read the value at a path",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runResolve,
	}

	tipCmd = &cobra.Command{
		Use:   "tip [chain]",
		Short: "Show the current tip and height",
		Args:  cobra.ExactArgs(1),
		RunE:  runTip,
	}

	historyCmd = &cobra.Command{
		Use:   "history [chain]",
		Short: "List blocks newest first",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistory,
	}

	ownersCmd = &cobra.Command{
		Use:   "owners [chain]",
		Short: "List the owners of a chain tree",
		Args:  cobra.ExactArgs(1),
		RunE:  runOwners,
	}

	transferCmd = &cobra.Command{
		Use:   "transfer [chain] [address...]",
		Short: "Replace the owners of a chain tree",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runTransfer,
	}
)

func init() {
	for _, c := range []*cobra.Command{createCmd, setCmd, transferCmd} {
		c.Flags().StringP("identity", "i", "default", "wallet identity to sign with")
	}
}

// parseValue reads JSON values and falls back to a plain string. Whole
// numbers become int64 so they match values set through the library.
func parseValue(s string) interface{} {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil || v == nil {
		return s
	}

	var rest interface{}
	if err := dec.Decode(&rest); err != io.EOF {
		return s
	}

	return numbers(v)
}

func numbers(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]interface{}:
		for k, e := range t {
			t[k] = numbers(e)
		}
	case []interface{}:
		for i, e := range t {
			t[i] = numbers(e)
		}
	}

	return v
}

func runCreate(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("identity")

	return withNode(func(ctx context.Context, n *node.Node) error {
		tree, err := n.CreateTree(ctx, name)
		if err != nil {
			return err
		}

		return printJSON(map[string]interface{}{"id": tree.ID(), "tip": tree.Tip().String()})
	})
}

// play submits txs built by build through the reconciler
func play(cmd *cobra.Command, chainID string, build func() ([]*tx.Transaction, error)) error {
	name, _ := cmd.Flags().GetString("identity")

	return withNode(func(ctx context.Context, n *node.Node) error {
		signer, err := n.Signer(name)
		if err != nil {
			return err
		}

		tree, err := n.OpenTree(ctx, chainID)
		if err != nil {
			return err
		}

		conf, err := n.Reconciler().Play(ctx, tree, signer, func(context.Context, *chaintree.ChainTree) ([]*tx.Transaction, error) {
			return build()
		})
		if err != nil {
			return err
		}

		logging.Entry().WithField("signatures", len(conf.Signatures)).Debug("confirmed")

		return printJSON(map[string]interface{}{"tip": conf.NewTip.String(), "height": conf.Height})
	})
}

func runSet(cmd *cobra.Command, args []string) error {
	return play(cmd, args[0], func() ([]*tx.Transaction, error) {
		t, err := tx.NewSetData(args[1], parseValue(args[2]))
		if err != nil {
			return nil, err
		}
		return []*tx.Transaction{t}, nil
	})
}

func runTransfer(cmd *cobra.Command, args []string) error {
	return play(cmd, args[0], func() ([]*tx.Transaction, error) {
		t, err := tx.NewSetOwnership(args[1:])
		if err != nil {
			return nil, err
		}
		return []*tx.Transaction{t}, nil
	})
}

func runResolve(cmd *cobra.Command, args []string) error {
	var path []string
	if len(args) > 1 {
		p, err := dag.ParsePath(args[1])
		if err != nil {
			return err
		}
		path = p
	}

	return withNode(func(ctx context.Context, n *node.Node) error {
		tree, err := n.OpenTree(ctx, args[0])
		if err != nil {
			return err
		}

		res, err := tree.Resolve(ctx, path)
		if err != nil {
			return err
		}

		if !res.Resolved() {
			return printJSON(map[string]interface{}{"resolved": false})
		}

		return printJSON(map[string]interface{}{
			"resolved":  true,
			"value":     jsonValue(res.Value),
			"remaining": res.Remaining,
		})
	})
}

// jsonValue renders links by their string form
func jsonValue(v interface{}) interface{} {
	switch t := v.(type) {
	case cid.Cid:
		return map[string]string{"/": t.String()}
	case map[string]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[k] = jsonValue(e)
		}
		return m
	case []interface{}:
		l := make([]interface{}, len(t))
		for i, e := range t {
			l[i] = jsonValue(e)
		}
		return l
	default:
		return v
	}
}

func runTip(cmd *cobra.Command, args []string) error {
	return withNode(func(ctx context.Context, n *node.Node) error {
		tree, err := n.OpenTree(ctx, args[0])
		if err != nil {
			return err
		}

		return printJSON(map[string]interface{}{"id": tree.ID(), "tip": tree.Tip().String(), "height": tree.Height()})
	})
}

func runHistory(cmd *cobra.Command, args []string) error {
	return withNode(func(ctx context.Context, n *node.Node) error {
		tree, err := n.OpenTree(ctx, args[0])
		if err != nil {
			return err
		}

		type entry struct {
			ID           string   `json:"id"`
			Height       uint64   `json:"height"`
			Transactions []string `json:"transactions"`
		}

		var blocks []entry

		err = tree.History(ctx, func(id cid.Cid, b *chaintree.Block) error {
			e := entry{ID: id.String(), Height: b.Height}
			for _, t := range b.Transactions {
				e.Transactions = append(e.Transactions, t.Kind.String()+" "+dag.JoinPath(t.Path))
			}
			blocks = append(blocks, e)
			return nil
		})
		if err != nil {
			return err
		}

		return printJSON(blocks)
	})
}

func runOwners(cmd *cobra.Command, args []string) error {
	return withNode(func(ctx context.Context, n *node.Node) error {
		tree, err := n.OpenTree(ctx, args[0])
		if err != nil {
			return err
		}

		owners, err := tree.Owners(ctx)
		if err != nil {
			return err
		}

		return printJSON(map[string]interface{}{"id": tree.ID(), "owners": owners, "implicit": owners == nil})
	})
}
