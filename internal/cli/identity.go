package cli

import (
	"context"
	"crypto/rand"

	"github.com/spf13/cobra"
	"github.com/tcfw/chaintree/internal/node"
	"github.com/tcfw/chaintree/pkg/identity"
)

var (
	identityCmd = &cobra.Command{
		Use:   "identity",
		Short: "Owner identity commands",
	}

	identity_newCmd = &cobra.Command{
		Use:   "new [name]",
		Short: "Generate a new owner identity",
		Args:  cobra.ExactArgs(1),
		RunE:  runIdentityNew,
	}

	identity_listCmd = &cobra.Command{
		Use:   "list",
		Short: "List owner identities",
		RunE:  runIdentityList,
	}
)

func init() {
	identity_newCmd.Flags().StringP("type", "t", string(identity.KeyTypeEd25519), "key type, ed25519 or secp256k1")
}

func runIdentityNew(cmd *cobra.Command, args []string) error {
	kt, _ := cmd.Flags().GetString("type")

	return withNode(func(ctx context.Context, n *node.Node) error {
		id, err := identity.Generate(identity.KeyType(kt), rand.Reader)
		if err != nil {
			return err
		}

		if err := n.Wallet().Add(args[0], id); err != nil {
			return err
		}

		pub, err := id.PublicIdentity()
		if err != nil {
			return err
		}

		return printJSON(map[string]string{"name": args[0], "type": kt, "address": pub.Address})
	})
}

func runIdentityList(cmd *cobra.Command, args []string) error {
	return withNode(func(ctx context.Context, n *node.Node) error {
		type entry struct {
			Name    string   `json:"name"`
			Address string   `json:"address"`
			Chains  []string `json:"chains,omitempty"`
		}

		var list []entry

		for _, name := range n.Wallet().List() {
			id, err := n.Wallet().Find(name)
			if err != nil {
				return err
			}
			pub, err := id.PublicIdentity()
			if err != nil {
				return err
			}
			chains, _ := n.Wallet().Chains(name)

			list = append(list, entry{Name: name, Address: pub.Address, Chains: chains})
		}

		return printJSON(list)
	})
}
