package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tcfw/chaintree/pkg/cryptography"
	"github.com/tcfw/chaintree/pkg/notary"
	"gopkg.in/yaml.v3"
)

// Generates a set of notary signer keys and prints the matching config
func main() {
	cmd := &cobra.Command{
		Use:   "gengen",
		Short: "Generate notary signer keys as chaintree.yaml config",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
	cmd.Flags().IntP("signers", "n", 4, "number of signers")
	cmd.Flags().Int("threshold", 0, "quorum threshold, 0 for the default")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	n, _ := cmd.Flags().GetInt("signers")
	threshold, _ := cmd.Flags().GetInt("threshold")

	if n <= 0 {
		return fmt.Errorf("need at least one signer")
	}

	keys := make([]string, 0, n)
	ids := make([]string, 0, n)

	for i := 0; i < n; i++ {
		sk := cryptography.NewBls12381PrivateKey()

		raw, err := sk.Bytes()
		if err != nil {
			return err
		}

		k, err := cryptography.EncodeMultibase(raw)
		if err != nil {
			return err
		}
		keys = append(keys, k)

		s, err := notary.NewSigner(sk)
		if err != nil {
			return err
		}
		ids = append(ids, s.ID())
	}

	if threshold == 0 {
		threshold = notary.DefaultThreshold(n)
	}

	cfg := map[string]interface{}{
		"notary": map[string]interface{}{
			"keys":      keys,
			"threshold": threshold,
		},
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "# signers:\n")
	for _, id := range ids {
		fmt.Fprintf(out, "#   %s\n", id)
	}
	fmt.Fprintf(out, "%s", b)

	return nil
}
