package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tcfw/chaintree/internal/node"
)

var (
	rootCmd = &cobra.Command{
		Use:           "chaintree",
		Short:         "Create and update notarised chain trees",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	out io.Writer = os.Stdout
)

func Execute() error {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase verbosity")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	regCommands()

	return rootCmd.Execute()
}

// withNode opens a node for the duration of fn, cancelling on SIGINT/SIGTERM
func withNode(fn func(ctx context.Context, n *node.Node) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-waitExit(ctx):
			cancel()
		case <-ctx.Done():
		}
	}()

	n, err := node.NewNode(ctx)
	if err != nil {
		return errors.Wrap(err, "initing node")
	}
	defer n.Close()

	return fn(ctx, n)
}

func waitExit(ctx context.Context) <-chan os.Signal {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	return sigs
}

func printJSON(v interface{}) error {
	s, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "%s\n", s)
	return err
}
