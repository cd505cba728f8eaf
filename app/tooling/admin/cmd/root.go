// Package cmd implements the admin commands using cobra.
package cmd

import (
	"context"
	"time"

	"github.com/ardanlabs/btcgateway/foundation/upstream"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// settings holds the flags shared by every command.
type settings struct {
	node    string
	cookie  string
	timeout time.Duration
}

// Execute builds the command tree and runs it with the arguments provided.
func Execute(build string, log *zap.SugaredLogger, args []string) error {
	root := newRootCmd(build, log)
	root.SetArgs(args)

	return root.Execute()
}

func newRootCmd(build string, log *zap.SugaredLogger) *cobra.Command {
	var s settings

	root := cobra.Command{
		Use:           "admin",
		Short:         "administrative tasks for the bitcoin gateway",
		Version:       build,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&s.node, "node", "n", "http://127.0.0.1:8332", "url of the node JSON-RPC endpoint")
	root.PersistentFlags().StringVarP(&s.cookie, "cookie", "c", "", "path to the node .cookie file")
	root.PersistentFlags().DurationVar(&s.timeout, "timeout", 30*time.Second, "bound on each call to the node")
	root.MarkPersistentFlagRequired("cookie")

	root.AddCommand(
		pingCmd(log, &s),
		callCmd(log, &s),
	)

	return &root
}

// connect constructs the upstream client described by the flags.
func connect(ctx context.Context, log *zap.SugaredLogger, s *settings) (*upstream.Client, error) {
	client, err := upstream.New(ctx, upstream.Config{
		URL:        s.node,
		CookiePath: s.cookie,
		Timeout:    s.timeout,
	})
	if err != nil {
		return nil, err
	}

	log.Infow("connect", "node", client.Host())

	return client, nil
}
