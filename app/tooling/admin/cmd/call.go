package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func callCmd(log *zap.SugaredLogger, s *settings) *cobra.Command {
	cmd := cobra.Command{
		Use:   "call <method> [params...]",
		Short: "issue a raw JSON-RPC call and print the result",
		Long: `Each param is sent as JSON when it parses as JSON and as a string
otherwise, so "call getblockhash 0" sends the number 0 and
"call getblock 0000...abcd" sends the hash as a string.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect(cmd.Context(), log, s)
			if err != nil {
				return err
			}
			defer client.Close()

			doc, err := client.Call(cmd.Context(), args[0], params(args[1:])...)
			if err != nil {
				return fmt.Errorf("call %s: %w", args[0], err)
			}

			var out bytes.Buffer
			if err := json.Indent(&out, doc, "", "  "); err != nil {
				return fmt.Errorf("call %s: formatting result: %w", args[0], err)
			}
			out.WriteByte('\n')

			_, err = out.WriteTo(cmd.OutOrStdout())
			return err
		},
	}

	return &cmd
}

// params converts command line arguments into call arguments.
func params(args []string) []any {
	ps := make([]any, len(args))
	for i, arg := range args {
		if json.Valid([]byte(arg)) {
			ps[i] = json.RawMessage(arg)
			continue
		}
		ps[i] = arg
	}

	return ps
}
