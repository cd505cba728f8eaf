package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ardanlabs/btcgateway/business/core/chain"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func pingCmd(log *zap.SugaredLogger, s *settings) *cobra.Command {
	cmd := cobra.Command{
		Use:   "ping",
		Short: "check the node url and cookie by reading the chain state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := connect(cmd.Context(), log, s)
			if err != nil {
				return err
			}
			defer client.Close()

			core := chain.NewCore(log, client)

			start := time.Now()
			doc, err := core.BlockchainInfo(cmd.Context())
			if err != nil {
				return fmt.Errorf("ping: %w", err)
			}

			var info struct {
				Chain         string `json:"chain"`
				Blocks        int64  `json:"blocks"`
				BestBlockHash string `json:"bestblockhash"`
			}
			if err := json.Unmarshal(doc, &info); err != nil {
				return fmt.Errorf("ping: decoding chain state: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "node:      %s\n", client.Host())
			fmt.Fprintf(cmd.OutOrStdout(), "chain:     %s\n", info.Chain)
			fmt.Fprintf(cmd.OutOrStdout(), "blocks:    %d\n", info.Blocks)
			fmt.Fprintf(cmd.OutOrStdout(), "bestblock: %s\n", info.BestBlockHash)
			fmt.Fprintf(cmd.OutOrStdout(), "latency:   %s\n", time.Since(start).Round(time.Millisecond))

			return nil
		},
	}

	return &cmd
}
