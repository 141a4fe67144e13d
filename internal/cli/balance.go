package cli

import (
	"context"
	"time"

	"github.com/AlexZinkM/shardwallet/internal/client"
	"github.com/AlexZinkM/shardwallet/internal/config"
	"github.com/AlexZinkM/shardwallet/solana"

	"github.com/spf13/cobra"
)

const balanceTimeout = 30 * time.Second

func newBalances() *solana.Balances {
	c := config.Get()
	return &solana.Balances{
		Accounts: client.NewSolanaClient(c.SolanaRPCURL),
		Rates:    client.NewCoinGeckoClient(c.CoinGeckoURL),
		Currency: c.RateCurrency,
	}
}

func newBalanceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [addresses or files...]",
		Short: "Show SOL and USDC balances",
		Long:  "Show SOL and USDC balances. Wallet files are replaced by their address.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), balanceTimeout)
			defer cancel()

			rows, err := newBalances().GetBalances(ctx, solana.ResolveAddresses(walletFiles(args)))
			if err != nil {
				return err
			}
			return opts.print(cmd, rows)
		},
	}
}
