// Package cli implements the wallet command line.
package cli

import (
	"fmt"

	"github.com/AlexZinkM/shardwallet/internal/config"
	"github.com/AlexZinkM/shardwallet/internal/logger"
	"github.com/AlexZinkM/shardwallet/internal/render"

	"github.com/spf13/cobra"
)

const defaultWalletFile = "wallet.key"

type options struct {
	format string
}

// NewRootCmd builds the wallet command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "wallet",
		Short: "Solana wallet with password encryption and sharded recovery",
		Long: `wallet creates and manages encrypted Solana wallets.

A basic wallet is one file encrypted under a password. A sharded wallet is
split into N shard files; any K of them together with the password recover
the key. Addresses are readable without the password.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(); err != nil {
				return err
			}
			return logger.Init(config.Get().LogLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&opts.format, "format", string(render.FormatTable),
		"output format (table, json)")

	root.AddCommand(
		newCreateCmd(opts),
		newVerifyCmd(opts),
		newInfoCmd(opts),
		newBalanceCmd(opts),
		newUpgradeCmd(opts),
		newServeCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) print(cmd *cobra.Command, v any) error {
	f, err := render.ParseFormat(o.format)
	if err != nil {
		return err
	}
	return render.Print(cmd.OutOrStdout(), f, v)
}

// walletFiles returns args, falling back to WALLET_FILES and then to the
// default wallet file.
func walletFiles(args []string) []string {
	if len(args) > 0 {
		return args
	}
	if files := config.Get().WalletFiles; len(files) > 0 {
		return files
	}
	return []string{defaultWalletFile}
}

func readPassword(confirm bool) ([]byte, error) {
	password, err := config.ReadPassword(confirm)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return password, nil
}
