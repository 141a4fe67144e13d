package cli

import (
	"github.com/AlexZinkM/shardwallet/internal/format"
	"github.com/AlexZinkM/shardwallet/solana"

	"github.com/spf13/cobra"
)

func newUpgradeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Re-encrypt a wallet into a new format",
		Long: `Re-encrypt a wallet, shard set or legacy .cwt file into a new format with
the same password. The address does not change.`,
	}
	cmd.AddCommand(
		newUpgradeKindCmd(opts, format.KindBasic, "Upgrade into a single wallet file"),
		newUpgradeKindCmd(opts, format.KindSharded, "Upgrade into shard files"),
	)
	return cmd
}

func newUpgradeKindCmd(opts *options, kind format.Kind, short string) *cobra.Command {
	var (
		output string
		force  bool
		ff     formatFlags
	)

	cmd := &cobra.Command{
		Use:   kind.String() + " [files...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			fo, err := ff.options(kind)
			if err != nil {
				return err
			}
			password, err := readPassword(false)
			if err != nil {
				return err
			}
			defer clear(password)

			resp, err := solana.UpgradeWallet(solana.UpgradeOptions{
				FormatOptions: fo,
				Inputs:        walletFiles(args),
				Output:        output,
				Force:         force,
				Password:      password,
			})
			if err != nil {
				return err
			}
			return opts.print(cmd, resp)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: replace the input)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	ff.register(cmd, kind == format.KindSharded)
	return cmd
}
