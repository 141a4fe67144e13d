package cli

import (
	"context"

	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/render"
	"github.com/AlexZinkM/shardwallet/solana"

	"github.com/spf13/cobra"
)

func newInfoCmd(opts *options) *cobra.Command {
	var (
		qr      bool
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "info [files...]",
		Short: "Show the address and parameters of a wallet",
		Long: "Show the address and parameters of a wallet with the balance of its address. " +
			"No password is needed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			files := walletFiles(args)

			var (
				info *model.WalletInfo
				err  error
			)
			if qr || offline {
				info, err = solana.WalletInfo(files)
			} else {
				ctx, cancel := context.WithTimeout(cmd.Context(), balanceTimeout)
				defer cancel()
				info, err = newBalances().InfoWithBalance(ctx, files)
			}
			if err != nil {
				return err
			}

			if err := opts.print(cmd, info); err != nil {
				return err
			}
			if qr {
				return render.QR(cmd.OutOrStdout(), info.Address)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&qr, "qr", false, "print the address as a QR code instead of the balance")
	cmd.Flags().BoolVar(&offline, "offline", false, "do not query the balance")
	return cmd
}
