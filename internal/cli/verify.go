package cli

import (
	"github.com/AlexZinkM/shardwallet/solana"

	"github.com/spf13/cobra"
)

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [files...]",
		Short: "Check the password of a wallet or shard set",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(false)
			if err != nil {
				return err
			}
			defer clear(password)

			resp, err := solana.VerifyWallet(walletFiles(args), password)
			if err != nil {
				return err
			}
			return opts.print(cmd, resp)
		},
	}
}
