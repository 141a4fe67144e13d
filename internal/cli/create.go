package cli

import (
	"fmt"

	"github.com/AlexZinkM/shardwallet/internal/config"
	"github.com/AlexZinkM/shardwallet/internal/format"
	"github.com/AlexZinkM/shardwallet/internal/pwhash"
	"github.com/AlexZinkM/shardwallet/solana"

	"github.com/spf13/cobra"
)

// formatFlags are shared by create and upgrade.
type formatFlags struct {
	pwhash    string
	shares    uint8
	threshold uint8
}

func (f *formatFlags) register(cmd *cobra.Command, sharded bool) {
	cmd.Flags().StringVar(&f.pwhash, "pwhash", "argon2id", "password hash (argon2id, scrypt, pbkdf2)")
	if sharded {
		cmd.Flags().Uint8VarP(&f.shares, "shares", "n", solana.DefaultKeyShares, "number of shard files to create")
		cmd.Flags().Uint8VarP(&f.threshold, "threshold", "k", solana.DefaultThreshold, "number of shards needed to recover")
	}
}

func (f *formatFlags) options(kind format.Kind) (solana.FormatOptions, error) {
	h, err := parsePWHash(f.pwhash)
	if err != nil {
		return solana.FormatOptions{}, err
	}
	return solana.FormatOptions{Kind: kind, Shares: f.shares, Threshold: f.threshold, PWHash: h}, nil
}

func parsePWHash(name string) (pwhash.PWHash, error) {
	switch name {
	case "argon2id", "":
		return pwhash.Default()
	case "scrypt":
		return pwhash.NewScrypt(pwhash.DefaultScryptLogN, pwhash.DefaultScryptR, pwhash.DefaultScryptP)
	case "pbkdf2":
		return pwhash.NewPBKDF2(pwhash.DefaultPBKDF2Iterations)
	default:
		return pwhash.PWHash{}, fmt.Errorf("unknown password hash %q", name)
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new wallet",
	}
	cmd.AddCommand(
		newCreateKindCmd(opts, format.KindBasic, "Create a wallet in a single file"),
		newCreateKindCmd(opts, format.KindSharded, "Create a wallet split into shard files"),
	)
	return cmd
}

func newCreateKindCmd(opts *options, kind format.Kind, short string) *cobra.Command {
	var (
		output   string
		force    bool
		seed     bool
		showSeed bool
		ff       formatFlags
	)

	cmd := &cobra.Command{
		Use:   kind.String(),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fo, err := ff.options(kind)
			if err != nil {
				return err
			}

			var words []string
			if seed {
				if words, err = config.ReadSeedWords(); err != nil {
					return err
				}
			}

			password, err := readPassword(true)
			if err != nil {
				return err
			}
			defer clear(password)

			resp, err := solana.CreateWallet(solana.CreateOptions{
				FormatOptions: fo,
				Output:        output,
				Force:         force,
				Password:      password,
				Seed:          words,
				ShowSeed:      showSeed,
			})
			if err != nil {
				return err
			}
			return opts.print(cmd, resp)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultWalletFile, "output file (shards get .1, .2, ... appended)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	cmd.Flags().BoolVar(&seed, "seed", false, "restore the key from seed words (prompted)")
	cmd.Flags().BoolVar(&showSeed, "show-seed", false, "generate the key from new seed words and print them")
	cmd.MarkFlagsMutuallyExclusive("seed", "show-seed")
	ff.register(cmd, kind == format.KindSharded)
	return cmd
}
