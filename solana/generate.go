package solana

import (
	"errors"
	"fmt"

	"github.com/AlexZinkM/shardwallet/internal/common"
	"github.com/AlexZinkM/shardwallet/internal/format"
	"github.com/AlexZinkM/shardwallet/internal/keypair"
	"github.com/AlexZinkM/shardwallet/internal/logger"
	"github.com/AlexZinkM/shardwallet/internal/metrics"
	"github.com/AlexZinkM/shardwallet/internal/mnemonic"
	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/pwhash"
	"github.com/AlexZinkM/shardwallet/internal/wallet"

	"go.uber.org/zap"
)

const (
	DefaultKeyShares = 5
	DefaultThreshold = 3
)

// FormatOptions selects the on-disk format of a new or upgraded wallet.
type FormatOptions struct {
	Kind format.Kind
	// Shares (N) and Threshold (K) apply to sharded wallets only.
	Shares    uint8
	Threshold uint8
	// PWHash defaults to pwhash.Default() when unset.
	PWHash pwhash.PWHash
}

// NewFormat builds the format described by o with a fresh salt.
func (o FormatOptions) NewFormat() (format.Format, error) {
	h := o.PWHash
	if h.Algorithm() == 0 {
		var err error
		if h, err = pwhash.Default(); err != nil {
			return nil, err
		}
	}
	switch o.Kind {
	case format.KindBasic:
		return format.NewBasic(h), nil
	case format.KindSharded:
		return format.NewSharded(h, o.Shares, o.Threshold)
	default:
		return nil, fmt.Errorf("%w: unknown format %s", model.ErrFormat, o.Kind)
	}
}

// CreateOptions are the inputs of CreateWallet.
type CreateOptions struct {
	FormatOptions

	Output   string
	Force    bool
	Password []byte

	// Seed restores the keypair from seed words. When empty a new keypair is
	// generated; with ShowSeed it is generated from fresh seed words that are
	// returned in the response.
	Seed     []string
	ShowSeed bool
}

// CreateWallet generates (or restores) a keypair, encrypts it and writes one
// wallet file or N shard files.
func CreateWallet(opts CreateOptions) (resp *model.CreateResponse, err error) {
	defer func() { metrics.RecordOperation(metrics.OpCreate, err) }()

	if len(opts.Password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	f, err := opts.NewFormat()
	if err != nil {
		return nil, err
	}

	kp, words, err := newKeypair(opts.Seed, opts.ShowSeed)
	if err != nil {
		return nil, err
	}
	defer kp.Zero()

	w, err := wallet.Encrypt(kp, opts.Password, f)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt wallet: %w", err)
	}
	files, err := writeWallet(w, opts.Output, opts.Force)
	if err != nil {
		return nil, err
	}

	logger.L().Info("wallet created",
		zap.String("address", w.Address()),
		zap.Stringer("format", f.Kind()),
		zap.Strings("files", files))

	return &model.CreateResponse{
		Address:  w.Address(),
		Format:   f.Kind().String(),
		PWHash:   f.PWHash().String(),
		Files:    files,
		Mnemonic: words,
	}, nil
}

func newKeypair(seed []string, showSeed bool) (*keypair.Keypair, []string, error) {
	switch {
	case len(seed) > 0:
		kp, err := mnemonic.Keypair(seed)
		return kp, nil, err
	case showSeed:
		words, err := mnemonic.Generate()
		if err != nil {
			return nil, nil, err
		}
		kp, err := mnemonic.Keypair(words)
		if err != nil {
			return nil, nil, err
		}
		return kp, words, nil
	default:
		kp, err := keypair.Generate()
		return kp, nil, err
	}
}

// ShardPath names the i-th (1-based) shard file of base.
func ShardPath(base string, i int) string {
	return fmt.Sprintf("%s.%d", base, i)
}

// writeWallet saves w to output, or its shards to ShardPath(output, i). The
// shard set is published as a whole or not at all.
func writeWallet(w *wallet.Wallet, output string, force bool) ([]string, error) {
	if output == "" {
		return nil, errors.New("output path is required")
	}
	if !w.IsSharded() {
		if err := w.Save(output, force); err != nil {
			return nil, err
		}
		return []string{output}, nil
	}

	shards, err := w.Shards()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(shards))
	data := make([][]byte, len(shards))
	for i, s := range shards {
		paths[i] = ShardPath(output, i+1)
		if data[i], err = s.MarshalBinary(); err != nil {
			return nil, err
		}
	}

	if err := common.WriteFilesAtomic(paths, data, force); err != nil {
		return nil, err
	}
	return paths, nil
}
