package solana

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlexZinkM/shardwallet/internal/format"
	"github.com/AlexZinkM/shardwallet/internal/legacy"
	"github.com/AlexZinkM/shardwallet/internal/logger"
	"github.com/AlexZinkM/shardwallet/internal/metrics"
	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/wallet"

	"go.uber.org/zap"
)

// VerifyWallet decrypts the wallet at paths and checks the recovered key
// against the stored address.
func VerifyWallet(paths []string, password []byte) (resp *model.VerifyResponse, err error) {
	defer func() { metrics.RecordOperation(metrics.OpVerify, err) }()

	src, err := Open(paths...)
	if err != nil {
		return nil, err
	}
	info, err := src.Info()
	if err != nil {
		return nil, err
	}

	kp, err := src.Decrypt(password)
	if err != nil {
		logger.L().Warn("wallet verification failed",
			zap.String("address", info.Address),
			zap.String("code", model.ErrorCode(err)))
		return nil, err
	}
	defer kp.Zero()

	return &model.VerifyResponse{
		Address:  info.Address,
		Format:   info.Format,
		PWHash:   info.PWHash,
		Files:    info.Files,
		Verified: kp.Address() == info.Address,
	}, nil
}

// WalletInfo describes the wallet at paths. No password is needed.
func WalletInfo(paths []string) (info *model.WalletInfo, err error) {
	defer func() { metrics.RecordOperation(metrics.OpInfo, err) }()

	src, err := Open(paths...)
	if err != nil {
		return nil, err
	}
	return src.Info()
}

// UpgradeOptions are the inputs of UpgradeWallet.
type UpgradeOptions struct {
	FormatOptions

	Inputs   []string
	Output   string
	Force    bool
	Password []byte
}

// UpgradeWallet re-encrypts a wallet file, shard set or legacy .cwt file into
// a new format with the same password. Nothing is written unless the
// decrypt succeeds.
//
// Without Output a single non-legacy input is replaced in place by a basic
// wallet, or gets its shards written next to itself; a legacy input is
// written next to itself with a .key extension.
func UpgradeWallet(opts UpgradeOptions) (resp *model.CreateResponse, err error) {
	defer func() { metrics.RecordOperation(metrics.OpUpgrade, err) }()

	if len(opts.Password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	src, err := Open(opts.Inputs...)
	if err != nil {
		return nil, err
	}
	f, err := opts.NewFormat()
	if err != nil {
		return nil, err
	}
	output, force, err := upgradeOutput(src, f.Kind(), opts.Output, opts.Force)
	if err != nil {
		return nil, err
	}

	var w *wallet.Wallet
	if src.IsLegacy() {
		kp, err := src.Decrypt(opts.Password)
		if err != nil {
			return nil, err
		}
		defer kp.Zero()
		if w, err = wallet.Encrypt(kp, opts.Password, f); err != nil {
			return nil, fmt.Errorf("failed to encrypt wallet: %w", err)
		}
	} else {
		if w, err = wallet.Upgrade(src.wallet, opts.Password, f); err != nil {
			return nil, err
		}
	}

	if w.Address() != src.Address() {
		return nil, fmt.Errorf("upgraded address %s does not match %s", w.Address(), src.Address())
	}
	files, err := writeWallet(w, output, force)
	if err != nil {
		return nil, err
	}

	logger.L().Info("wallet upgraded",
		zap.String("address", w.Address()),
		zap.Stringer("format", f.Kind()),
		zap.Strings("files", files))

	return &model.CreateResponse{
		Address: w.Address(),
		Format:  f.Kind().String(),
		PWHash:  f.PWHash().String(),
		Files:   files,
	}, nil
}

// upgradeOutput picks the output of an upgrade. Only a single binary file
// replaced by a single file is forced; shards written next to an input never
// overwrite existing files unless asked to.
func upgradeOutput(src *Source, kind format.Kind, output string, force bool) (string, bool, error) {
	if output != "" {
		return output, force, nil
	}
	if len(src.Paths) != 1 {
		return "", false, errors.New("output path is required when upgrading shards")
	}
	in := src.Paths[0]
	if src.IsLegacy() {
		return strings.TrimSuffix(in, legacy.Extension) + ".key", force, nil
	}
	if kind == format.KindSharded {
		return in, force, nil
	}
	return in, true, nil
}
