package solana

import (
	"fmt"

	"github.com/AlexZinkM/shardwallet/internal/common"
	"github.com/AlexZinkM/shardwallet/internal/format"
	"github.com/AlexZinkM/shardwallet/internal/keypair"
	"github.com/AlexZinkM/shardwallet/internal/legacy"
	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/wallet"
)

const formatLegacy = "legacy"

// Source is a wallet as found on disk: one wallet file, a set of shard
// files, or a legacy .cwt file.
type Source struct {
	Paths []string

	wallet *wallet.Wallet
	legacy []byte
}

// Open reads the wallet at paths. Several paths are combined as shards of
// one wallet.
func Open(paths ...string) (*Source, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no wallet files given")
	}
	if len(paths) > 1 {
		w, err := wallet.Load(paths...)
		if err != nil {
			return nil, err
		}
		return &Source{Paths: paths, wallet: w}, nil
	}

	data, err := common.ReadFile(paths[0])
	if err != nil {
		return nil, err
	}
	if legacy.IsLegacy(data) {
		if _, err := legacy.ReadAddress(data); err != nil {
			return nil, fmt.Errorf("%s: %w", paths[0], err)
		}
		return &Source{Paths: paths, legacy: data}, nil
	}
	w, err := wallet.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", paths[0], err)
	}
	return &Source{Paths: paths, wallet: w}, nil
}

// IsLegacy reports whether the source is a .cwt file.
func (s *Source) IsLegacy() bool {
	return s.legacy != nil
}

// Address reads the account address without a password.
func (s *Source) Address() string {
	if s.IsLegacy() {
		// checked by Open
		addr, _ := legacy.ReadAddress(s.legacy)
		return addr
	}
	return s.wallet.Address()
}

// Decrypt opens the wallet with password.
func (s *Source) Decrypt(password []byte) (*keypair.Keypair, error) {
	if s.IsLegacy() {
		return legacy.Decrypt(s.legacy, password)
	}
	return s.wallet.Decrypt(password)
}

// Info describes the source without decrypting it.
func (s *Source) Info() (*model.WalletInfo, error) {
	info := &model.WalletInfo{
		Address: s.Address(),
		Files:   s.Paths,
	}
	if s.IsLegacy() {
		h, err := legacy.PWHash(s.legacy)
		if err != nil {
			return nil, err
		}
		info.Format = formatLegacy
		info.PWHash = h.String()
		return info, nil
	}

	f := s.wallet.Format()
	info.Format = f.Kind().String()
	info.PWHash = f.PWHash().String()
	if sh, ok := f.(*format.Sharded); ok {
		info.KeyShareCount = sh.KeyShareCount
		info.RecoveryThreshold = sh.RecoveryThreshold
		for _, share := range sh.KeyShares() {
			info.ShareIndices = append(info.ShareIndices, share.Index())
		}
	}
	return info, nil
}
