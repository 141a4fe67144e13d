package wallet

import (
	"fmt"

	"github.com/AlexZinkM/shardwallet/internal/common"
)

// Load reads one wallet file, or a set of shard files which are combined.
func Load(paths ...string) (*Wallet, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no wallet files given")
	}

	wallets := make([]*Wallet, 0, len(paths))
	for _, p := range paths {
		w, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	if len(wallets) == 1 {
		return wallets[0], nil
	}
	return Combine(wallets)
}

// LoadFile reads and parses a single wallet file.
func LoadFile(path string) (*Wallet, error) {
	data, err := common.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return w, nil
}

// Save writes the wallet to path atomically, refusing to replace an existing
// file unless force is set.
func (w *Wallet) Save(path string, force bool) error {
	data, err := w.MarshalBinary()
	if err != nil {
		return err
	}
	return common.WriteFileAtomic(path, data, force)
}
