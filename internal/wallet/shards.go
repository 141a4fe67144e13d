package wallet

import (
	"bytes"
	"fmt"

	"github.com/AlexZinkM/shardwallet/internal/format"
	"github.com/AlexZinkM/shardwallet/internal/keypair"
	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/shamir"
)

// Shards splits a freshly encrypted sharded wallet into one wallet per key
// share. Every shard carries the full envelope, so its address can be read
// without a password, but it cannot be decrypted alone unless K is 1.
func (w *Wallet) Shards() ([]*Wallet, error) {
	s, ok := w.format.(*format.Sharded)
	if !ok {
		return nil, fmt.Errorf("%w: %s wallet has no shards", model.ErrFormat, w.format.Kind())
	}
	shares := s.KeyShares()
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: wallet holds no key shares", model.ErrInsufficientShares)
	}

	out := make([]*Wallet, len(shares))
	for i, share := range shares {
		out[i] = w.withFormat(s.WithShares([]shamir.KeyShare{share}))
	}
	return out, nil
}

// KeyShares returns the shares held by a sharded wallet, nil otherwise.
func (w *Wallet) KeyShares() []shamir.KeyShare {
	if s, ok := w.format.(*format.Sharded); ok {
		return s.KeyShares()
	}
	return nil
}

// Combine merges shard wallets into one wallet holding all their shares.
// The shards must come from the same split. Duplicate share indices are
// model.ErrInvalidShare; fewer than K distinct shares is
// model.ErrInsufficientShares.
func Combine(shards []*Wallet) (*Wallet, error) {
	if len(shards) == 0 {
		return nil, fmt.Errorf("%w: no shards given", model.ErrInsufficientShares)
	}

	first, ok := shards[0].format.(*format.Sharded)
	if !ok {
		return nil, fmt.Errorf("%w: %s wallet is not a shard", model.ErrInvalidShare, shards[0].format.Kind())
	}

	var shares []shamir.KeyShare
	seen := make(map[byte]struct{})
	for i, sw := range shards {
		s, ok := sw.format.(*format.Sharded)
		if !ok {
			return nil, fmt.Errorf("%w: shard %d is a %s wallet", model.ErrInvalidShare, i+1, sw.format.Kind())
		}
		if !sameSplit(shards[0], first, sw, s) {
			return nil, fmt.Errorf("%w: shard %d belongs to a different wallet", model.ErrInvalidShare, i+1)
		}
		for _, share := range s.KeyShares() {
			if _, dup := seen[share.Index()]; dup {
				return nil, fmt.Errorf("%w: duplicate share index %d", model.ErrInvalidShare, share.Index())
			}
			seen[share.Index()] = struct{}{}
			shares = append(shares, share)
		}
	}

	if len(shares) < int(first.RecoveryThreshold) {
		return nil, fmt.Errorf("%w: need %d, got %d", model.ErrInsufficientShares, first.RecoveryThreshold, len(shares))
	}
	return shards[0].withFormat(first.WithShares(shares)), nil
}

// Recover combines the shards and decrypts the result.
func Recover(shards []*Wallet, password []byte) (*keypair.Keypair, error) {
	w, err := Combine(shards)
	if err != nil {
		return nil, err
	}
	return w.Decrypt(password)
}

func (w *Wallet) withFormat(f format.Format) *Wallet {
	return &Wallet{
		format:     f,
		publicKey:  w.publicKey,
		nonce:      w.nonce,
		ciphertext: bytes.Clone(w.ciphertext),
	}
}

func sameSplit(a *Wallet, af *format.Sharded, b *Wallet, bf *format.Sharded) bool {
	return a.publicKey.Equals(b.publicKey) &&
		a.nonce == b.nonce &&
		bytes.Equal(a.ciphertext, b.ciphertext) &&
		af.PWHash().Equal(bf.PWHash()) &&
		af.KeyShareCount == bf.KeyShareCount &&
		af.RecoveryThreshold == bf.RecoveryThreshold
}
