package format

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"slices"

	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/pwhash"
	"github.com/AlexZinkM/shardwallet/internal/secure"
	"github.com/AlexZinkM/shardwallet/internal/shamir"

	bin "github.com/gagliardetto/binary"
	"golang.org/x/crypto/hkdf"
)

const shardedKeyInfo = "shardwallet sharded key v1"

// Sharded mixes the password hash with a random share key that is split
// into KeyShareCount shares, RecoveryThreshold of which recover it.
//
// On disk a sharded wallet holds exactly one share. In memory, after
// combining shard files, it holds all the shares that were supplied.
type Sharded struct {
	pwhash            pwhash.PWHash
	KeyShareCount     uint8
	RecoveryThreshold uint8

	shares []shamir.KeyShare
}

// NewSharded returns a sharded format with no shares yet; they are dealt on
// the first DeriveKey.
func NewSharded(h pwhash.PWHash, n, k uint8) (*Sharded, error) {
	if err := shamir.ValidateThreshold(n, k); err != nil {
		return nil, err
	}
	return &Sharded{pwhash: h, KeyShareCount: n, RecoveryThreshold: k}, nil
}

func (s *Sharded) Kind() Kind { return KindSharded }

func (s *Sharded) PWHash() pwhash.PWHash { return s.pwhash }

func (s *Sharded) AuthData() []byte {
	return []byte{s.KeyShareCount, s.RecoveryThreshold}
}

func (s *Sharded) Clone() Format {
	return s.WithShares(s.shares)
}

// KeyShares returns a copy of the shares held in memory.
func (s *Sharded) KeyShares() []shamir.KeyShare {
	return slices.Clone(s.shares)
}

// WithShares returns a copy of s holding exactly the given shares.
func (s *Sharded) WithShares(shares []shamir.KeyShare) *Sharded {
	return &Sharded{
		pwhash:            s.pwhash,
		KeyShareCount:     s.KeyShareCount,
		RecoveryThreshold: s.RecoveryThreshold,
		shares:            slices.Clone(shares),
	}
}

// DeriveKey combines the held shares into the share key, or deals a fresh
// share key when none are held, then mixes it with the password hash. Share
// preconditions are checked before the password hash runs.
func (s *Sharded) DeriveKey(password, key []byte) error {
	shareKey, err := s.shareKey()
	if err != nil {
		return err
	}
	defer secure.Zero(shareKey[:])

	prekey := secure.NewBuffer(len(key))
	defer prekey.Destroy()
	if err := s.pwhash.Derive(password, prekey.Bytes()); err != nil {
		return err
	}

	r := hkdf.New(sha256.New, prekey.Bytes(), shareKey[:], []byte(shardedKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return fmt.Errorf("failed to expand key: %w", err)
	}
	return nil
}

func (s *Sharded) shareKey() (*[shamir.SecretSize]byte, error) {
	if len(s.shares) > 0 {
		return shamir.Combine(s.shares, s.RecoveryThreshold)
	}

	shareKey := new([shamir.SecretSize]byte)
	if _, err := io.ReadFull(rand.Reader, shareKey[:]); err != nil {
		return nil, fmt.Errorf("failed to generate share key: %w", err)
	}
	shares, err := shamir.Split(shareKey, s.KeyShareCount, s.RecoveryThreshold)
	if err != nil {
		secure.Zero(shareKey[:])
		return nil, err
	}
	s.shares = shares
	return shareKey, nil
}

// WriteHeader writes N, K and the single share of a shard file.
func (s *Sharded) WriteHeader(enc *bin.Encoder) error {
	if len(s.shares) != 1 {
		return fmt.Errorf("%w: a sharded wallet is written one share per file, have %d", model.ErrFormat, len(s.shares))
	}
	if err := enc.WriteUint8(s.KeyShareCount); err != nil {
		return err
	}
	if err := enc.WriteUint8(s.RecoveryThreshold); err != nil {
		return err
	}
	return enc.WriteBytes(s.shares[0][:], false)
}

// ReadHeader reads what WriteHeader wrote.
func (s *Sharded) ReadHeader(dec *bin.Decoder) error {
	n, err := dec.ReadUint8()
	if err != nil {
		return fmt.Errorf("%w: share count: %v", model.ErrFormat, err)
	}
	k, err := dec.ReadUint8()
	if err != nil {
		return fmt.Errorf("%w: recovery threshold: %v", model.ErrFormat, err)
	}
	if err := shamir.ValidateThreshold(n, k); err != nil {
		return err
	}
	raw, err := dec.ReadNBytes(shamir.ShareSize)
	if err != nil {
		return fmt.Errorf("%w: key share: %v", model.ErrFormat, err)
	}
	share, err := shamir.NewKeyShare(raw)
	if err != nil {
		return err
	}
	if share.Index() < 1 || share.Index() > n {
		return fmt.Errorf("%w: share index %d outside 1..%d", model.ErrFormat, share.Index(), n)
	}

	s.KeyShareCount = n
	s.RecoveryThreshold = k
	s.shares = []shamir.KeyShare{share}
	return nil
}

func (s *Sharded) sealed() {}
