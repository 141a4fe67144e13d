// Package keypair holds the ed25519 account keys of a wallet.
package keypair

import (
	"crypto/ed25519"
	"fmt"

	"github.com/AlexZinkM/shardwallet/internal/secure"

	"github.com/gagliardetto/solana-go"
)

// SeedSize is the length of the entropy a keypair is derived from.
const SeedSize = ed25519.SeedSize

// Seed is 32 bytes of entropy. It only lives long enough to build a Keypair.
type Seed [SeedSize]byte

// Zero wipes the seed.
func (s *Seed) Zero() {
	secure.Zero(s[:])
}

// Keypair is an ed25519 private key and its public key.
type Keypair struct {
	private solana.PrivateKey
}

// Generate returns a keypair from the system's secure random source.
func Generate() (*Keypair, error) {
	priv, err := solana.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	return &Keypair{private: priv}, nil
}

// FromSeed derives a keypair deterministically: the same seed always yields
// the same keys and address.
func FromSeed(seed *Seed) *Keypair {
	return &Keypair{private: solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:]))}
}

// FromPrivateKey wraps a 64-byte ed25519 private key and checks that the
// embedded public half matches the seed half.
func FromPrivateKey(b []byte) (*Keypair, error) {
	if len(b) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length %d", len(b))
	}
	var seed Seed
	defer seed.Zero()
	copy(seed[:], b[:SeedSize])

	kp := FromSeed(&seed)
	if !kp.PublicKey().Equals(solana.PublicKeyFromBytes(b[SeedSize:])) {
		kp.Zero()
		return nil, fmt.Errorf("private key does not match its public key")
	}
	return kp, nil
}

// PublicKey returns the public key.
func (k *Keypair) PublicKey() solana.PublicKey {
	return k.private.PublicKey()
}

// Address is the base58 account address.
func (k *Keypair) Address() string {
	return k.PublicKey().String()
}

// Seed copies the 32-byte seed into dst. Callers own dst and must zero it.
func (k *Keypair) Seed(dst *Seed) {
	copy(dst[:], k.private[:SeedSize])
}

// PrivateKey returns the underlying 64-byte key. It aliases the keypair.
func (k *Keypair) PrivateKey() solana.PrivateKey {
	return k.private
}

// Equal compares public keys.
func (k *Keypair) Equal(o *Keypair) bool {
	return k.PublicKey().Equals(o.PublicKey())
}

// Zero wipes the private key.
func (k *Keypair) Zero() {
	secure.Zero(k.private)
}
