// Package mnemonic converts BIP-39 English word phrases to entropy and back.
package mnemonic

import (
	"fmt"
	"strings"

	"github.com/AlexZinkM/shardwallet/internal/keypair"
	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/secure"

	"github.com/tyler-smith/go-bip39"
)

const (
	// EntropyBits of a freshly generated 24-word phrase.
	EntropyBits = 256

	shortEntropyLen = 16
)

// Generate returns a new 24-word phrase.
func Generate() ([]string, error) {
	entropy, err := bip39.NewEntropy(EntropyBits)
	if err != nil {
		return nil, fmt.Errorf("generate entropy: %w", err)
	}
	defer secure.Zero(entropy)
	return FromEntropy(entropy)
}

// FromEntropy encodes entropy as words. Only 16 or 32 bytes are accepted,
// the two sizes ToSeed can turn into a keypair.
func FromEntropy(entropy []byte) ([]string, error) {
	if len(entropy) != shortEntropyLen && len(entropy) != keypair.SeedSize {
		return nil, fmt.Errorf("entropy must be %d or %d bytes, got %d", shortEntropyLen, keypair.SeedSize, len(entropy))
	}
	phrase, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("generate mnemonic: %w", err)
	}
	return strings.Fields(phrase), nil
}

// ToEntropy validates word list membership and the checksum and returns the
// raw entropy.
func ToEntropy(words []string) ([]byte, error) {
	normalized := make([]string, 0, len(words))
	for _, w := range words {
		for _, f := range strings.Fields(w) {
			normalized = append(normalized, strings.ToLower(f))
		}
	}

	entropy, err := bip39.EntropyFromMnemonic(strings.Join(normalized, " "))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidMnemonic, err)
	}
	return entropy, nil
}

// ToSeed turns a 12 or 24 word phrase into a keypair seed. 24 words carry
// the 32 bytes directly; the 16 bytes of a 12-word phrase are repeated.
func ToSeed(words []string) (keypair.Seed, error) {
	var seed keypair.Seed

	entropy, err := ToEntropy(words)
	if err != nil {
		return seed, err
	}
	defer secure.Zero(entropy)

	switch len(entropy) {
	case keypair.SeedSize:
		copy(seed[:], entropy)
	case shortEntropyLen:
		copy(seed[:shortEntropyLen], entropy)
		copy(seed[shortEntropyLen:], entropy)
	default:
		return seed, fmt.Errorf("%w: %d words not supported, use 12 or 24", model.ErrInvalidMnemonic, len(words))
	}
	return seed, nil
}

// Keypair derives the wallet keypair for a phrase.
func Keypair(words []string) (*keypair.Keypair, error) {
	seed, err := ToSeed(words)
	if err != nil {
		return nil, err
	}
	defer seed.Zero()
	return keypair.FromSeed(&seed), nil
}
