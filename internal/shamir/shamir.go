// Package shamir splits a 32-byte secret into KeyShares with a (K,N) threshold.
//
// The secret is shared byte-wise over GF(2^8) with the AES reduction
// polynomial x^8+x^4+x^3+x+1 (0x11B) and generator 0x03. For each secret byte
// a random polynomial of degree K-1 with that byte as constant term is
// evaluated at x = 1..N. A KeyShare is the x coordinate followed by the 32
// evaluations. This layout is part of the wallet file format and must not
// change.
package shamir

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/secure"
)

const (
	// SecretSize is the size of a shared secret.
	SecretSize = 32
	// ShareSize is the size of a KeyShare: index byte + payload.
	ShareSize = 1 + SecretSize
)

// KeyShare is one share point: [index][payload].
type KeyShare [ShareSize]byte

// NewKeyShare copies a 33-byte slice into a KeyShare.
func NewKeyShare(b []byte) (KeyShare, error) {
	var s KeyShare
	if len(b) != ShareSize {
		return s, fmt.Errorf("%w: share must be %d bytes, got %d", model.ErrInvalidShare, ShareSize, len(b))
	}
	copy(s[:], b)
	return s, nil
}

// Index is the 1-based x coordinate.
func (s KeyShare) Index() byte {
	return s[0]
}

// Payload is the share value.
func (s KeyShare) Payload() []byte {
	return s[1:]
}

func (s KeyShare) String() string {
	return fmt.Sprintf("KeyShare(%d)", s.Index())
}

// Split deals n shares of secret, any k of which recover it.
func Split(secret *[SecretSize]byte, n, k uint8) ([]KeyShare, error) {
	if err := ValidateThreshold(n, k); err != nil {
		return nil, err
	}

	shares := make([]KeyShare, n)
	for i := range shares {
		shares[i][0] = byte(i + 1)
	}

	coeffs := secure.NewBuffer(int(k))
	defer coeffs.Destroy()
	c := coeffs.Bytes()

	for b := 0; b < SecretSize; b++ {
		c[0] = secret[b]
		if k > 1 {
			if _, err := io.ReadFull(rand.Reader, c[1:]); err != nil {
				return nil, fmt.Errorf("failed to generate coefficients: %w", err)
			}
		}
		for i := range shares {
			shares[i][1+b] = evaluate(c, shares[i][0])
		}
	}
	return shares, nil
}

// Combine recovers the secret from at least k shares with distinct indices.
// Nothing is interpolated unless the preconditions hold.
func Combine(shares []KeyShare, k uint8) (*[SecretSize]byte, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: threshold must be at least 1", model.ErrInvalidShare)
	}

	seen := make(map[byte]struct{}, len(shares))
	for _, s := range shares {
		if s.Index() == 0 {
			return nil, fmt.Errorf("%w: index 0 is reserved", model.ErrInvalidShare)
		}
		if _, dup := seen[s.Index()]; dup {
			return nil, fmt.Errorf("%w: duplicate index %d", model.ErrInvalidShare, s.Index())
		}
		seen[s.Index()] = struct{}{}
	}
	if len(shares) < int(k) {
		return nil, fmt.Errorf("%w: need %d, got %d", model.ErrInsufficientShares, k, len(shares))
	}

	points := shares[:k]
	secret := new([SecretSize]byte)
	for b := 0; b < SecretSize; b++ {
		secret[b] = interpolateAtZero(points, b)
	}
	return secret, nil
}

// ValidateThreshold checks 1 <= k <= n <= 255.
func ValidateThreshold(n, k uint8) error {
	if k < 1 {
		return fmt.Errorf("%w: recovery threshold must be at least 1", model.ErrFormat)
	}
	if n < k {
		return fmt.Errorf("%w: share count %d is below recovery threshold %d", model.ErrFormat, n, k)
	}
	return nil
}

// evaluate computes p(x) with Horner's method.
func evaluate(coeffs []byte, x byte) byte {
	result := coeffs[len(coeffs)-1]
	for i := len(coeffs) - 2; i >= 0; i-- {
		result = gfMul(result, x) ^ coeffs[i]
	}
	return result
}

// interpolateAtZero evaluates the Lagrange polynomial through the share
// points at x = 0 for one byte position.
func interpolateAtZero(points []KeyShare, b int) byte {
	var result byte
	for i := range points {
		xi := points[i][0]
		num, den := byte(1), byte(1)
		for j := range points {
			if i == j {
				continue
			}
			xj := points[j][0]
			num = gfMul(num, xj)
			den = gfMul(den, xi^xj)
		}
		result ^= gfMul(points[i][1+b], gfDiv(num, den))
	}
	return result
}

var (
	logTable [256]byte
	expTable [256]byte
)

func init() {
	var x byte = 1
	for i := 0; i < 255; i++ {
		expTable[i] = x
		logTable[x] = byte(i)
		x = mulSlow(x, 0x03)
	}
	expTable[255] = expTable[0]
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return expTable[(int(logTable[a])+int(logTable[b]))%255]
}

// gfDiv divides in GF(256); b is never zero because share indices are distinct.
func gfDiv(a, b byte) byte {
	if a == 0 {
		return 0
	}
	return expTable[(int(logTable[a])+255-int(logTable[b]))%255]
}

// mulSlow is the carry-less multiply used to build the tables.
func mulSlow(a, b byte) byte {
	var p byte
	for i := 0; i < 8; i++ {
		if b&1 != 0 {
			p ^= a
		}
		hi := a & 0x80
		a <<= 1
		if hi != 0 {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}
