// Package pwhash derives symmetric keys from passwords.
//
// A PWHash is self-describing: the algorithm tag, salt and cost parameters are
// serialized together so a stored wallet can re-derive the exact same key.
//
// Wire layout (little-endian):
//
//	algo u8
//	argon2id: salt[16] time u32 memoryKiB u32 threads u8
//	scrypt:   salt[32] logN u8 r u32 p u32
//	pbkdf2:   salt[16] iterations u32
package pwhash

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/secure"

	bin "github.com/gagliardetto/binary"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// Algorithm is the on-disk tag of a password hash.
type Algorithm uint8

const (
	Argon2id Algorithm = 1
	Scrypt   Algorithm = 2
	PBKDF2   Algorithm = 3
)

func (a Algorithm) String() string {
	switch a {
	case Argon2id:
		return "argon2id"
	case Scrypt:
		return "scrypt"
	case PBKDF2:
		return "pbkdf2-sha256"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

const (
	// Key lengths any algorithm here is allowed to produce.
	MinKeyLen = 16
	MaxKeyLen = 64

	argon2SaltLen = 16
	scryptSaltLen = 32
	pbkdf2SaltLen = 16

	// Default Argon2id cost: ~64MB RAM and well under a second on a
	// laptop, while keeping offline guessing memory-bound.
	defaultArgon2Time    = 3
	defaultArgon2Memory  = 64 * 1024
	defaultArgon2Threads = 4

	maxArgon2Time   = 64
	maxArgon2Memory = 4 * 1024 * 1024 // 4GB in KiB

	// scrypt N=2^18, r=8, p=1 matches the .cwt wallets.
	DefaultScryptLogN = 18
	DefaultScryptR    = 8
	DefaultScryptP    = 1

	minScryptLogN = 10
	maxScryptLogN = 22

	DefaultPBKDF2Iterations = 210_000
	minPBKDF2Iterations     = 1_000
	maxPBKDF2Iterations     = 100_000_000
)

// PWHash is an algorithm plus its salt and cost parameters. Only the fields
// of the selected algorithm are meaningful.
type PWHash struct {
	alg  Algorithm
	salt []byte

	// argon2id
	time    uint32
	memory  uint32
	threads uint8

	// scrypt
	logN uint8
	r, p uint32

	// pbkdf2
	iterations uint32
}

// Default returns Argon2id with the recommended interactive parameters and a
// freshly generated salt.
func Default() (PWHash, error) {
	return NewArgon2id(defaultArgon2Time, defaultArgon2Memory, defaultArgon2Threads)
}

// NewArgon2id returns an Argon2id hash with a random salt. memory is in KiB.
func NewArgon2id(time, memory uint32, threads uint8) (PWHash, error) {
	salt, err := randomSalt(argon2SaltLen)
	if err != nil {
		return PWHash{}, err
	}
	h := PWHash{alg: Argon2id, salt: salt, time: time, memory: memory, threads: threads}
	if err := h.validate(); err != nil {
		return PWHash{}, err
	}
	return h, nil
}

// NewScrypt returns a scrypt hash with N=2^logN and a random salt.
func NewScrypt(logN uint8, r, p uint32) (PWHash, error) {
	salt, err := randomSalt(scryptSaltLen)
	if err != nil {
		return PWHash{}, err
	}
	h := PWHash{alg: Scrypt, salt: salt, logN: logN, r: r, p: p}
	if err := h.validate(); err != nil {
		return PWHash{}, err
	}
	return h, nil
}

// NewScryptWithSalt is used when the salt already exists, as in .cwt files.
func NewScryptWithSalt(salt []byte, logN uint8, r, p uint32) (PWHash, error) {
	h := PWHash{alg: Scrypt, salt: bytes.Clone(salt), logN: logN, r: r, p: p}
	if err := h.validate(); err != nil {
		return PWHash{}, err
	}
	return h, nil
}

// NewPBKDF2 returns a PBKDF2-HMAC-SHA256 hash with a random salt.
func NewPBKDF2(iterations uint32) (PWHash, error) {
	salt, err := randomSalt(pbkdf2SaltLen)
	if err != nil {
		return PWHash{}, err
	}
	h := PWHash{alg: PBKDF2, salt: salt, iterations: iterations}
	if err := h.validate(); err != nil {
		return PWHash{}, err
	}
	return h, nil
}

// Algorithm returns the algorithm tag.
func (h PWHash) Algorithm() Algorithm {
	return h.alg
}

// Salt returns a copy of the salt.
func (h PWHash) Salt() []byte {
	return bytes.Clone(h.salt)
}

// Derive fills key with the hash of password. The output is deterministic for
// a given password, salt and parameter set.
func (h PWHash) Derive(password, key []byte) error {
	if len(key) < MinKeyLen || len(key) > MaxKeyLen {
		return fmt.Errorf("%w: %d bytes (want %d..%d)", model.ErrUnsupportedKeyLength, len(key), MinKeyLen, MaxKeyLen)
	}
	if err := h.validate(); err != nil {
		return err
	}

	var out []byte
	switch h.alg {
	case Argon2id:
		out = argon2.IDKey(password, h.salt, h.time, h.memory, h.threads, uint32(len(key)))
	case Scrypt:
		var err error
		out, err = scrypt.Key(password, h.salt, 1<<h.logN, int(h.r), int(h.p), len(key))
		if err != nil {
			return fmt.Errorf("failed to derive key: %w", err)
		}
	case PBKDF2:
		out = pbkdf2.Key(password, h.salt, int(h.iterations), len(key), sha256.New)
	}
	derived := secure.Wrap(out)
	defer derived.Destroy()

	copy(key, derived.Bytes())
	return nil
}

// Write serializes the algorithm tag, salt and parameters.
func (h PWHash) Write(enc *bin.Encoder) error {
	if err := h.validate(); err != nil {
		return err
	}
	if err := enc.WriteUint8(uint8(h.alg)); err != nil {
		return err
	}
	if err := enc.WriteBytes(h.salt, false); err != nil {
		return err
	}

	switch h.alg {
	case Argon2id:
		if err := enc.WriteUint32(h.time, binary.LittleEndian); err != nil {
			return err
		}
		if err := enc.WriteUint32(h.memory, binary.LittleEndian); err != nil {
			return err
		}
		return enc.WriteUint8(h.threads)
	case Scrypt:
		if err := enc.WriteUint8(h.logN); err != nil {
			return err
		}
		if err := enc.WriteUint32(h.r, binary.LittleEndian); err != nil {
			return err
		}
		return enc.WriteUint32(h.p, binary.LittleEndian)
	case PBKDF2:
		return enc.WriteUint32(h.iterations, binary.LittleEndian)
	}
	return nil
}

// MarshalBinary returns the serialized form written by Write.
func (h PWHash) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := h.Write(bin.NewBinEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read parses a PWHash written by Write. Unknown tags and out of range
// parameters are format errors.
func Read(dec *bin.Decoder) (PWHash, error) {
	tag, err := dec.ReadUint8()
	if err != nil {
		return PWHash{}, fmt.Errorf("%w: pwhash tag: %v", model.ErrFormat, err)
	}

	h := PWHash{alg: Algorithm(tag)}
	saltLen, err := h.alg.saltLen()
	if err != nil {
		return PWHash{}, err
	}
	salt, err := dec.ReadNBytes(saltLen)
	if err != nil {
		return PWHash{}, fmt.Errorf("%w: pwhash salt: %v", model.ErrFormat, err)
	}
	h.salt = bytes.Clone(salt)

	switch h.alg {
	case Argon2id:
		if h.time, err = dec.ReadUint32(binary.LittleEndian); err != nil {
			break
		}
		if h.memory, err = dec.ReadUint32(binary.LittleEndian); err != nil {
			break
		}
		h.threads, err = dec.ReadUint8()
	case Scrypt:
		if h.logN, err = dec.ReadUint8(); err != nil {
			break
		}
		if h.r, err = dec.ReadUint32(binary.LittleEndian); err != nil {
			break
		}
		h.p, err = dec.ReadUint32(binary.LittleEndian)
	case PBKDF2:
		h.iterations, err = dec.ReadUint32(binary.LittleEndian)
	}
	if err != nil {
		return PWHash{}, fmt.Errorf("%w: %s parameters: %v", model.ErrFormat, h.alg, err)
	}

	if err := h.validate(); err != nil {
		return PWHash{}, err
	}
	return h, nil
}

// Equal reports whether both hashes have the same algorithm, salt and
// parameters.
func (h PWHash) Equal(o PWHash) bool {
	return h.alg == o.alg && bytes.Equal(h.salt, o.salt) &&
		h.time == o.time && h.memory == o.memory && h.threads == o.threads &&
		h.logN == o.logN && h.r == o.r && h.p == o.p &&
		h.iterations == o.iterations
}

func (h PWHash) String() string {
	switch h.alg {
	case Argon2id:
		return fmt.Sprintf("argon2id(t=%d,m=%d,p=%d)", h.time, h.memory, h.threads)
	case Scrypt:
		return fmt.Sprintf("scrypt(N=2^%d,r=%d,p=%d)", h.logN, h.r, h.p)
	case PBKDF2:
		return fmt.Sprintf("pbkdf2-sha256(i=%d)", h.iterations)
	default:
		return h.alg.String()
	}
}

func (h PWHash) validate() error {
	want, err := h.alg.saltLen()
	if err != nil {
		return err
	}
	if len(h.salt) != want {
		return fmt.Errorf("%w: %s salt must be %d bytes, got %d", model.ErrFormat, h.alg, want, len(h.salt))
	}

	switch h.alg {
	case Argon2id:
		if h.time < 1 || h.time > maxArgon2Time {
			return fmt.Errorf("%w: argon2id time %d out of range", model.ErrFormat, h.time)
		}
		if h.threads < 1 {
			return fmt.Errorf("%w: argon2id needs at least one thread", model.ErrFormat)
		}
		if h.memory < 8*uint32(h.threads) || h.memory > maxArgon2Memory {
			return fmt.Errorf("%w: argon2id memory %dKiB out of range", model.ErrFormat, h.memory)
		}
	case Scrypt:
		if h.logN < minScryptLogN || h.logN > maxScryptLogN {
			return fmt.Errorf("%w: scrypt logN %d out of range", model.ErrFormat, h.logN)
		}
		if h.r < 1 || h.p < 1 || uint64(h.r)*uint64(h.p) >= 1<<30 {
			return fmt.Errorf("%w: scrypt r=%d p=%d out of range", model.ErrFormat, h.r, h.p)
		}
	case PBKDF2:
		if h.iterations < minPBKDF2Iterations || h.iterations > maxPBKDF2Iterations {
			return fmt.Errorf("%w: pbkdf2 iterations %d out of range", model.ErrFormat, h.iterations)
		}
	}
	return nil
}

func (a Algorithm) saltLen() (int, error) {
	switch a {
	case Argon2id:
		return argon2SaltLen, nil
	case Scrypt:
		return scryptSaltLen, nil
	case PBKDF2:
		return pbkdf2SaltLen, nil
	default:
		return 0, fmt.Errorf("%w: unknown pwhash algorithm %d", model.ErrFormat, uint8(a))
	}
}

func randomSalt(n int) ([]byte, error) {
	salt := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}
