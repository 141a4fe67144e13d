// Package legacy reads and writes the JSON .cwt wallet files: scrypt derived
// AES-256-GCM over a JSON payload holding the 64-byte private key.
package legacy

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/AlexZinkM/shardwallet/internal/keypair"
	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/pwhash"
	"github.com/AlexZinkM/shardwallet/internal/secure"

	"github.com/skip2/go-qrcode"
)

const (
	// Extension of legacy wallet files.
	Extension = ".cwt"

	network  = "solana"
	saltLen  = 32
	nonceLen = 12
	keyLen   = 32
)

// scrypt N=2^18, r=8, p=1 is fixed by the file format; only the salt is stored.
var scryptLogN uint8 = pwhash.DefaultScryptLogN

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// IsLegacy reports whether data looks like a .cwt JSON file rather than a
// binary wallet.
func IsLegacy(data []byte) bool {
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	return len(data) > 0 && data[0] == '{'
}

// ReadAddress reads only the address from .cwt data (without decryption).
func ReadAddress(data []byte) (string, error) {
	f, err := parse(data)
	if err != nil {
		return "", err
	}
	return f.Address, nil
}

// Decrypt opens .cwt data with password. A wrong password yields
// model.ErrDecryptionFailed.
func Decrypt(data, password []byte) (*keypair.Keypair, error) {
	f, err := parse(data)
	if err != nil {
		return nil, err
	}

	h, err := pwhashOf(f)
	if err != nil {
		return nil, err
	}
	nonce, err := base64.StdEncoding.DecodeString(f.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode nonce: %v", model.ErrFormat, err)
	}
	if len(nonce) != nonceLen {
		return nil, fmt.Errorf("%w: nonce length %d", model.ErrFormat, len(nonce))
	}
	ciphertext, err := base64.StdEncoding.DecodeString(f.CipherText)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode ciphertext: %v", model.ErrFormat, err)
	}

	aead, key, err := newAEAD(h, password)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	out, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, model.ErrDecryptionFailed
	}
	plaintext := secure.Wrap(out)
	defer plaintext.Destroy()

	kp, err := keypairOf(plaintext.Bytes())
	if err != nil {
		return nil, err
	}
	if kp.Address() != f.Address {
		kp.Zero()
		return nil, fmt.Errorf("%w: key does not match address %s", model.ErrDecryptionFailed, f.Address)
	}
	return kp, nil
}

// Encrypt produces .cwt data for kp, including the address QR code.
func Encrypt(kp *keypair.Keypair, password []byte) ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	h, err := pwhash.NewScryptWithSalt(salt, scryptLogN, pwhash.DefaultScryptR, pwhash.DefaultScryptP)
	if err != nil {
		return nil, err
	}
	aead, key, err := newAEAD(h, password)
	if err != nil {
		return nil, err
	}
	defer key.Destroy()

	// PrivateKey aliases kp; the keypair is the caller's to zero.
	raw, err := json.Marshal(&model.WalletData{
		PrivateKey: kp.PrivateKey(),
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal wallet data: %w", err)
	}
	plaintext := secure.Wrap(raw)
	defer plaintext.Destroy()

	qr, err := qrPNG(kp.Address())
	if err != nil {
		return nil, err
	}

	fileData, err := json.MarshalIndent(model.CWTFile{
		Network:    network,
		Address:    kp.Address(),
		QR:         qr,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		CipherText: base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plaintext.Bytes(), nil)),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cwt file: %w", err)
	}

	// BOM for proper display in Windows
	return append(bytes.Clone(utf8BOM), fileData...), nil
}

// keypairOf reads the decrypted payload. privateKey is base64 of the 64-byte
// key or of the 32-byte seed; the oldest files hold the seed as a hex string.
func keypairOf(payload []byte) (*keypair.Keypair, error) {
	var raw struct {
		PrivateKey string `json:"privateKey"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal wallet data: %v", model.ErrFormat, err)
	}

	key, err := decodePrivateKey(raw.PrivateKey)
	if err != nil {
		return nil, err
	}
	defer secure.Zero(key)

	switch len(key) {
	case keypair.SeedSize:
		var seed keypair.Seed
		defer seed.Zero()
		copy(seed[:], key)
		return keypair.FromSeed(&seed), nil
	default:
		kp, err := keypair.FromPrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrDecryptionFailed, err)
		}
		return kp, nil
	}
}

func decodePrivateKey(s string) ([]byte, error) {
	if len(s) == 2*keypair.SeedSize {
		if b, err := hex.DecodeString(s); err == nil {
			return b, nil
		}
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode private key: %v", model.ErrFormat, err)
	}
	return b, nil
}

// PWHash returns the password hash parameters of .cwt data.
func PWHash(data []byte) (pwhash.PWHash, error) {
	f, err := parse(data)
	if err != nil {
		return pwhash.PWHash{}, err
	}
	return pwhashOf(f)
}

func pwhashOf(f *model.CWTFile) (pwhash.PWHash, error) {
	salt, err := base64.StdEncoding.DecodeString(f.Salt)
	if err != nil {
		return pwhash.PWHash{}, fmt.Errorf("%w: failed to decode salt: %v", model.ErrFormat, err)
	}
	if len(salt) != saltLen {
		return pwhash.PWHash{}, fmt.Errorf("%w: salt length %d", model.ErrFormat, len(salt))
	}
	return pwhash.NewScryptWithSalt(salt, scryptLogN, pwhash.DefaultScryptR, pwhash.DefaultScryptP)
}

func parse(data []byte) (*model.CWTFile, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var f model.CWTFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal cwt file: %v", model.ErrFormat, err)
	}
	if f.Address == "" {
		return nil, fmt.Errorf("%w: cwt file has no address", model.ErrFormat)
	}
	return &f, nil
}

func newAEAD(h pwhash.PWHash, password []byte) (cipher.AEAD, *secure.Buffer, error) {
	key := secure.NewBuffer(keyLen)
	if err := h.Derive(password, key.Bytes()); err != nil {
		key.Destroy()
		return nil, nil, fmt.Errorf("failed to derive key: %w", err)
	}
	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		key.Destroy()
		return nil, nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		key.Destroy()
		return nil, nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, key, nil
}

// qrPNG returns the address QR code as base64 PNG.
func qrPNG(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}
	return base64.StdEncoding.EncodeToString(png), nil
}
