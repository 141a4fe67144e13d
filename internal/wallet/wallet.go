// Package wallet is the encrypted envelope around a keypair.
//
// File layout (little-endian):
//
//	tag u8                 format.Kind
//	pwhash                 see package pwhash
//	variant header         Basic: empty; Sharded: N u8, K u8, KeyShare[33]
//	public key [32]
//	nonce      [12]
//	ciphertext [32] || GCM tag [16]
//
// The plaintext is the 32-byte ed25519 seed. The tag, variant metadata (but
// not the per-file share), password hash block and public key are bound as
// AES-GCM additional data.
package wallet

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/AlexZinkM/shardwallet/internal/format"
	"github.com/AlexZinkM/shardwallet/internal/keypair"
	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/pwhash"
	"github.com/AlexZinkM/shardwallet/internal/secure"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	keySize        = 32
	nonceSize      = 12
	tagSize        = 16
	publicKeySize  = 32
	ciphertextSize = keypair.SeedSize + tagSize
)

// Wallet owns a format and the encrypted key material.
type Wallet struct {
	format     format.Format
	publicKey  solana.PublicKey
	nonce      [nonceSize]byte
	ciphertext []byte
}

// Encrypt seals kp's seed under a key derived from password by f. f is
// cloned; for a sharded format the clone drops any shares f holds and
// carries N freshly dealt ones.
func Encrypt(kp *keypair.Keypair, password []byte, f format.Format) (*Wallet, error) {
	w := &Wallet{
		format:    f.Clone(),
		publicKey: kp.PublicKey(),
	}
	if s, ok := w.format.(*format.Sharded); ok {
		w.format = s.WithShares(nil)
	}
	if _, err := io.ReadFull(rand.Reader, w.nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	key := secure.NewBuffer(keySize)
	defer key.Destroy()
	if err := w.format.DeriveKey(password, key.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}

	aead, err := newAEAD(key.Bytes())
	if err != nil {
		return nil, err
	}
	aad, err := w.authData()
	if err != nil {
		return nil, err
	}

	var seed keypair.Seed
	defer seed.Zero()
	kp.Seed(&seed)

	w.ciphertext = aead.Seal(nil, w.nonce[:], seed[:], aad)
	return w, nil
}

// Decrypt re-derives the key from the stored parameters and opens the
// envelope. A wrong password and a corrupted file both yield
// model.ErrDecryptionFailed.
func (w *Wallet) Decrypt(password []byte) (*keypair.Keypair, error) {
	key := secure.NewBuffer(keySize)
	defer key.Destroy()
	if err := w.format.Clone().DeriveKey(password, key.Bytes()); err != nil {
		return nil, err
	}

	aead, err := newAEAD(key.Bytes())
	if err != nil {
		return nil, err
	}
	aad, err := w.authData()
	if err != nil {
		return nil, err
	}

	out, err := aead.Open(nil, w.nonce[:], w.ciphertext, aad)
	if err != nil {
		return nil, model.ErrDecryptionFailed
	}
	plaintext := secure.Wrap(out)
	defer plaintext.Destroy()

	if plaintext.Len() != keypair.SeedSize {
		return nil, model.ErrDecryptionFailed
	}
	var seed keypair.Seed
	defer seed.Zero()
	copy(seed[:], plaintext.Bytes())

	kp := keypair.FromSeed(&seed)
	if !kp.PublicKey().Equals(w.publicKey) {
		kp.Zero()
		return nil, model.ErrDecryptionFailed
	}
	return kp, nil
}

// Upgrade decrypts old and re-encrypts the keypair under f with the same
// password. Nothing is produced if the decrypt fails.
func Upgrade(old *Wallet, password []byte, f format.Format) (*Wallet, error) {
	kp, err := old.Decrypt(password)
	if err != nil {
		return nil, err
	}
	defer kp.Zero()
	return Encrypt(kp, password, f)
}

// Address returns the account address; no password is needed.
func (w *Wallet) Address() string {
	return w.publicKey.String()
}

// PublicKey returns the stored public key.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.publicKey
}

// Format returns the wallet's format.
func (w *Wallet) Format() format.Format {
	return w.format
}

// PWHash returns the password hash parameters.
func (w *Wallet) PWHash() pwhash.PWHash {
	return w.format.PWHash()
}

// IsSharded reports whether the format is Sharded.
func (w *Wallet) IsSharded() bool {
	return w.format.Kind() == format.KindSharded
}

// Write serializes the wallet in one write call.
func (w *Wallet) Write(out io.Writer) error {
	data, err := w.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("%w: %w", model.ErrIO, err)
	}
	return nil
}

// MarshalBinary returns the file bytes.
func (w *Wallet) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	enc := bin.NewBinEncoder(&buf)

	if err := enc.WriteUint8(uint8(w.format.Kind())); err != nil {
		return nil, err
	}
	if err := w.format.PWHash().Write(enc); err != nil {
		return nil, err
	}
	if err := w.format.WriteHeader(enc); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(w.publicKey[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(w.nonce[:], false); err != nil {
		return nil, err
	}
	if err := enc.WriteBytes(w.ciphertext, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Read parses a whole wallet file from r.
func Read(r io.Reader) (*Wallet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrIO, err)
	}
	return Parse(data)
}

// Parse decodes wallet file bytes. Unknown tags, bad parameters, short
// input and trailing bytes are model.ErrFormat.
func Parse(data []byte) (*Wallet, error) {
	dec := bin.NewBinDecoder(data)

	tag, err := dec.ReadUint8()
	if err != nil {
		return nil, fmt.Errorf("%w: empty wallet file", model.ErrFormat)
	}
	kind := format.Kind(tag)
	if _, err := format.New(kind, pwhash.PWHash{}); err != nil {
		return nil, err
	}
	h, err := pwhash.Read(dec)
	if err != nil {
		return nil, err
	}
	f, err := format.New(kind, h)
	if err != nil {
		return nil, err
	}
	if err := f.ReadHeader(dec); err != nil {
		return nil, err
	}

	w := &Wallet{format: f}
	pub, err := dec.ReadNBytes(publicKeySize)
	if err != nil {
		return nil, fmt.Errorf("%w: public key: %v", model.ErrFormat, err)
	}
	w.publicKey = solana.PublicKeyFromBytes(pub)

	nonce, err := dec.ReadNBytes(nonceSize)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", model.ErrFormat, err)
	}
	copy(w.nonce[:], nonce)

	ct, err := dec.ReadNBytes(ciphertextSize)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext: %v", model.ErrFormat, err)
	}
	w.ciphertext = bytes.Clone(ct)

	if dec.Remaining() > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", model.ErrFormat, dec.Remaining())
	}
	return w, nil
}

func (w *Wallet) authData() ([]byte, error) {
	h, err := w.format.PWHash().MarshalBinary()
	if err != nil {
		return nil, err
	}
	aad := make([]byte, 0, 1+len(h)+publicKeySize+2)
	aad = append(aad, uint8(w.format.Kind()))
	aad = append(aad, w.format.AuthData()...)
	aad = append(aad, h...)
	aad = append(aad, w.publicKey[:]...)
	return aad, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aead, nil
}
