// Package format defines the on-disk wallet variants.
//
// Format is a closed set: Basic and Sharded. The wallet envelope dispatches on
// Kind through New; a new variant is added here without touching the wallet
// package's API.
package format

import (
	"fmt"

	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/pwhash"

	bin "github.com/gagliardetto/binary"
)

// Kind is the leading tag byte of a wallet file.
type Kind uint8

const (
	KindBasic   Kind = 0x01
	KindSharded Kind = 0x02
)

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindSharded:
		return "sharded"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(k))
	}
}

// Format turns a password into the wallet's symmetric key and carries the
// variant specific header.
type Format interface {
	Kind() Kind
	PWHash() pwhash.PWHash

	// DeriveKey fills key from password.
	DeriveKey(password, key []byte) error

	// ReadHeader and WriteHeader handle only the variant metadata that
	// follows the password hash block.
	ReadHeader(dec *bin.Decoder) error
	WriteHeader(enc *bin.Encoder) error

	// AuthData is the variant metadata bound into the cipher's
	// additional data.
	AuthData() []byte

	Clone() Format

	sealed()
}

// New returns an empty variant for a tag read from disk.
func New(kind Kind, h pwhash.PWHash) (Format, error) {
	switch kind {
	case KindBasic:
		return NewBasic(h), nil
	case KindSharded:
		return &Sharded{pwhash: h}, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized format tag 0x%02x", model.ErrFormat, uint8(kind))
	}
}
