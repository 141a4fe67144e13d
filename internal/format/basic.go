package format

import (
	"github.com/AlexZinkM/shardwallet/internal/pwhash"

	bin "github.com/gagliardetto/binary"
)

// Basic derives the key straight from the password hash.
type Basic struct {
	pwhash pwhash.PWHash
}

func NewBasic(h pwhash.PWHash) *Basic {
	return &Basic{pwhash: h}
}

func (b *Basic) Kind() Kind { return KindBasic }

func (b *Basic) PWHash() pwhash.PWHash { return b.pwhash }

func (b *Basic) AuthData() []byte { return nil }

func (b *Basic) Clone() Format { return &Basic{pwhash: b.pwhash} }

func (b *Basic) ReadHeader(*bin.Decoder) error { return nil }

func (b *Basic) WriteHeader(*bin.Encoder) error { return nil }

func (b *Basic) DeriveKey(password, key []byte) error {
	return b.pwhash.Derive(password, key)
}

func (b *Basic) sealed() {}
