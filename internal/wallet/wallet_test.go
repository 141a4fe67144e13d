package wallet

import (
	"bytes"
	"crypto/rand"
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/shardwallet/internal/format"
	"github.com/AlexZinkM/shardwallet/internal/keypair"
	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/pwhash"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPWHash(t *testing.T) pwhash.PWHash {
	t.Helper()
	h, err := pwhash.NewArgon2id(1, 1024, 1)
	require.NoError(t, err)
	return h
}

func basicFormat(t *testing.T) format.Format {
	return format.NewBasic(testPWHash(t))
}

func shardedFormat(t *testing.T, n, k uint8) format.Format {
	t.Helper()
	f, err := format.NewSharded(testPWHash(t), n, k)
	require.NoError(t, err)
	return f
}

func newKeypair(t *testing.T) *keypair.Keypair {
	t.Helper()
	kp, err := keypair.Generate()
	require.NoError(t, err)
	return kp
}

// reread pushes a wallet through its file encoding.
func reread(t *testing.T, w *Wallet) *Wallet {
	t.Helper()
	data, err := w.MarshalBinary()
	require.NoError(t, err)
	got, err := Parse(data)
	require.NoError(t, err)
	return got
}

func TestEncryptDecrypt_Basic(t *testing.T) {
	kp := newKeypair(t)
	password := []byte("correct-horse")

	w, err := Encrypt(kp, password, basicFormat(t))
	require.NoError(t, err)
	assert.False(t, w.IsSharded())
	assert.Equal(t, kp.Address(), w.Address())

	got, err := reread(t, w).Decrypt(password)
	require.NoError(t, err)
	assert.Equal(t, kp.PrivateKey(), got.PrivateKey())
}

func TestEncryptDecrypt_Sharded(t *testing.T) {
	kp := newKeypair(t)
	password := []byte("correct-horse")

	w, err := Encrypt(kp, password, shardedFormat(t, 3, 2))
	require.NoError(t, err)
	assert.True(t, w.IsSharded())
	assert.Len(t, w.KeyShares(), 3)

	got, err := w.Decrypt(password)
	require.NoError(t, err)
	assert.Equal(t, kp.PrivateKey(), got.PrivateKey())
}

func TestEncrypt_DoesNotMutateFormat(t *testing.T) {
	f := shardedFormat(t, 3, 2)
	_, err := Encrypt(newKeypair(t), []byte("pw"), f)
	require.NoError(t, err)
	assert.Empty(t, f.(*format.Sharded).KeyShares())
}

func TestEncrypt_DealsFreshShares(t *testing.T) {
	kp := newKeypair(t)
	password := []byte("pw")

	old, err := Encrypt(kp, password, shardedFormat(t, 3, 2))
	require.NoError(t, err)
	oldShards, err := old.Shards()
	require.NoError(t, err)

	upgraded, err := Upgrade(old, password, oldShards[1].Format())
	require.NoError(t, err)
	shares := upgraded.KeyShares()
	require.Len(t, shares, 3)
	assert.NotContains(t, shares, oldShards[1].KeyShares()[0])

	shards, err := upgraded.Shards()
	require.NoError(t, err)
	got, err := Recover([]*Wallet{reread(t, shards[0]), reread(t, shards[2])}, password)
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), got.Address())
}

func TestDecrypt_WrongPassword(t *testing.T) {
	kp := newKeypair(t)
	password := []byte("correct-horse")

	for name, f := range map[string]format.Format{
		"basic":   basicFormat(t),
		"sharded": shardedFormat(t, 2, 2),
	} {
		t.Run(name, func(t *testing.T) {
			w, err := Encrypt(kp, password, f)
			require.NoError(t, err)

			for i := 0; i < 16; i++ {
				other := make([]byte, 1+i)
				_, err := rand.Read(other)
				require.NoError(t, err)
				if bytes.Equal(other, password) {
					continue
				}
				got, err := w.Decrypt(other)
				assert.ErrorIs(t, err, model.ErrDecryptionFailed)
				assert.Nil(t, got)
			}
		})
	}
}

func TestScenario_CorrectHorse(t *testing.T) {
	kp := newKeypair(t)

	basic, err := Encrypt(kp, []byte("correct-horse"), basicFormat(t))
	require.NoError(t, err)
	_, err = basic.Decrypt([]byte("correct-horse"))
	require.NoError(t, err)
	_, err = basic.Decrypt([]byte("wrong-password"))
	require.ErrorIs(t, err, model.ErrDecryptionFailed)

	sharded, err := Upgrade(basic, []byte("correct-horse"), shardedFormat(t, 3, 2))
	require.NoError(t, err)
	shards, err := sharded.Shards()
	require.NoError(t, err)
	require.Len(t, shards, 3)

	got, err := Recover([]*Wallet{reread(t, shards[0]), reread(t, shards[2])}, []byte("correct-horse"))
	require.NoError(t, err)
	assert.Equal(t, basic.Address(), got.Address())
}

func TestShards_ThreeOfFive(t *testing.T) {
	kp := newKeypair(t)
	password := []byte("pw")

	w, err := Encrypt(kp, password, shardedFormat(t, 5, 3))
	require.NoError(t, err)
	shards, err := w.Shards()
	require.NoError(t, err)
	require.Len(t, shards, 5)

	onDisk := make([]*Wallet, len(shards))
	for i, s := range shards {
		onDisk[i] = reread(t, s)
		assert.Equal(t, kp.Address(), onDisk[i].Address(), "address readable without password")
		assert.Len(t, onDisk[i].KeyShares(), 1)
	}

	for a := 0; a < 5; a++ {
		for b := a + 1; b < 5; b++ {
			_, err := Recover([]*Wallet{onDisk[a], onDisk[b]}, password)
			assert.ErrorIs(t, err, model.ErrInsufficientShares)

			for c := b + 1; c < 5; c++ {
				got, err := Recover([]*Wallet{onDisk[a], onDisk[b], onDisk[c]}, password)
				require.NoError(t, err)
				assert.Equal(t, kp.Address(), got.Address())
			}
		}
	}
}

func TestShards_Duplicates(t *testing.T) {
	w, err := Encrypt(newKeypair(t), []byte("pw"), shardedFormat(t, 5, 3))
	require.NoError(t, err)
	shards, err := w.Shards()
	require.NoError(t, err)

	_, err = Recover([]*Wallet{shards[0], shards[0], shards[1]}, []byte("pw"))
	assert.ErrorIs(t, err, model.ErrInvalidShare)

	_, err = Combine([]*Wallet{shards[0], shards[1], shards[2], shards[1]})
	assert.ErrorIs(t, err, model.ErrInvalidShare)
}

func TestShards_SingleShardNotDecryptable(t *testing.T) {
	w, err := Encrypt(newKeypair(t), []byte("pw"), shardedFormat(t, 3, 2))
	require.NoError(t, err)
	shards, err := w.Shards()
	require.NoError(t, err)

	_, err = reread(t, shards[1]).Decrypt([]byte("pw"))
	assert.ErrorIs(t, err, model.ErrInsufficientShares)
}

func TestShards_MixedWallets(t *testing.T) {
	a, err := Encrypt(newKeypair(t), []byte("pw"), shardedFormat(t, 3, 2))
	require.NoError(t, err)
	b, err := Encrypt(newKeypair(t), []byte("pw"), shardedFormat(t, 3, 2))
	require.NoError(t, err)

	as, err := a.Shards()
	require.NoError(t, err)
	bs, err := b.Shards()
	require.NoError(t, err)

	_, err = Combine([]*Wallet{as[0], bs[1]})
	assert.ErrorIs(t, err, model.ErrInvalidShare)

	basic, err := Encrypt(newKeypair(t), []byte("pw"), basicFormat(t))
	require.NoError(t, err)
	_, err = Combine([]*Wallet{as[0], basic})
	assert.ErrorIs(t, err, model.ErrInvalidShare)

	_, err = basic.Shards()
	assert.ErrorIs(t, err, model.ErrFormat)

	_, err = Combine(nil)
	assert.ErrorIs(t, err, model.ErrInsufficientShares)
}

func TestWrite_ShardedNeedsSingleShare(t *testing.T) {
	w, err := Encrypt(newKeypair(t), []byte("pw"), shardedFormat(t, 3, 2))
	require.NoError(t, err)

	_, err = w.MarshalBinary()
	assert.ErrorIs(t, err, model.ErrFormat)
}

func TestUpgrade_AddressInvariant(t *testing.T) {
	kp := newKeypair(t)
	password := []byte("pw")

	old, err := Encrypt(kp, password, basicFormat(t))
	require.NoError(t, err)

	for name, f := range map[string]format.Format{
		"basic":   basicFormat(t),
		"sharded": shardedFormat(t, 4, 2),
	} {
		t.Run(name, func(t *testing.T) {
			upgraded, err := Upgrade(old, password, f)
			require.NoError(t, err)
			assert.Equal(t, kp.Address(), upgraded.Address())
			assert.False(t, upgraded.PWHash().Equal(old.PWHash()))

			got, err := upgraded.Decrypt(password)
			require.NoError(t, err)
			assert.Equal(t, kp.Address(), got.Address())
		})
	}

	_, err = Upgrade(old, []byte("nope"), basicFormat(t))
	assert.ErrorIs(t, err, model.ErrDecryptionFailed)
}

func TestParse_Layout(t *testing.T) {
	kp := newKeypair(t)
	w, err := Encrypt(kp, []byte("pw"), basicFormat(t))
	require.NoError(t, err)

	data, err := w.MarshalBinary()
	require.NoError(t, err)

	pw, err := w.PWHash().MarshalBinary()
	require.NoError(t, err)

	require.Len(t, data, 1+len(pw)+publicKeySize+nonceSize+ciphertextSize)
	assert.Equal(t, byte(format.KindBasic), data[0])
	assert.Equal(t, pw, data[1:1+len(pw)])
	assert.Equal(t, kp.PublicKey().Bytes(), data[1+len(pw):1+len(pw)+publicKeySize])
}

func TestParse_Errors(t *testing.T) {
	w, err := Encrypt(newKeypair(t), []byte("pw"), basicFormat(t))
	require.NoError(t, err)
	good, err := w.MarshalBinary()
	require.NoError(t, err)

	unknownTag := bytes.Clone(good)
	unknownTag[0] = 0x09

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown tag", unknownTag},
		{"truncated", good[:len(good)-1]},
		{"trailing bytes", append(bytes.Clone(good), 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			assert.ErrorIs(t, err, model.ErrFormat)
		})
	}
}

func TestDecrypt_Tampered(t *testing.T) {
	kp := newKeypair(t)
	w, err := Encrypt(kp, []byte("pw"), basicFormat(t))
	require.NoError(t, err)
	good, err := w.MarshalBinary()
	require.NoError(t, err)

	pwLen := len(good) - 1 - publicKeySize - nonceSize - ciphertextSize
	offsets := map[string]int{
		"public key": 1 + pwLen,
		"nonce":      1 + pwLen + publicKeySize,
		"ciphertext": 1 + pwLen + publicKeySize + nonceSize,
		"tag":        len(good) - 1,
	}
	for name, off := range offsets {
		t.Run(name, func(t *testing.T) {
			data := bytes.Clone(good)
			data[off] ^= 0x01

			tampered, err := Parse(data)
			require.NoError(t, err)
			_, err = tampered.Decrypt([]byte("pw"))
			assert.ErrorIs(t, err, model.ErrDecryptionFailed)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	kp := newKeypair(t)
	password := []byte("pw")

	w, err := Encrypt(kp, password, basicFormat(t))
	require.NoError(t, err)

	path := filepath.Join(dir, "wallet.key")
	require.NoError(t, w.Save(path, false))

	err = w.Save(path, false)
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
	require.NoError(t, w.Save(path, true))

	loaded, err := Load(path)
	require.NoError(t, err)
	got, err := loaded.Decrypt(password)
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), got.Address())

	_, err = Load(filepath.Join(dir, "missing.key"))
	assert.ErrorIs(t, err, model.ErrIO)

	_, err = Load()
	assert.Error(t, err)
}

func TestSaveLoad_Shards(t *testing.T) {
	dir := t.TempDir()
	kp := newKeypair(t)

	w, err := Encrypt(kp, []byte("pw"), shardedFormat(t, 3, 2))
	require.NoError(t, err)
	shards, err := w.Shards()
	require.NoError(t, err)

	var paths []string
	for i, s := range shards {
		p := filepath.Join(dir, "wallet.key."+string(rune('1'+i)))
		require.NoError(t, s.Save(p, false))
		paths = append(paths, p)
	}

	combined, err := Load(paths[1], paths[2])
	require.NoError(t, err)
	got, err := combined.Decrypt([]byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), got.Address())
}
