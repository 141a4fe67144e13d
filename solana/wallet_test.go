package solana

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/shardwallet/internal/client"
	"github.com/AlexZinkM/shardwallet/internal/format"
	"github.com/AlexZinkM/shardwallet/internal/keypair"
	"github.com/AlexZinkM/shardwallet/internal/legacy"
	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/pwhash"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cheapFormat(t *testing.T, kind format.Kind, n, k uint8) FormatOptions {
	t.Helper()
	h, err := pwhash.NewArgon2id(1, 1024, 1)
	require.NoError(t, err)
	return FormatOptions{Kind: kind, Shares: n, Threshold: k, PWHash: h}
}

func createBasic(t *testing.T, dir, password string) *model.CreateResponse {
	t.Helper()
	resp, err := CreateWallet(CreateOptions{
		FormatOptions: cheapFormat(t, format.KindBasic, 0, 0),
		Output:        filepath.Join(dir, "wallet.key"),
		Password:      []byte(password),
	})
	require.NoError(t, err)
	return resp
}

func TestShardPath(t *testing.T) {
	assert.Equal(t, "wallet.key.1", ShardPath("wallet.key", 1))
	assert.Equal(t, "/tmp/w.key.12", ShardPath("/tmp/w.key", 12))
}

func TestCreateVerify_Basic(t *testing.T) {
	dir := t.TempDir()
	resp := createBasic(t, dir, "correct-horse")
	assert.Equal(t, "basic", resp.Format)
	require.Equal(t, []string{filepath.Join(dir, "wallet.key")}, resp.Files)
	assert.Empty(t, resp.Mnemonic)

	v, err := VerifyWallet(resp.Files, []byte("correct-horse"))
	require.NoError(t, err)
	assert.True(t, v.Verified)
	assert.Equal(t, resp.Address, v.Address)

	_, err = VerifyWallet(resp.Files, []byte("wrong-password"))
	assert.ErrorIs(t, err, model.ErrDecryptionFailed)

	_, err = CreateWallet(CreateOptions{
		FormatOptions: cheapFormat(t, format.KindBasic, 0, 0),
		Output:        resp.Files[0],
		Password:      []byte("pw"),
	})
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
}

func TestCreate_Sharded(t *testing.T) {
	dir := t.TempDir()
	resp, err := CreateWallet(CreateOptions{
		FormatOptions: cheapFormat(t, format.KindSharded, 3, 2),
		Output:        filepath.Join(dir, "wallet.key"),
		Password:      []byte("pw"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Files, 3)
	assert.Equal(t, filepath.Join(dir, "wallet.key.3"), resp.Files[2])
	assert.NoFileExists(t, filepath.Join(dir, "wallet.key"))

	v, err := VerifyWallet([]string{resp.Files[0], resp.Files[2]}, []byte("pw"))
	require.NoError(t, err)
	assert.True(t, v.Verified)
	assert.Equal(t, "sharded", v.Format)

	_, err = VerifyWallet(resp.Files[1:2], []byte("pw"))
	assert.ErrorIs(t, err, model.ErrInsufficientShares)

	info, err := WalletInfo(resp.Files[1:2])
	require.NoError(t, err)
	assert.Equal(t, resp.Address, info.Address)
	assert.Equal(t, uint8(3), info.KeyShareCount)
	assert.Equal(t, uint8(2), info.RecoveryThreshold)
	assert.Equal(t, []uint8{2}, info.ShareIndices)
}

func TestCreate_ShardTargetExists(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "wallet.key")
	require.NoError(t, os.WriteFile(ShardPath(base, 2), []byte("keep"), 0o600))

	_, err := CreateWallet(CreateOptions{
		FormatOptions: cheapFormat(t, format.KindSharded, 3, 2),
		Output:        base,
		Password:      []byte("pw"),
	})
	assert.ErrorIs(t, err, model.ErrAlreadyExists)
	assert.NoFileExists(t, ShardPath(base, 1))

	data, err := os.ReadFile(ShardPath(base, 2))
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func TestCreate_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateWallet(CreateOptions{
		FormatOptions: cheapFormat(t, format.KindBasic, 0, 0),
		Output:        filepath.Join(dir, "a.key"),
	})
	assert.Error(t, err)

	_, err = CreateWallet(CreateOptions{
		FormatOptions: cheapFormat(t, format.KindSharded, 2, 3),
		Output:        filepath.Join(dir, "b.key"),
		Password:      []byte("pw"),
	})
	assert.ErrorIs(t, err, model.ErrFormat)

	_, err = CreateWallet(CreateOptions{
		FormatOptions: cheapFormat(t, format.KindBasic, 0, 0),
		Output:        filepath.Join(dir, "c.key"),
		Password:      []byte("pw"),
		Seed:          []string{"abandon", "abandon"},
	})
	assert.ErrorIs(t, err, model.ErrInvalidMnemonic)
}

func TestCreate_Seed(t *testing.T) {
	dir := t.TempDir()

	shown, err := CreateWallet(CreateOptions{
		FormatOptions: cheapFormat(t, format.KindBasic, 0, 0),
		Output:        filepath.Join(dir, "a.key"),
		Password:      []byte("pw"),
		ShowSeed:      true,
	})
	require.NoError(t, err)
	require.Len(t, shown.Mnemonic, 24)

	restored, err := CreateWallet(CreateOptions{
		FormatOptions: cheapFormat(t, format.KindSharded, 2, 2),
		Output:        filepath.Join(dir, "b.key"),
		Password:      []byte("other"),
		Seed:          shown.Mnemonic,
	})
	require.NoError(t, err)
	assert.Equal(t, shown.Address, restored.Address)
	assert.Empty(t, restored.Mnemonic)
}

func TestUpgrade_BasicToSharded(t *testing.T) {
	dir := t.TempDir()
	created := createBasic(t, dir, "correct-horse")

	up, err := UpgradeWallet(UpgradeOptions{
		FormatOptions: cheapFormat(t, format.KindSharded, 3, 2),
		Inputs:        created.Files,
		Password:      []byte("correct-horse"),
	})
	require.NoError(t, err)
	require.Len(t, up.Files, 3)
	assert.Equal(t, created.Address, up.Address)

	v, err := VerifyWallet([]string{up.Files[0], up.Files[2]}, []byte("correct-horse"))
	require.NoError(t, err)
	assert.Equal(t, created.Address, v.Address)

	back, err := UpgradeWallet(UpgradeOptions{
		FormatOptions: cheapFormat(t, format.KindBasic, 0, 0),
		Inputs:        up.Files[1:],
		Output:        filepath.Join(dir, "restored.key"),
		Password:      []byte("correct-horse"),
	})
	require.NoError(t, err)
	assert.Equal(t, created.Address, back.Address)
}

func TestUpgrade_InPlace(t *testing.T) {
	dir := t.TempDir()
	created := createBasic(t, dir, "pw")
	before, err := os.ReadFile(created.Files[0])
	require.NoError(t, err)

	_, err = UpgradeWallet(UpgradeOptions{
		FormatOptions: cheapFormat(t, format.KindBasic, 0, 0),
		Inputs:        created.Files,
		Password:      []byte("nope"),
	})
	assert.ErrorIs(t, err, model.ErrDecryptionFailed)
	after, err := os.ReadFile(created.Files[0])
	require.NoError(t, err)
	assert.Equal(t, before, after, "failed upgrade must not touch the file")

	up, err := UpgradeWallet(UpgradeOptions{
		FormatOptions: cheapFormat(t, format.KindBasic, 0, 0),
		Inputs:        created.Files,
		Password:      []byte("pw"),
	})
	require.NoError(t, err)
	assert.Equal(t, created.Files, up.Files)

	after, err = os.ReadFile(created.Files[0])
	require.NoError(t, err)
	assert.NotEqual(t, before, after)
}

func TestUpgrade_InPlaceShardsKeepExisting(t *testing.T) {
	dir := t.TempDir()
	created := createBasic(t, dir, "pw")
	taken := ShardPath(created.Files[0], 1)
	require.NoError(t, os.WriteFile(taken, []byte("precious"), 0o600))

	_, err := UpgradeWallet(UpgradeOptions{
		FormatOptions: cheapFormat(t, format.KindSharded, 3, 2),
		Inputs:        created.Files,
		Password:      []byte("pw"),
	})
	assert.ErrorIs(t, err, model.ErrAlreadyExists)

	data, err := os.ReadFile(taken)
	require.NoError(t, err)
	assert.Equal(t, "precious", string(data))
	assert.NoFileExists(t, ShardPath(created.Files[0], 2))
	assert.FileExists(t, created.Files[0])

	up, err := UpgradeWallet(UpgradeOptions{
		FormatOptions: cheapFormat(t, format.KindSharded, 3, 2),
		Inputs:        created.Files,
		Force:         true,
		Password:      []byte("pw"),
	})
	require.NoError(t, err)
	assert.Equal(t, taken, up.Files[0])
}

func TestCreate_ForcedShardFailureKeepsPreviousSet(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "w.key")
	opts := CreateOptions{
		FormatOptions: cheapFormat(t, format.KindSharded, 3, 2),
		Output:        base,
		Password:      []byte("pw"),
	}
	first, err := CreateWallet(opts)
	require.NoError(t, err)

	before := make([][]byte, 2)
	for i := range before {
		before[i], err = os.ReadFile(first.Files[i])
		require.NoError(t, err)
	}
	require.NoError(t, os.Remove(first.Files[2]))
	require.NoError(t, os.MkdirAll(filepath.Join(first.Files[2], "child"), 0o700))

	opts.Force = true
	_, err = CreateWallet(opts)
	assert.ErrorIs(t, err, model.ErrIO)

	for i := range before {
		data, err := os.ReadFile(first.Files[i])
		require.NoError(t, err)
		assert.Equal(t, before[i], data)
	}

	v, err := VerifyWallet(first.Files[:2], []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, first.Address, v.Address)
}

func TestUpgrade_Legacy(t *testing.T) {
	if testing.Short() {
		t.Skip("legacy files use full-cost scrypt")
	}
	dir := t.TempDir()
	kp, err := keypair.Generate()
	require.NoError(t, err)
	data, err := legacy.Encrypt(kp, []byte("pw"))
	require.NoError(t, err)
	in := filepath.Join(dir, "wallet.cwt")
	require.NoError(t, os.WriteFile(in, data, 0o600))

	info, err := WalletInfo([]string{in})
	require.NoError(t, err)
	assert.Equal(t, "legacy", info.Format)
	assert.Equal(t, kp.Address(), info.Address)

	up, err := UpgradeWallet(UpgradeOptions{
		FormatOptions: cheapFormat(t, format.KindBasic, 0, 0),
		Inputs:        []string{in},
		Password:      []byte("pw"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "wallet.key")}, up.Files)
	assert.Equal(t, kp.Address(), up.Address)
}

type fakeAccounts map[string]*client.Account

func (f fakeAccounts) GetAccount(_ context.Context, address string) (*client.Account, error) {
	if acc, ok := f[address]; ok {
		return acc, nil
	}
	return nil, errors.New("rpc unavailable")
}

type fakeRates struct {
	rate string
	err  error
}

func (f fakeRates) GetUSDCRate(context.Context, string) (string, error) {
	return f.rate, f.err
}

func TestGetBalances(t *testing.T) {
	accounts := fakeAccounts{
		"a": {Address: "a", SOLLamports: 1_500_000_000, USDCMicro: 2_000_000, HasUSDCAccount: true},
	}
	b := &Balances{Accounts: accounts, Rates: fakeRates{rate: "90.00"}, Currency: "rub"}

	rows, err := b.GetBalances(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "1.500000000", rows[0].SOL)
	assert.Equal(t, "2.000000", rows[0].USDC)
	assert.Equal(t, "180.00", rows[0].Value)
	assert.Equal(t, "rub", rows[0].Currency)
	assert.Empty(t, rows[0].Error)

	assert.Equal(t, "b", rows[1].Address)
	assert.Equal(t, "rpc unavailable", rows[1].Error)

	_, err = b.GetBalances(context.Background(), nil)
	assert.Error(t, err)
}

func TestGetBalances_RateFailure(t *testing.T) {
	accounts := fakeAccounts{"a": {Address: "a", SOLLamports: 1}}
	b := &Balances{Accounts: accounts, Rates: fakeRates{err: errors.New("down")}, Currency: "usd"}

	rows, err := b.GetBalances(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, "0.000000001", rows[0].SOL)
	assert.Empty(t, rows[0].Value)
	assert.Empty(t, rows[0].Error)
}

func TestResolveAddresses(t *testing.T) {
	dir := t.TempDir()
	created := createBasic(t, dir, "pw")

	got := ResolveAddresses([]string{created.Files[0], "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"})
	assert.Equal(t, []string{created.Address, "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"}, got)
}
