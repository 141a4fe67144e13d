package config

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestInit_Defaults(t *testing.T) {
	unsetenv(t, "PORT", "SOLANA_RPC_URL", "RATE_CURRENCY", "LOG_LEVEL", "WALLET_PASSWORD", "WALLET_FILES")
	require.NoError(t, Init())

	c := Get()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "usd", c.RateCurrency)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "https://api.mainnet-beta.solana.com", c.SolanaRPCURL)
	assert.Empty(t, c.WalletFiles)
}

func TestInit_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("RATE_CURRENCY", "rub")
	t.Setenv("WALLET_FILES", "a.key.1,a.key.2")
	require.NoError(t, Init())

	c := Get()
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, "rub", c.RateCurrency)
	assert.Equal(t, []string{"a.key.1", "a.key.2"}, c.WalletFiles)
}

func TestReadPassword_FromEnv(t *testing.T) {
	t.Setenv("WALLET_PASSWORD", "correct-horse")
	require.NoError(t, Init())

	pw, err := ReadPassword(true)
	require.NoError(t, err)
	assert.Equal(t, "correct-horse", string(pw))
}

func TestReadSeedWordsFrom(t *testing.T) {
	words, err := ReadSeedWordsFrom(strings.NewReader("  abandon  ability\table \nignored"))
	require.NoError(t, err)
	assert.Equal(t, []string{"abandon", "ability", "able"}, words)

	words, err = ReadSeedWordsFrom(strings.NewReader("zoo"))
	require.NoError(t, err)
	assert.Equal(t, []string{"zoo"}, words)
}
