package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Passwords are never read from flags; they come from WALLET_PASSWORD or a
// terminal prompt.
type Config struct {
	Port           string   `envconfig:"PORT" default:"8080"`
	SolanaRPCURL   string   `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	CoinGeckoURL   string   `envconfig:"COINGECKO_URL" default:"https://api.coingecko.com/api/v3"`
	RateCurrency   string   `envconfig:"RATE_CURRENCY" default:"usd"`
	LogLevel       string   `envconfig:"LOG_LEVEL" default:"info"`
	WalletPassword string   `envconfig:"WALLET_PASSWORD"`
	WalletFiles    []string `envconfig:"WALLET_FILES"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	cfg = c
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// ErrNoTerminal is returned when a secret must be prompted for but stdin is
// not a terminal.
var ErrNoTerminal = errors.New("stdin is not a terminal: run interactively or set WALLET_PASSWORD")

// ReadPassword returns the wallet password from WALLET_PASSWORD, or prompts
// for it on the terminal without echo. With confirm the prompt is repeated
// and both entries must match. Caller must zero the returned slice.
func ReadPassword(confirm bool) ([]byte, error) {
	if pw := Get().WalletPassword; pw != "" {
		return []byte(pw), nil
	}

	password, err := promptHidden("Enter wallet password: ")
	if err != nil {
		return nil, err
	}
	if len(password) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	if !confirm {
		return password, nil
	}

	again, err := promptHidden("Confirm wallet password: ")
	if err != nil {
		clear(password)
		return nil, err
	}
	defer clear(again)
	if string(again) != string(password) {
		clear(password)
		return nil, errors.New("passwords do not match")
	}
	return password, nil
}

// ReadSeedWords prompts for space separated seed words without echo.
func ReadSeedWords() ([]string, error) {
	raw, err := promptHidden("Enter seed words: ")
	if err != nil {
		return nil, err
	}
	defer clear(raw)
	return strings.Fields(string(raw)), nil
}

// ReadSeedWordsFrom reads one line of seed words from r.
func ReadSeedWordsFrom(r io.Reader) ([]string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read seed words: %w", err)
	}
	return strings.Fields(line), nil
}

func promptHidden(prompt string) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, ErrNoTerminal
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	clear(raw)
	return out, nil
}
