package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	usdcMintAddressMainnet = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v" // USDC mint address on Solana mainnet (does not work on devnet/testnet)
)

// Account is the on-chain state reported for one address.
type Account struct {
	Address     string
	SOLLamports uint64
	USDCMicro   uint64
	// HasUSDCAccount is false when the associated token account does not exist yet.
	HasUSDCAccount bool
}

// SolanaClient is a client for working with Solana RPC
type SolanaClient struct {
	rpcClient     *rpc.Client
	mintPublicKey solana.PublicKey
}

// NewSolanaClient creates a new Solana client for the given RPC endpoint.
func NewSolanaClient(rpcURL string) *SolanaClient {
	return &SolanaClient{
		rpcClient:     rpc.New(rpcURL),
		mintPublicKey: solana.MustPublicKeyFromBase58(usdcMintAddressMainnet),
	}
}

// GetAccount gets SOL (lamports) and USDC (micro units) balance for address.
// One query per call, no retry.
func (c *SolanaClient) GetAccount(ctx context.Context, address string) (*Account, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("invalid Solana address: %w", err)
	}

	lamports, err := c.getSOLBalanceLamports(ctx, owner)
	if err != nil {
		return nil, err
	}

	acc := &Account{Address: address, SOLLamports: lamports}
	acc.USDCMicro, err = c.getUSDCBalanceMicro(ctx, owner)
	switch {
	case errors.Is(err, errNoTokenAccount):
	case err != nil:
		return nil, err
	default:
		acc.HasUSDCAccount = true
	}
	return acc, nil
}

var errNoTokenAccount = errors.New("token account not found")

// getSOLBalanceLamports gets SOL balance in lamports
func (c *SolanaClient) getSOLBalanceLamports(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	balance, err := c.rpcClient.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get SOL balance: %w", err)
	}
	return balance.Value, nil
}

// getUSDCBalanceMicro gets USDC balance in micro units (10^-6 USDC)
func (c *SolanaClient) getUSDCBalanceMicro(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	ataAddress, _, err := solana.FindAssociatedTokenAddress(owner, c.mintPublicKey)
	if err != nil {
		return 0, fmt.Errorf("failed to find associated token account address: %w", err)
	}

	balance, err := c.rpcClient.GetTokenAccountBalance(ctx, ataAddress, rpc.CommitmentConfirmed)
	if err != nil {
		if isATANotFoundError(err) {
			return 0, errNoTokenAccount
		}
		return 0, fmt.Errorf("failed to get token account balance: %w", err)
	}

	if balance.Value == nil {
		return 0, nil
	}

	amount, err := strconv.ParseUint(balance.Value.Amount, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse USDC balance amount: %w", err)
	}
	return amount, nil
}

// isATANotFoundError checks if the RPC error means the token account does not exist
func isATANotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "could not find account") ||
		strings.Contains(errStr, "not found")
}
