package solana

import (
	"context"
	"errors"

	"github.com/AlexZinkM/shardwallet/internal/client"
	"github.com/AlexZinkM/shardwallet/internal/common"
	"github.com/AlexZinkM/shardwallet/internal/logger"
	"github.com/AlexZinkM/shardwallet/internal/metrics"
	"github.com/AlexZinkM/shardwallet/internal/model"

	"go.uber.org/zap"
)

// AccountService returns the on-chain balances of an address.
type AccountService interface {
	GetAccount(ctx context.Context, address string) (*client.Account, error)
}

// RateService prices USDC in a fiat currency.
type RateService interface {
	GetUSDCRate(ctx context.Context, currency string) (string, error)
}

// Balances looks up addresses one query each, without retry or cache.
type Balances struct {
	Accounts AccountService
	// Rates is optional; without it no fiat value is reported.
	Rates    RateService
	Currency string
}

// GetBalances returns one row per address. A failed lookup is reported in
// the row's Error field instead of failing the whole call.
func (b *Balances) GetBalances(ctx context.Context, addresses []string) ([]model.BalanceResponse, error) {
	if len(addresses) == 0 {
		return nil, errors.New("no addresses given")
	}

	rate := ""
	if b.Rates != nil {
		r, err := b.Rates.GetUSDCRate(ctx, b.Currency)
		if err != nil {
			logger.L().Warn("failed to get rate", zap.String("currency", b.Currency), zap.Error(err))
		} else {
			rate = r
		}
	}

	rows := make([]model.BalanceResponse, 0, len(addresses))
	for _, addr := range addresses {
		row, err := b.balance(ctx, addr, rate)
		metrics.RecordOperation(metrics.OpBalance, err)
		if err != nil {
			logger.L().Warn("failed to get balance", zap.String("address", addr), zap.Error(err))
			row = model.BalanceResponse{Address: addr, Error: err.Error()}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (b *Balances) balance(ctx context.Context, address, rate string) (model.BalanceResponse, error) {
	acc, err := b.Accounts.GetAccount(ctx, address)
	if err != nil {
		return model.BalanceResponse{}, err
	}

	row := model.BalanceResponse{
		Address: address,
		SOL:     common.LamportsToSOL(acc.SOLLamports),
		USDC:    common.MicroToUSDC(acc.USDCMicro),
	}
	if rate != "" {
		value, err := common.USDCValue(acc.USDCMicro, rate)
		if err != nil {
			return model.BalanceResponse{}, err
		}
		row.Rate = rate
		row.Currency = b.Currency
		row.Value = value
	}
	return row, nil
}

// InfoWithBalance describes the wallet at paths together with the balance
// of its address. A failed lookup is reported in Balance.Error.
func (b *Balances) InfoWithBalance(ctx context.Context, paths []string) (*model.WalletInfo, error) {
	info, err := WalletInfo(paths)
	if err != nil {
		return nil, err
	}
	rows, err := b.GetBalances(ctx, []string{info.Address})
	if err != nil {
		return nil, err
	}
	info.Balance = &rows[0]
	return info, nil
}

// ResolveAddresses turns a mix of addresses and wallet file paths into
// addresses; anything that opens as a wallet is replaced by its address.
func ResolveAddresses(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if common.Exists(a) {
			if src, err := Open(a); err == nil {
				out = append(out, src.Address())
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
