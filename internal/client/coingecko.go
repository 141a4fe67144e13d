package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	coingeckoAPI = "https://api.coingecko.com/api/v3"
	usdcCoinID   = "usd-coin"
)

// CoinGeckoClient client for CoinGecko API
type CoinGeckoClient struct {
	baseURL string
	client  *http.Client
}

// NewCoinGeckoClient creates a new CoinGecko client. An empty baseURL uses
// the public API.
func NewCoinGeckoClient(baseURL string) *CoinGeckoClient {
	if baseURL == "" {
		baseURL = coingeckoAPI
	}
	return &CoinGeckoClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetUSDCRate gets the USDC exchange rate in currency (e.g. "usd", "rub").
func (c *CoinGeckoClient) GetUSDCRate(ctx context.Context, currency string) (string, error) {
	currency = strings.ToLower(currency)
	q := url.Values{}
	q.Set("ids", usdcCoinID)
	q.Set("vs_currencies", currency)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build rate request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to get rate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to get rate: status %d", resp.StatusCode)
	}

	// {"usd-coin":{"rub":90.1}}
	var priceResp map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&priceResp); err != nil {
		return "", fmt.Errorf("failed to decode rate: %w", err)
	}
	rate, ok := priceResp[usdcCoinID][currency]
	if !ok {
		return "", fmt.Errorf("no %s rate in response", currency)
	}
	return strconv.FormatFloat(rate, 'f', 2, 64), nil
}
