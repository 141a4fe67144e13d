package model

// BalanceResponse represents one row of GET /wallet/balance
type BalanceResponse struct {
	Address  string `json:"address"`
	SOL      string `json:"sol,omitempty"`
	USDC     string `json:"usdc,omitempty"`
	Rate     string `json:"rate,omitempty"`
	Currency string `json:"currency,omitempty"`
	Value    string `json:"usdc_value,omitempty"`
	Error    string `json:"error,omitempty"`
}
