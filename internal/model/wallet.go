package model

// CWTFile represents .cwt file structure
type CWTFile struct {
	Network    string `json:"network"`
	Address    string `json:"address"`
	QR         string `json:"QR"`
	Salt       string `json:"salt"`
	Nonce      string `json:"nonce"`
	CipherText string `json:"cipherText"`
}

// WalletData represents decrypted .cwt wallet data
type WalletData struct {
	PrivateKey []byte `json:"privateKey"` // 64 bytes ed25519 key (stored as base64 in JSON)
	CreatedAt  string `json:"createdAt"`
}

// WalletInfo represents response for GET /wallet/info
type WalletInfo struct {
	Address           string           `json:"address"`
	Format            string           `json:"format"`
	PWHash            string           `json:"pwhash"`
	KeyShareCount     uint8            `json:"key_share_count,omitempty"`
	RecoveryThreshold uint8            `json:"recovery_threshold,omitempty"`
	ShareIndices      []uint8          `json:"share_indices,omitempty"`
	Files             []string         `json:"files"`
	Balance           *BalanceResponse `json:"balance,omitempty"`
}

// VerifyRequest represents request for POST /wallet/verify
type VerifyRequest struct {
	Password string `json:"password"`
}

// VerifyResponse represents response for POST /wallet/verify
type VerifyResponse struct {
	Address  string   `json:"address"`
	Format   string   `json:"format"`
	PWHash   string   `json:"pwhash"`
	Files    []string `json:"files"`
	Verified bool     `json:"verified"`
}
