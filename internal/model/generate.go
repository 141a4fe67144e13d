package model

// CreateResponse represents the result of creating or upgrading a wallet
type CreateResponse struct {
	Address  string   `json:"address"`
	Format   string   `json:"format"`
	PWHash   string   `json:"pwhash"`
	Files    []string `json:"files"`
	Mnemonic []string `json:"mnemonic,omitempty"`
}
