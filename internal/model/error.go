package model

import "errors"

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error kinds returned by the wallet core. Callers test them with errors.Is;
// the concrete error carries the detail.
var (
	// ErrFormat is an unrecognized or corrupt on-disk tag or parameter set.
	ErrFormat = errors.New("invalid wallet format")

	// ErrUnsupportedKeyLength is a format error for a key length the
	// configured password hash cannot produce.
	ErrUnsupportedKeyLength = errors.New("unsupported key length")

	// ErrDecryptionFailed covers both a wrong password and a corrupted
	// ciphertext. The two are indistinguishable on purpose.
	ErrDecryptionFailed = errors.New("decryption failed")

	ErrInvalidMnemonic    = errors.New("invalid mnemonic")
	ErrInsufficientShares = errors.New("insufficient key shares")
	ErrInvalidShare       = errors.New("invalid key share")

	ErrIO            = errors.New("i/o error")
	ErrAlreadyExists = errors.New("file already exists")
)

// ErrorCode maps an error onto the stable code used in API responses.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedKeyLength), errors.Is(err, ErrFormat):
		return "FORMAT_ERROR"
	case errors.Is(err, ErrDecryptionFailed):
		return "DECRYPTION_FAILED"
	case errors.Is(err, ErrInvalidMnemonic):
		return "INVALID_MNEMONIC"
	case errors.Is(err, ErrInsufficientShares):
		return "INSUFFICIENT_SHARES"
	case errors.Is(err, ErrInvalidShare):
		return "INVALID_SHARE"
	case errors.Is(err, ErrAlreadyExists):
		return "ALREADY_EXISTS"
	case errors.Is(err, ErrIO):
		return "IO_ERROR"
	default:
		return "INTERNAL"
	}
}
