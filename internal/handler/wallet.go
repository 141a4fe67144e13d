package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/AlexZinkM/shardwallet/internal/logger"
	"github.com/AlexZinkM/shardwallet/internal/model"
	"github.com/AlexZinkM/shardwallet/internal/render"
	"github.com/AlexZinkM/shardwallet/solana"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	defaultQRSize = 256
	maxQRSize     = 1024

	maxVerifyBody = 4 << 10
	// each verification holds one password hash in memory
	maxConcurrentVerify = 2
)

// WalletHandler serves read-only views of the configured wallet files
type WalletHandler struct {
	files    []string
	balances *solana.Balances
	verify   *semaphore.Weighted
}

// NewWalletHandler creates a new WalletHandler for one wallet file or a set
// of shard files
func NewWalletHandler(files []string, balances *solana.Balances) (*WalletHandler, error) {
	if len(files) == 0 {
		return nil, errors.New("WALLET_FILES not set")
	}
	return &WalletHandler{
		files:    files,
		balances: balances,
		verify:   semaphore.NewWeighted(maxConcurrentVerify),
	}, nil
}

// Info handles GET /wallet/info
// @Summary      Wallet info
// @Description  Address, format, password hash parameters and balance; no password needed
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.WalletInfo
// @Failure      422  {object}  model.ErrorResponse
// @Router       /wallet/info [get]
func (h *WalletHandler) Info(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	var (
		info *model.WalletInfo
		err  error
	)
	if h.balances != nil {
		info, err = h.balances.InfoWithBalance(r.Context(), h.files)
	} else {
		info, err = solana.WalletInfo(h.files)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Verify handles POST /wallet/verify
// @Summary      Verify wallet password
// @Description  Decrypts the wallet and checks the key against its address
// @Tags         wallet
// @Accept       json
// @Produce      json
// @Param        request  body      model.VerifyRequest  true  "Password"
// @Success      200      {object}  model.VerifyResponse
// @Failure      401      {object}  model.ErrorResponse
// @Failure      413      {object}  model.ErrorResponse
// @Router       /wallet/verify [post]
func (h *WalletHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	var req model.VerifyRequest
	body := http.MaxBytesReader(w, r.Body, maxVerifyBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, model.ErrorResponse{Error: err.Error(), Code: "BAD_REQUEST"})
			return
		}
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error(), Code: "BAD_REQUEST"})
		return
	}
	password := []byte(req.Password)
	defer clear(password)

	if err := h.verify.Acquire(r.Context(), 1); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, model.ErrorResponse{Error: err.Error(), Code: "UNAVAILABLE"})
		return
	}
	defer h.verify.Release(1)

	resp, err := solana.VerifyWallet(h.files, password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Balance handles GET /wallet/balance
// @Summary      Wallet balance
// @Description  SOL and USDC balance of the wallet address with the USDC rate
// @Tags         wallet
// @Produce      json
// @Success      200  {object}  model.BalanceResponse
// @Failure      502  {object}  model.ErrorResponse
// @Router       /wallet/balance [get]
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	info, err := solana.WalletInfo(h.files)
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := h.balances.GetBalances(r.Context(), []string{info.Address})
	if err != nil {
		writeError(w, err)
		return
	}
	if rows[0].Error != "" {
		writeJSON(w, http.StatusBadGateway, model.ErrorResponse{Error: rows[0].Error, Code: "UPSTREAM_ERROR"})
		return
	}
	writeJSON(w, http.StatusOK, rows[0])
}

// QR handles GET /wallet/qr
// @Summary      Address QR code
// @Description  PNG QR code of the wallet address
// @Tags         wallet
// @Produce      png
// @Param        size  query  int  false  "Image size in pixels"
// @Success      200
// @Router       /wallet/qr [get]
func (h *WalletHandler) QR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}

	size := defaultQRSize
	if s := r.URL.Query().Get("size"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 64 || n > maxQRSize {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "size must be between 64 and 1024", Code: "BAD_REQUEST"})
			return
		}
		size = n
	}

	info, err := solana.WalletInfo(h.files)
	if err != nil {
		writeError(w, err)
		return
	}
	png, err := render.QRPNG(info.Address, size)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.L().Warn("failed to write response", zap.Error(err))
	}
}

// writeError answers with the error code of err and a matching status.
func writeError(w http.ResponseWriter, err error) {
	code := model.ErrorCode(err)
	status := http.StatusInternalServerError
	switch code {
	case "DECRYPTION_FAILED":
		status = http.StatusUnauthorized
	case "FORMAT_ERROR", "INVALID_SHARE", "INSUFFICIENT_SHARES", "INVALID_MNEMONIC":
		status = http.StatusUnprocessableEntity
	case "ALREADY_EXISTS":
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logger.L().Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error(), Code: code})
}
