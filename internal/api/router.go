package api

import (
	"net/http"
	"strconv"

	"github.com/AlexZinkM/shardwallet/internal/handler"
	"github.com/AlexZinkM/shardwallet/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRouter sets up router with handlers
func SetupRouter(walletHandler *handler.WalletHandler) http.Handler {
	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)
	mux.Handle("/metrics", promhttp.Handler())

	// Wallet endpoints
	mux.Handle("/wallet/info", instrument("/wallet/info", walletHandler.Info))
	mux.Handle("/wallet/verify", instrument("/wallet/verify", walletHandler.Verify))
	mux.Handle("/wallet/balance", instrument("/wallet/balance", walletHandler.Balance))
	mux.Handle("/wallet/qr", instrument("/wallet/qr", walletHandler.QR))

	return mux
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
