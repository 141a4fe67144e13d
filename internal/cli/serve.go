package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexZinkM/shardwallet/internal/api"
	"github.com/AlexZinkM/shardwallet/internal/config"
	"github.com/AlexZinkM/shardwallet/internal/handler"
	"github.com/AlexZinkM/shardwallet/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve read-only wallet endpoints over HTTP",
		Long: `Serve read-only wallet endpoints for the files in WALLET_FILES:
GET /wallet/info, POST /wallet/verify, GET /wallet/balance, GET /wallet/qr,
plus /swagger/ and /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := config.Get()
			if port == "" {
				port = c.Port
			}

			walletHandler, err := handler.NewWalletHandler(c.WalletFiles, newBalances())
			if err != nil {
				return err
			}
			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           api.SetupRouter(walletHandler),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.L().Info("server listening", zap.String("addr", srv.Addr), zap.Strings("files", c.WalletFiles))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.L().Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (default $PORT)")
	return cmd
}
