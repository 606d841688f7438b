package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"proxysmith/internal/generator"
	"proxysmith/internal/httpapi"
	"proxysmith/internal/liveness"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve convert, generate, subscription and probe endpoints over HTTP.

Routes live under /api/v1; /healthz and /metrics are served at the root.
Probing and subscription validation are disabled when no checker is
configured.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := appInstance.Logger
		cfg := appInstance.Config
		if addr, _ := cmd.Flags().GetString("listen"); addr != "" {
			cfg.Listen = addr
		}
		origins, _ := cmd.Flags().GetStringSlice("allowed-origin")

		srvCfg := httpapi.Config{
			Codecs: appInstance.Codecs,
			Scheduler: liveness.SchedulerConfig{
				Slots:     cfg.Probe.Slots,
				BatchSize: cfg.Probe.BatchSize,
				Timeout:   cfg.Probe.Timeout,
				Logger:    log.Named("probe"),
			},
			AllowedOrigins: origins,
			Logger:         log.Named("http"),
		}

		checker, err := appInstance.Checker()
		if err != nil {
			log.Warn("liveness checker unavailable, probing disabled", zap.Error(err))
		} else {
			srvCfg.Checker = checker
			validator, err := appInstance.NewValidator()
			if err != nil {
				return err
			}
			srvCfg.Validator = generator.Validator(validator)
		}

		server := &http.Server{
			Addr:              cfg.Listen,
			Handler:           httpapi.NewServer(srvCfg).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Info("server running", zap.String("addr", cfg.Listen))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("shutdown signal received, starting graceful shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringP("listen", "l", "", "listen address (default: listen from config)")
	serveCmd.Flags().StringSlice("allowed-origin", nil, "CORS allowed origins (default: *)")

	rootCmd.AddCommand(serveCmd)
}
