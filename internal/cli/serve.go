package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lazypower/pulse/internal/config"
	"github.com/lazypower/pulse/internal/di"
	"github.com/lazypower/pulse/internal/engine"
	"github.com/lazypower/pulse/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	container, err := newContainer()
	if err != nil {
		return fmt.Errorf("build container: %w", err)
	}
	defer di.Close(container)

	return container.Invoke(func(cfg *config.Config, srv *server.Server, eng *engine.Engine, logger *zap.Logger) error {
		if err := eng.StartScheduler(cfg.Cache.CleanupSchedule, cfg.Cache.RefreshSchedule); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer eng.Stop()

		addr := cfg.ListenAddr()
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           srv,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		done := make(chan os.Signal, 1)
		signal.Notify(done, os.Interrupt, syscall.SIGTERM)

		errc := make(chan error, 1)
		go func() {
			logger.Info("pulse serving",
				zap.String("addr", addr),
				zap.String("cache", cfg.Cache.Type),
				zap.Int("timeframe_days", cfg.Analysis.TimeframeDays))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
		}()

		select {
		case <-done:
		case err := <-errc:
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	})
}
