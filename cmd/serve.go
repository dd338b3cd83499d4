package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "equipcare-hub.com/equipcare-hub/internal/http"
	"equipcare-hub.com/equipcare-hub/internal/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the EquipCare HTTP API and the optional maintenance log reconciler",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup("serve")
		if err != nil {
			return err
		}
		defer env.Close()

		cfg, logger := env.cfg, env.logger

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logService := services.NewLogService(env.store, env.retention, logger)
		reconciler := services.NewReconciler(
			logService,
			time.Duration(cfg.LogReconcileIntervalSeconds)*time.Second,
			logger,
		)

		handler := httpapi.NewHandler(
			services.NewTaskServices(env.store, env.retention, logger),
			logService,
			services.NewScheduleService(env.store, logger),
			services.NewPreferenceService(env.store),
			logger,
		)

		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		httpapi.Register(e, handler, cfg.RateLimit, logger)

		go func() {
			logger.Info("HTTP server listening", zap.String("addr", cfg.AppURL))
			if err := e.Start(cfg.AppURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("server stopped", zap.Error(err))
				stop()
			}
		}()

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown", zap.Error(err))
		}
		reconciler.Shutdown(shutdownCtx)

		logger.Info("HTTP server and reconciler shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
