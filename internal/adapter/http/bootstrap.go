package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.uber.org/zap"

	"userapp/internal/adapter/http/routes"
	"userapp/internal/adapter/logger"
	"userapp/internal/core/telemetry"
	"userapp/pkg/config"
)

const shutdownTimeout = 10 * time.Second

// StartServer serves the application until ctx is cancelled, then drains
// in-flight requests and closes the store.
func StartServer(ctx context.Context, cfg *config.AppConfig, metrics *telemetry.AppMetrics, log *logger.Logger) error {
	probe := telemetry.NewOTELProbe(slog.Default(), metrics)

	container, err := NewContainer(ctx, cfg, probe)

	if err != nil {
		return err
	}

	defer container.Close()

	router := routes.SetupRouter(routes.HandlersConfig{
		UserHandler:   container.UserHandler,
		HealthHandler: container.HealthHandler,
	}, metrics, log, cfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	log.Info(ctx, "Server starting",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.String("database_driver", cfg.Database.Driver),
		zap.Duration("mutation_delay", cfg.MutationDelay),
		zap.Bool("rate_limit_enabled", cfg.RateLimitEnabled),
		zap.Bool("https_enforced", cfg.EnforceHTTPS))

	errCh := make(chan error, 1)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
