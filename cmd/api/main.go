package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	server "userapp/internal/adapter/http"
	"userapp/internal/adapter/logger"
	"userapp/internal/core/telemetry"
	"userapp/pkg/config"
)

const serviceVersion = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()

	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	appLogger, err := logger.New(cfg.ServiceName, cfg.LokiURL)

	if err != nil {
		log.Fatal("Failed to initialize logger: ", err)
	}

	defer appLogger.Sync()

	tel, err := telemetry.InitTelemetry(ctx, telemetry.TelemetryConfig{
		ServiceName:    cfg.ServiceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		MetricsPort:    cfg.MetricsPort,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})

	if err != nil {
		appLogger.Logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	defer tel.Shutdown(context.Background())

	metrics := telemetry.NewAppMetrics(tel.PrometheusRegistry)
	metrics.StartSystemMetrics(ctx)

	if err := server.StartServer(ctx, cfg, metrics, appLogger); err != nil {
		appLogger.Error(ctx, "Server stopped with error", zap.Error(err))
		os.Exit(1)
	}
}
