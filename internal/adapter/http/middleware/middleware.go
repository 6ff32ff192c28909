package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"userapp/internal/adapter/logger"
	"userapp/internal/core/telemetry"
	"userapp/pkg/config"
)

// SetupGinMiddleware installs the cross-cutting middleware chain in order:
// HTTPS redirect, request context, tracing, logging, rate limiting, metrics.
func SetupGinMiddleware(router *gin.Engine, cfg *config.AppConfig, metrics *telemetry.AppMetrics, log *logger.Logger) {
	router.Use(NewHTTPSEnforcer(cfg.EnforceHTTPS, log).HTTPSMiddleware())
	router.Use(CurrentMiddleware())
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(LoggingMiddleware(log))

	if cfg.RateLimitEnabled {
		router.Use(NewRateLimiter(cfg.RateLimitConfigs, log, metrics).RateLimitMiddleware())
	}

	if metrics != nil {
		router.Use(MetricsMiddleware(metrics))
	}
}
