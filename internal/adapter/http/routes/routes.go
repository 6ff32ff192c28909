package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"userapp/internal/adapter/http/handler"
	"userapp/internal/adapter/http/helper"
	"userapp/internal/adapter/http/middleware"
	"userapp/internal/adapter/logger"
	"userapp/internal/core/telemetry"
	"userapp/pkg/config"
	"userapp/web"
)

type HandlersConfig struct {
	UserHandler   *handler.UserHandler
	HealthHandler *handler.HealthHandler
}

func SetupRouter(handlers HandlersConfig, metrics *telemetry.AppMetrics, log *logger.Logger, cfg *config.AppConfig) *gin.Engine {
	router := newEngine()

	middleware.SetupGinMiddleware(router, cfg, metrics, log)
	router.Use(gin.Recovery())

	setupRoutes(router, handlers)

	return router
}

// SetupRouterForTests wires the routes without logging, tracing or rate limiting.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	router := newEngine()

	router.Use(gin.Recovery())

	setupRoutes(router, handlers)

	return router
}

func newEngine() *gin.Engine {
	router := gin.New()
	router.SetHTMLTemplate(web.Templates())

	return router
}

func setupRoutes(router *gin.Engine, handlers HandlersConfig) {
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/users")
	})

	if handlers.HealthHandler != nil {
		router.GET("/healthz", handlers.HealthHandler.Health)
	}

	if handlers.UserHandler != nil {
		users := router.Group("/users")
		users.Use(helper.ErrorBoundary())
		{
			users.GET("", handlers.UserHandler.ListUsers)
			users.POST("", handlers.UserHandler.DeleteUser)
			users.GET("/:userId", handlers.UserHandler.GetUser)
			users.POST("/:userId", handlers.UserHandler.SaveUser)
		}
	}
}
