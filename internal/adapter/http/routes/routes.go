package routes

import (
	"todosync/internal/adapter/http/handler"
	"todosync/internal/adapter/http/middleware"
	"todosync/internal/core/port"
	"todosync/internal/core/telemetry"
	"todosync/pkg/config"

	"github.com/gin-gonic/gin"
)

type HandlersConfig struct {
	TodoHandler    *handler.TodoHandler
	SummaryHandler *handler.SummaryHandler
	Verifier       port.IdentityVerifier
}

func SetupRouter(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *config.LokiLogger) *gin.Engine {
	return SetupRouterWithConfig(handlers, metrics, logger, config.GetDefaultConfig())
}

func SetupRouterWithConfig(handlers HandlersConfig, metrics *telemetry.AppMetrics, logger *config.LokiLogger, cfg *config.AppConfig) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	middleware.SetupGinMiddlewareWithConfig(router, "todosync", metrics, logger, cfg)

	router.GET("/", handler.Liveness)

	protected := router.Group("/")
	protected.Use(middleware.AuthMiddleware(handlers.Verifier, metrics, logger))

	if cfg.RateLimitEnabled {
		rateLimiter := config.NewRateLimiter(logger.Logger.Logger, metrics, cfg.RateLimitConfigs)
		protected.Use(rateLimiter.RateLimitMiddleware())
	}

	if handlers.TodoHandler != nil {
		protected.GET("/todos", handlers.TodoHandler.GetAllTodos)
		protected.POST("/todos", handlers.TodoHandler.CreateTodo)
		protected.PUT("/todos/:id", handlers.TodoHandler.UpdateTodo)
		protected.DELETE("/todos/:id", handlers.TodoHandler.DeleteTodo)
	}

	if handlers.SummaryHandler != nil {
		protected.POST("/summarize", handlers.SummaryHandler.Summarize)
	}

	return router
}
