package middleware

import (
	"todosync/internal/core/telemetry"
	"todosync/pkg/config"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// SetupGinMiddlewareWithConfig installs the middleware shared by every route, outermost first.
func SetupGinMiddlewareWithConfig(router *gin.Engine, serviceName string, metrics *telemetry.AppMetrics, logger *config.LokiLogger, cfg *config.AppConfig) {
	router.Use(gin.Recovery())
	router.Use(CORSMiddleware(cfg.CORSAllowedOrigin))

	httpsEnforcer := config.NewHTTPSEnforcer(logger.Logger.Logger, cfg.EnforceHTTPS)
	router.Use(httpsEnforcer.HTTPSMiddleware())

	router.Use(otelgin.Middleware(serviceName))
	router.Use(CurrentMiddleware())
	router.Use(LoggingMiddleware(logger))
	router.Use(MetricsMiddleware(metrics))
}
