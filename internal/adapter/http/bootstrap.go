package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"todosync/internal/adapter/http/routes"
	"todosync/internal/core/telemetry"
	"todosync/pkg/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	srv    *http.Server
	logger *config.LokiLogger
}

func NewRouter(container *Container, metrics *telemetry.AppMetrics, logger *config.LokiLogger, cfg *config.AppConfig) *gin.Engine {
	return routes.SetupRouterWithConfig(routes.HandlersConfig{
		TodoHandler:    container.TodoHandler,
		SummaryHandler: container.SummaryHandler,
		Verifier:       container.Verifier,
	}, metrics, logger, cfg)
}

func NewServer(handler http.Handler, logger *config.LokiLogger, cfg *config.AppConfig) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// Summaries wait on the generation service.
			WriteTimeout: 90 * time.Second,
		},
		logger: logger,
	}
}

// Start serves in the background. A listen failure other than a normal shutdown is sent on
// the returned channel.
func (s *Server) Start() <-chan error {
	errc := make(chan error, 1)

	go func() {
		s.logger.Info(context.Background(), "Server starting", zap.String("addr", s.srv.Addr))

		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(context.Background(), "Server failed", zap.Error(err))
			errc <- err
		}
		close(errc)
	}()

	return errc
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
