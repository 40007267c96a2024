package handler

import (
	"net/http"

	. "todosync/internal/adapter/http/helper"
	"todosync/internal/adapter/http/middleware"
	"todosync/internal/core/model/response"
	"todosync/internal/core/port"
	"todosync/pkg/config"
	. "todosync/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type SummaryHandler struct {
	svc    port.SummaryService
	Logger *config.LokiLogger
}

func NewSummaryHandler(svc port.SummaryService, logger *config.LokiLogger) *SummaryHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &SummaryHandler{svc: svc, Logger: logger}
}

func (s *SummaryHandler) Summarize(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.summary.Summarize",
		attribute.String("handler.operation", "Summarize"),
	)
	defer span.End()

	summary, err := s.svc.Summarize(ctx, middleware.UserID(c))
	if err != nil {
		AddSpanError(span, err)
		logFailure(s.Logger, c, "Failed to summarize todos", err)
		SendDomainError(c, err, MsgSummarizeFailed)
		return
	}

	SendSuccess(c, http.StatusOK, response.SummaryResponse{
		Message: summary.Message,
		Summary: summary.Summary,
	})
}
