package http

import (
	"todosync/internal/adapter/http/handler"
	"todosync/internal/core/port"
	"todosync/internal/core/service"
	"todosync/internal/core/telemetry"
	"todosync/pkg/config"
)

// Dependencies are the adapters the API is assembled from. The external clients are built once
// by the caller and shared by every request.
type Dependencies struct {
	TodoRepo  port.TodoRepository
	Verifier  port.IdentityVerifier
	Generator port.SummaryGenerator
	Notifier  port.Notifier
	Telemetry port.Telemetry
	Metrics   *telemetry.AppMetrics
	Logger    *config.LokiLogger
}

type Container struct {
	TodoRepo port.TodoRepository
	Verifier port.IdentityVerifier

	TodoService    port.TodoService
	SummaryService port.SummaryService

	TodoHandler    *handler.TodoHandler
	SummaryHandler *handler.SummaryHandler
}

func NewContainer(deps Dependencies) *Container {
	todoSvc := service.NewTodoService(deps.TodoRepo, deps.Telemetry)
	summarySvc := service.NewSummaryService(deps.TodoRepo, deps.Generator, deps.Notifier, deps.Telemetry, deps.Metrics)

	return &Container{
		TodoRepo: deps.TodoRepo,
		Verifier: deps.Verifier,

		TodoService:    todoSvc,
		SummaryService: summarySvc,

		TodoHandler:    handler.NewTodoHandler(todoSvc, deps.Logger),
		SummaryHandler: handler.NewSummaryHandler(summarySvc, deps.Logger),
	}
}
