package handler

import (
	"errors"
	"io"
	"net/http"

	. "todosync/internal/adapter/http/helper"
	"todosync/internal/adapter/http/middleware"
	. "todosync/internal/adapter/http/validation"
	"todosync/internal/core/domain"
	"todosync/internal/core/model/request"
	"todosync/internal/core/model/response"
	"todosync/internal/core/port"
	"todosync/internal/core/util"
	"todosync/pkg/config"
	ct "todosync/pkg/context"
	. "todosync/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type TodoHandler struct {
	svc    port.TodoService
	Logger *config.LokiLogger
}

func NewTodoHandler(svc port.TodoService, logger *config.LokiLogger) *TodoHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &TodoHandler{
		svc:    svc,
		Logger: logger,
	}
}

func (t *TodoHandler) GetAllTodos(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.GetAllTodos",
		attribute.String("handler.operation", "GetAllTodos"),
	)
	defer span.End()

	userID := middleware.UserID(c)

	todos, err := t.svc.List(ctx, userID)
	if err != nil {
		AddSpanError(span, err)
		t.logFailure(c, "Failed to list todos", err)
		SendDomainError(c, err, MsgFetchTodosFailed)
		return
	}

	span.SetAttributes(attribute.Int("todo.count", len(todos)))

	SendSuccess(c, http.StatusOK, response.NewTodoListResponse(todos))
}

func (t *TodoHandler) CreateTodo(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.CreateTodo",
		attribute.String("handler.operation", "CreateTodo"),
	)
	defer span.End()

	params, err := util.ParamsToMap[request.CreateTodoRequest](c)
	if err != nil && !errors.Is(err, io.EOF) {
		t.logRejected(c, "Rejected todo request body", err)
		SendBadRequestError(c, MsgInvalidJSON)
		return
	}

	if err := Validator.Struct(params); err != nil {
		t.logRejected(c, "Rejected todo request", err)
		SendBadRequestError(c, FirstMessage(err))
		return
	}

	todo, err := t.svc.Create(ctx, middleware.UserID(c), params.Title, params.Description)
	if err != nil {
		AddSpanError(span, err)
		t.logFailure(c, "Failed to create todo", err)
		SendDomainError(c, err, MsgAddTodoFailed)
		return
	}

	span.SetAttributes(attribute.String("todo.id", todo.ID))

	SendSuccess(c, http.StatusCreated, response.NewTodoResponse(todo))
}

func (t *TodoHandler) UpdateTodo(c *gin.Context) {
	id := c.Param("id")

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.UpdateTodo",
		attribute.String("handler.operation", "UpdateTodo"),
		attribute.String("todo.id", id),
	)
	defer span.End()

	params, err := util.ParamsToMap[request.UpdateTodoRequest](c)
	if err != nil && !errors.Is(err, io.EOF) {
		t.logRejected(c, "Rejected todo request body", err)
		SendBadRequestError(c, MsgInvalidJSON)
		return
	}

	if params.IsEmpty() {
		t.logFailure(c, "Rejected todo update", domain.ErrNoFieldsToUpdate)
		SendDomainError(c, domain.ErrNoFieldsToUpdate, "")
		return
	}

	if err := Validator.Struct(params); err != nil {
		t.logRejected(c, "Rejected todo request", err)
		SendBadRequestError(c, FirstMessage(err))
		return
	}

	patch := domain.TodoPatch{Title: params.Title, Description: params.Description}
	if params.State != nil {
		state := domain.TodoState(*params.State)
		patch.State = &state
	}

	todo, err := t.svc.Update(ctx, middleware.UserID(c), id, patch)
	if err != nil {
		AddSpanError(span, err)
		t.logFailure(c, "Failed to update todo", err)
		SendDomainError(c, err, MsgUpdateTodoFailed)
		return
	}

	SendSuccess(c, http.StatusOK, response.NewTodoResponse(todo))
}

func (t *TodoHandler) DeleteTodo(c *gin.Context) {
	id := c.Param("id")

	ctx, span := CreateChildSpan(c.Request.Context(), "handler.todo.DeleteTodo",
		attribute.String("handler.operation", "DeleteTodo"),
		attribute.String("todo.id", id),
	)
	defer span.End()

	if err := t.svc.Delete(ctx, middleware.UserID(c), id); err != nil {
		AddSpanError(span, err)
		t.logFailure(c, "Failed to delete todo", err)
		SendDomainError(c, err, MsgDeleteTodoFailed)
		return
	}

	SendMessage(c, http.StatusOK, MsgTodoDeleted)
}

// logFailure logs caller mistakes and missing records at info, everything else at error.
func (t *TodoHandler) logFailure(c *gin.Context, msg string, err error) {
	logFailure(t.Logger, c, msg, err)
}

func (t *TodoHandler) logRejected(c *gin.Context, msg string, err error) {
	t.Logger.Info(c.Request.Context(), msg, requestFields(c, err)...)
}

func logFailure(logger *config.LokiLogger, c *gin.Context, msg string, err error) {
	ctx := c.Request.Context()

	if isClientOutcome(err) {
		logger.Info(ctx, msg, requestFields(c, err)...)
		return
	}

	logger.Error(ctx, msg, requestFields(c, err)...)
}

func isClientOutcome(err error) bool {
	var validationErr *domain.ValidationError
	return errors.As(err, &validationErr) ||
		errors.Is(err, domain.ErrTodoNotFound) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrNothingToSummarize)
}

func requestFields(c *gin.Context, err error) []zap.Field {
	ctx := c.Request.Context()

	return []zap.Field{
		zap.Error(err),
		zap.String("user_id", middleware.UserID(c)),
		zap.String("request_id", ct.RequestID(ctx)),
		zap.String("trace_id", GetTraceID(ctx)),
	}
}
