package service

import (
	"context"
	"time"

	"todosync/internal/core/domain"
	"todosync/internal/core/port"
	tel "todosync/internal/core/telemetry"
)

const todoServiceName = "todo"

type TodoService struct {
	repo      port.TodoRepository
	telemetry port.Telemetry
}

func NewTodoService(repo port.TodoRepository, telemetry port.Telemetry) *TodoService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoService{repo: repo, telemetry: telemetry}
}

var _ port.TodoService = (*TodoService)(nil)

func (ts *TodoService) Create(ctx context.Context, userID, title, description string) (todo domain.Todo, err error) {
	ctx, done := ts.observe(ctx, "Create", userID, nil)
	defer func() { done(err) }()

	if err = domain.ValidateTitle(title); err != nil {
		return domain.Todo{}, err
	}

	todo, err = ts.repo.Create(ctx, userID, title, description)
	if err != nil {
		return domain.Todo{}, err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "todo_created", "todo", todo.ID, userID, nil)

	return todo, nil
}

func (ts *TodoService) List(ctx context.Context, userID string) (todos []domain.Todo, err error) {
	ctx, done := ts.observe(ctx, "List", userID, nil)
	defer func() { done(err) }()

	return ts.repo.ListByOwner(ctx, userID)
}

// Update loads the target, checks ownership and applies patch.
func (ts *TodoService) Update(ctx context.Context, userID, id string, patch domain.TodoPatch) (todo domain.Todo, err error) {
	ctx, done := ts.observe(ctx, "Update", userID, map[string]any{"todo.id": id})
	defer func() { done(err) }()

	if err = patch.Validate(); err != nil {
		return domain.Todo{}, err
	}

	if _, err = ts.owned(ctx, userID, id); err != nil {
		return domain.Todo{}, err
	}

	todo, err = ts.repo.Update(ctx, id, patch)
	if err != nil {
		return domain.Todo{}, err
	}

	event := "todo_updated"
	if patch.State != nil {
		event = "todo_marked_" + string(*patch.State)
	}
	ts.telemetry.RecordBusinessEvent(ctx, event, "todo", todo.ID, userID, nil)

	return todo, nil
}

func (ts *TodoService) Delete(ctx context.Context, userID, id string) (err error) {
	ctx, done := ts.observe(ctx, "Delete", userID, map[string]any{"todo.id": id})
	defer func() { done(err) }()

	if _, err = ts.owned(ctx, userID, id); err != nil {
		return err
	}

	if err = ts.repo.Delete(ctx, id); err != nil {
		return err
	}

	ts.telemetry.RecordBusinessEvent(ctx, "todo_deleted", "todo", id, userID, nil)

	return nil
}

func (ts *TodoService) owned(ctx context.Context, userID, id string) (domain.Todo, error) {
	todo, err := ts.repo.Get(ctx, id)
	if err != nil {
		return domain.Todo{}, err
	}

	if err := Authorize(userID, todo); err != nil {
		return domain.Todo{}, err
	}

	return todo, nil
}

func (ts *TodoService) observe(ctx context.Context, operation, userID string, attrs map[string]any) (context.Context, func(error)) {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, todoServiceName, operation, userID, attrs)
	startTime := time.Now()

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus("error", err.Error())
		} else {
			span.SetStatus("ok", "")
		}

		ts.telemetry.RecordServiceOperation(ctx, todoServiceName, operation, userID, time.Since(startTime), err)
		span.End()
	}
}
