package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"todosync/internal/adapter/database/sqlite"
	"todosync/internal/core/domain"
	"todosync/internal/core/port"
	tel "todosync/internal/core/telemetry"
)

var todoColumns = []string{"id", "user_id", "title", "description", "state", "created_at", "updated_at"}

type TodoRepository struct {
	db        *sqlite.DB
	telemetry port.Telemetry
	now       func() time.Time
}

func NewTodoRepository(db *sqlite.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{
		db:        db,
		telemetry: telemetry,
		now:       time.Now,
	}
}

func (tr *TodoRepository) Create(ctx context.Context, ownerID, title, description string) (domain.Todo, error) {
	ctx, span := tr.startSpan(ctx, "Create", map[string]any{"user.id": ownerID})
	defer span.End()
	startTime := time.Now()

	now := domain.Timestamp(tr.now())
	todo := domain.Todo{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Title:       title,
		Description: description,
		State:       domain.TodoStatePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns(todoColumns...).
		Values(todo.ID, todo.UserID, todo.Title, todo.Description, string(todo.State), now.UnixMicro(), now.UnixMicro()).
		ToSql()
	if err == nil {
		_, err = tr.db.ExecContext(ctx, query, args...)
	}

	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "Create", startTime, err)
	}

	span.SetAttributes(map[string]any{"todo.id": todo.ID})
	tr.succeed(ctx, span, "Create", startTime)

	return todo, nil
}

func (tr *TodoRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Todo, error) {
	return tr.list(ctx, "ListByOwner", sq.Eq{"user_id": ownerID})
}

func (tr *TodoRepository) ListByOwnerAndState(ctx context.Context, ownerID string, state domain.TodoState) ([]domain.Todo, error) {
	return tr.list(ctx, "ListByOwnerAndState", sq.Eq{"user_id": ownerID, "state": string(state)})
}

func (tr *TodoRepository) list(ctx context.Context, operation string, where sq.Eq) ([]domain.Todo, error) {
	ctx, span := tr.startSpan(ctx, operation, map[string]any{"user.id": where["user_id"]})
	defer span.End()
	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, tr.fail(ctx, span, operation, startTime, err)
	}

	rows, err := tr.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, tr.fail(ctx, span, operation, startTime, err)
	}
	defer rows.Close()

	todos := []domain.Todo{}

	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, tr.fail(ctx, span, operation, startTime, err)
		}

		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, tr.fail(ctx, span, operation, startTime, err)
	}

	span.SetAttributes(map[string]any{"db.rows_returned": len(todos)})
	tr.succeed(ctx, span, operation, startTime)

	return todos, nil
}

func (tr *TodoRepository) Get(ctx context.Context, id string) (domain.Todo, error) {
	ctx, span := tr.startSpan(ctx, "Get", map[string]any{"todo.id": id})
	defer span.End()
	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "Get", startTime, err)
	}

	todo, err := scanTodo(tr.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "Get", startTime, err)
	}

	tr.succeed(ctx, span, "Get", startTime)

	return todo, nil
}

func (tr *TodoRepository) Update(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error) {
	ctx, span := tr.startSpan(ctx, "Update", map[string]any{"todo.id": id})
	defer span.End()
	startTime := time.Now()

	update := tr.db.QueryBuilder.Update("todos").
		Set("updated_at", sq.Expr("MAX(?, updated_at + 1)", domain.Timestamp(tr.now()).UnixMicro())).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, user_id, title, description, state, created_at, updated_at")

	if patch.Title != nil {
		update = update.Set("title", *patch.Title)
	}

	if patch.Description != nil {
		update = update.Set("description", *patch.Description)
	}

	if patch.State != nil {
		update = update.Set("state", string(*patch.State))
	}

	query, args, err := update.ToSql()
	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "Update", startTime, err)
	}

	todo, err := scanTodo(tr.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return domain.Todo{}, tr.fail(ctx, span, "Update", startTime, err)
	}

	tr.succeed(ctx, span, "Update", startTime)

	return todo, nil
}

func (tr *TodoRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tr.startSpan(ctx, "Delete", map[string]any{"todo.id": id})
	defer span.End()
	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Delete("todos").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return tr.fail(ctx, span, "Delete", startTime, err)
	}

	result, err := tr.db.ExecContext(ctx, query, args...)
	if err != nil {
		return tr.fail(ctx, span, "Delete", startTime, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return tr.fail(ctx, span, "Delete", startTime, err)
	}

	if affected == 0 {
		return tr.fail(ctx, span, "Delete", startTime, domain.ErrTodoNotFound)
	}

	tr.succeed(ctx, span, "Delete", startTime)

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (domain.Todo, error) {
	var (
		todo      domain.Todo
		state     string
		createdAt int64
		updatedAt int64
	)

	err := row.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &state, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	if err != nil {
		return domain.Todo{}, err
	}

	todo.State = domain.TodoState(state)
	todo.CreatedAt = time.UnixMicro(createdAt).UTC()
	todo.UpdatedAt = time.UnixMicro(updatedAt).UTC()

	return todo, nil
}

func (tr *TodoRepository) startSpan(ctx context.Context, operation string, attrs map[string]any) (context.Context, port.Span) {
	attrs["db.system"] = "sqlite"
	attrs["db.table"] = "todos"

	return tr.telemetry.StartRepositorySpan(ctx, operation, "todo", attrs)
}

func (tr *TodoRepository) fail(ctx context.Context, span port.Span, operation string, startTime time.Time, err error) error {
	if errors.Is(err, domain.ErrTodoNotFound) {
		span.SetStatus("ok", "not found")
		tr.telemetry.RecordRepositoryOperation(ctx, operation, "todo", time.Since(startTime), nil)
		return err
	}

	span.SetStatus("error", err.Error())
	span.RecordError(err)
	tr.telemetry.RecordRepositoryOperation(ctx, operation, "todo", time.Since(startTime), err)

	return domain.WrapStorage(operation, err)
}

func (tr *TodoRepository) succeed(ctx context.Context, span port.Span, operation string, startTime time.Time) {
	span.SetStatus("ok", "")
	tr.telemetry.RecordRepositoryOperation(ctx, operation, "todo", time.Since(startTime), nil)
}
