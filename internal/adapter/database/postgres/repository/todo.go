package repository

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"todosync/internal/adapter/database/postgres"
	"todosync/internal/core/domain"
	"todosync/internal/core/port"
	tel "todosync/internal/core/telemetry"
)

const returningColumns = "RETURNING id, user_id, title, description, state, created_at, updated_at"

var todoColumns = []string{"id", "user_id", "title", "description", "state", "created_at", "updated_at"}

type TodoRepository struct {
	db        *postgres.DB
	telemetry port.Telemetry
	now       func() time.Time
}

func NewTodoRepository(db *postgres.DB, telemetry port.Telemetry) port.TodoRepository {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &TodoRepository{db: db, telemetry: telemetry, now: time.Now}
}

func (tr *TodoRepository) Create(ctx context.Context, ownerID, title, description string) (domain.Todo, error) {
	ctx, span := tr.startSpan(ctx, "Create", map[string]any{"user.id": ownerID})
	defer span.End()
	startTime := time.Now()

	now := domain.Timestamp(tr.now())

	query, args, err := tr.db.QueryBuilder.Insert("todos").
		Columns(todoColumns...).
		Values(uuid.NewString(), ownerID, title, description, string(domain.TodoStatePending), now, now).
		Suffix(returningColumns).
		ToSql()
	if err != nil {
		return domain.Todo{}, tr.done(ctx, span, "Create", startTime, err)
	}

	todo, err := scanTodo(tr.db.QueryRow(ctx, query, args...))

	return todo, tr.done(ctx, span, "Create", startTime, err)
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
		return nil, tr.done(ctx, span, operation, startTime, err)
	}

	rows, err := tr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, tr.done(ctx, span, operation, startTime, err)
	}
	defer rows.Close()

	todos := []domain.Todo{}

	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, tr.done(ctx, span, operation, startTime, err)
		}

		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, tr.done(ctx, span, operation, startTime, err)
	}

	span.SetAttributes(map[string]any{"db.rows_returned": len(todos)})

	return todos, tr.done(ctx, span, operation, startTime, nil)
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
		return domain.Todo{}, tr.done(ctx, span, "Get", startTime, err)
	}

	todo, err := scanTodo(tr.db.QueryRow(ctx, query, args...))

	return todo, tr.done(ctx, span, "Get", startTime, err)
}

func (tr *TodoRepository) Update(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error) {
	ctx, span := tr.startSpan(ctx, "Update", map[string]any{"todo.id": id})
	defer span.End()
	startTime := time.Now()

	update := tr.db.QueryBuilder.Update("todos").
		Set("updated_at", sq.Expr("GREATEST(?::timestamptz, updated_at + interval '1 microsecond')", domain.Timestamp(tr.now()))).
		Where(sq.Eq{"id": id}).
		Suffix(returningColumns)

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
		return domain.Todo{}, tr.done(ctx, span, "Update", startTime, err)
	}

	todo, err := scanTodo(tr.db.QueryRow(ctx, query, args...))

	return todo, tr.done(ctx, span, "Update", startTime, err)
}

func (tr *TodoRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tr.startSpan(ctx, "Delete", map[string]any{"todo.id": id})
	defer span.End()
	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Delete("todos").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return tr.done(ctx, span, "Delete", startTime, err)
	}

	tag, err := tr.db.Exec(ctx, query, args...)
	if err == nil && tag.RowsAffected() == 0 {
		err = domain.ErrTodoNotFound
	}

	return tr.done(ctx, span, "Delete", startTime, err)
}

func scanTodo(row pgx.Row) (domain.Todo, error) {
	var (
		todo  domain.Todo
		state string
	)

	err := row.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Description, &state, &todo.CreatedAt, &todo.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Todo{}, domain.ErrTodoNotFound
	}

	if err != nil {
		return domain.Todo{}, err
	}

	todo.State = domain.TodoState(state)
	todo.CreatedAt = todo.CreatedAt.UTC()
	todo.UpdatedAt = todo.UpdatedAt.UTC()

	return todo, nil
}

func (tr *TodoRepository) startSpan(ctx context.Context, operation string, attrs map[string]any) (context.Context, port.Span) {
	attrs["db.system"] = "postgresql"
	attrs["db.table"] = "todos"

	return tr.telemetry.StartRepositorySpan(ctx, operation, "todo", attrs)
}

// done closes out the span for operation and normalizes err for the caller.
func (tr *TodoRepository) done(ctx context.Context, span port.Span, operation string, startTime time.Time, err error) error {
	if err == nil || errors.Is(err, domain.ErrTodoNotFound) {
		span.SetStatus("ok", "")
		tr.telemetry.RecordRepositoryOperation(ctx, operation, "todo", time.Since(startTime), nil)
		return err
	}

	span.SetStatus("error", err.Error())
	span.RecordError(err)
	tr.telemetry.RecordRepositoryOperation(ctx, operation, "todo", time.Since(startTime), err)

	return domain.WrapStorage(operation, err)
}
