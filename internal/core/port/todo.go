package port

import (
	"context"

	"todosync/internal/core/domain"
)

// TodoRepository persists todos. It stamps timestamps but does not enforce ownership.
type TodoRepository interface {
	Create(ctx context.Context, ownerID, title, description string) (domain.Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Todo, error)
	ListByOwnerAndState(ctx context.Context, ownerID string, state domain.TodoState) ([]domain.Todo, error)
	Get(ctx context.Context, id string) (domain.Todo, error)
	Update(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error)
	Delete(ctx context.Context, id string) error
}

type TodoService interface {
	Create(ctx context.Context, userID, title, description string) (domain.Todo, error)
	List(ctx context.Context, userID string) ([]domain.Todo, error)
	Update(ctx context.Context, userID, id string, patch domain.TodoPatch) (domain.Todo, error)
	Delete(ctx context.Context, userID, id string) error
}

type SummaryService interface {
	Summarize(ctx context.Context, userID string) (domain.Summary, error)
}
