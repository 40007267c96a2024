package response

import (
	"time"

	"todosync/internal/core/domain"
)

type TodoResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewTodoResponse(todo domain.Todo) TodoResponse {
	return TodoResponse{
		ID:          todo.ID,
		UserID:      todo.UserID,
		Title:       todo.Title,
		Description: todo.Description,
		State:       string(todo.State),
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}
}

func NewTodoListResponse(todos []domain.Todo) []TodoResponse {
	list := make([]TodoResponse, 0, len(todos))
	for _, todo := range todos {
		list = append(list, NewTodoResponse(todo))
	}
	return list
}

type SummaryResponse struct {
	Message string `json:"message"`
	Summary string `json:"summary"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
