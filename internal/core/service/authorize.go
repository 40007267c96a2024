package service

import "todosync/internal/core/domain"

// Authorize is the single ownership guard for resource-scoped operations.
func Authorize(userID string, todo domain.Todo) error {
	if !todo.BelongsTo(userID) {
		return domain.ErrForbidden
	}

	return nil
}
