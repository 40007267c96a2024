package request

// CreateTodoRequest is the body of POST /todos.
type CreateTodoRequest struct {
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
}

// UpdateTodoRequest is the body of PUT /todos/:id. Absent fields are nil and left untouched.
type UpdateTodoRequest struct {
	Title       *string `json:"title" validate:"omitnil,notblank"`
	Description *string `json:"description"`
	State       *string `json:"state" validate:"omitnil,oneof=pending completed"`
}

func (r UpdateTodoRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.State == nil
}
