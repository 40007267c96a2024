package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrEmptyPatch    = errors.New("no fields to update")
	ErrNotInMirror   = errors.New("todo is not loaded")
	ErrUnknownFilter = errors.New("unknown filter")
)

type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
)

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case FilterAll, FilterPending, FilterCompleted:
		return f, nil
	case "":
		return FilterAll, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
	}
}

// API is the server surface the controller drives. *Client implements it.
type API interface {
	List(ctx context.Context) ([]Todo, error)
	Create(ctx context.Context, title, description string) (Todo, error)
	Update(ctx context.Context, id string, patch Patch) (Todo, error)
	Delete(ctx context.Context, id string) error
	Summarize(ctx context.Context) (Summary, error)
}

// Notice is a transient, user-facing report of a failed operation. Reverted tells whether
// optimistic local changes were rolled back.
type Notice struct {
	Op       string
	ID       string
	Message  string
	Reverted bool
	Err      error
}

type ControllerOption func(*Controller)

func WithNoticeHandler(fn func(Notice)) ControllerOption {
	return func(c *Controller) { c.onNotice = fn }
}

func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) { c.now = now }
}

// Controller keeps a local mirror of the caller's todos. Edits, toggles and removals are applied
// to the mirror before the server answers and rolled back if it refuses.
type Controller struct {
	api API

	mu      sync.Mutex
	todos   []Todo
	filter  Filter
	loading bool
	lastErr error

	ids      *keyedMutex
	onNotice func(Notice)
	now      func() time.Time
}

func NewController(api API, opts ...ControllerOption) *Controller {
	c := &Controller{
		api:    api,
		todos:  []Todo{},
		filter: FilterAll,
		ids:    newKeyedMutex(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Load replaces the mirror with the server's list. On failure the mirror is cleared.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	todos, err := c.api.List(ctx)

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.todos = []Todo{}
		c.lastErr = err
		c.mu.Unlock()

		c.notify(Notice{Op: "load", Message: "Failed to load todos.", Err: err})
		return err
	}

	c.todos = append([]Todo{}, todos...)
	c.lastErr = nil
	c.mu.Unlock()

	return nil
}

// Add creates the todo on the server and only then prepends it to the mirror.
func (c *Controller) Add(ctx context.Context, title, description string) (Todo, error) {
	todo, err := c.api.Create(ctx, title, description)
	if err != nil {
		c.fail(Notice{Op: "add", Message: "Failed to add todo.", Err: err})
		return Todo{}, err
	}

	c.mu.Lock()
	c.todos = append([]Todo{todo}, c.todos...)
	c.lastErr = nil
	c.mu.Unlock()

	return todo, nil
}

func (c *Controller) Edit(ctx context.Context, id string, patch Patch) (Todo, error) {
	if patch.IsEmpty() {
		return Todo{}, ErrEmptyPatch
	}

	unlock := c.ids.Lock(id)
	defer unlock()

	return c.edit(ctx, "edit", id, func(Todo) Patch { return patch })
}

// Toggle flips the todo between pending and completed.
func (c *Controller) Toggle(ctx context.Context, id string) (Todo, error) {
	unlock := c.ids.Lock(id)
	defer unlock()

	return c.edit(ctx, "toggle", id, func(current Todo) Patch {
		next := current.State.Opposite()
		return Patch{State: &next}
	})
}

// edit runs with the id lock held. patchFor sees the record as it is in the mirror.
func (c *Controller) edit(ctx context.Context, op, id string, patchFor func(Todo) Patch) (Todo, error) {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return Todo{}, ErrNotInMirror
	}

	snapshot := c.todos[idx]
	patch := patchFor(snapshot)

	optimistic := patch.apply(snapshot)
	optimistic.UpdatedAt = c.now().UTC()
	c.todos[idx] = optimistic
	c.mu.Unlock()

	updated, err := c.api.Update(ctx, id, patch)

	c.mu.Lock()
	if err != nil {
		// A Load that ran meanwhile already holds the server's copy.
		if i := c.indexOf(id); i >= 0 && sameRecord(c.todos[i], optimistic) {
			c.todos[i] = snapshot
		}
		c.mu.Unlock()

		c.fail(Notice{Op: op, ID: id, Message: "Failed to update todo. Changes reverted.", Reverted: true, Err: err})
		return Todo{}, err
	}

	if i := c.indexOf(id); i >= 0 {
		c.todos[i] = updated
	}
	c.lastErr = nil
	c.mu.Unlock()

	return updated, nil
}

// Remove drops the todo locally, then on the server. A todo the server no longer has counts
// as removed.
func (c *Controller) Remove(ctx context.Context, id string) error {
	unlock := c.ids.Lock(id)
	defer unlock()

	c.mu.Lock()
	idx := c.indexOf(id)
	if idx < 0 {
		c.mu.Unlock()
		return ErrNotInMirror
	}

	removed := c.todos[idx]
	c.todos = removeAt(c.todos, idx)
	c.mu.Unlock()

	if err := c.api.Delete(ctx, id); err != nil && !IsNotFound(err) {
		c.mu.Lock()
		c.reinstate(removed, idx)
		c.mu.Unlock()

		c.fail(Notice{Op: "remove", ID: id, Message: "Failed to delete todo. Restored.", Reverted: true, Err: err})
		return err
	}

	return nil
}

type removal struct {
	todo  Todo
	index int
}

// ClearCompleted removes every completed todo, deleting them one at a time. Deletions that fail
// are put back where they were and reported together.
func (c *Controller) ClearCompleted(ctx context.Context) (int, error) {
	c.mu.Lock()
	var (
		removed []removal
		kept    = make([]Todo, 0, len(c.todos))
	)
	for i, todo := range c.todos {
		if todo.State == StateCompleted {
			removed = append(removed, removal{todo: todo, index: i})
			continue
		}
		kept = append(kept, todo)
	}
	c.todos = kept
	c.mu.Unlock()

	var (
		failed []removal
		errs   []error
	)

	for _, r := range removed {
		unlock := c.ids.Lock(r.todo.ID)
		err := c.api.Delete(ctx, r.todo.ID)
		unlock()

		if err != nil && !IsNotFound(err) {
			failed = append(failed, r)
			errs = append(errs, fmt.Errorf("delete %s: %w", r.todo.ID, err))
		}
	}

	if len(failed) == 0 {
		return len(removed), nil
	}

	c.mu.Lock()
	for _, r := range failed {
		c.reinstate(r.todo, r.index)
	}
	c.mu.Unlock()

	err := errors.Join(errs...)
	c.fail(Notice{
		Op:       "clear-completed",
		Message:  fmt.Sprintf("Failed to delete %d of %d completed todos. Restored.", len(failed), len(removed)),
		Reverted: true,
		Err:      err,
	})

	return len(removed) - len(failed), err
}

func (c *Controller) Summarize(ctx context.Context) (Summary, error) {
	summary, err := c.api.Summarize(ctx)
	if err != nil {
		message := "Failed to summarize todos."
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			message = apiErr.Message
		}

		c.fail(Notice{Op: "summarize", Message: message, Err: err})
		return Summary{}, err
	}

	return summary, nil
}

func (c *Controller) Todos() []Todo {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Todo{}, c.todos...)
}

// VisibleTodos applies the current filter to the mirror.
func (c *Controller) VisibleTodos() []Todo {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := make([]Todo, 0, len(c.todos))
	for _, todo := range c.todos {
		switch c.filter {
		case FilterPending:
			if todo.State != StatePending {
				continue
			}
		case FilterCompleted:
			if todo.State != StateCompleted {
				continue
			}
		}
		visible = append(visible, todo)
	}

	return visible
}

func (c *Controller) TotalCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.todos)
}

func (c *Controller) ActiveCount() int {
	return c.countState(StatePending)
}

func (c *Controller) CompletedCount() int {
	return c.countState(StateCompleted)
}

func (c *Controller) countState(state State) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, todo := range c.todos {
		if todo.State == state {
			n++
		}
	}
	return n
}

func (c *Controller) Filter() Filter {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.filter
}

func (c *Controller) SetFilter(f Filter) error {
	if _, err := ParseFilter(string(f)); err != nil || f == "" {
		return fmt.Errorf("%w: %q", ErrUnknownFilter, f)
	}

	c.mu.Lock()
	c.filter = f
	c.mu.Unlock()

	return nil
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loading
}

func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastErr
}

func sameRecord(a, b Todo) bool {
	return a.ID == b.ID &&
		a.Title == b.Title &&
		a.Description == b.Description &&
		a.State == b.State &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}

// indexOf requires c.mu.
func (c *Controller) indexOf(id string) int {
	for i, todo := range c.todos {
		if todo.ID == id {
			return i
		}
	}
	return -1
}

// reinstate requires c.mu. It is a no-op when the todo is already back in the mirror.
func (c *Controller) reinstate(todo Todo, index int) {
	if c.indexOf(todo.ID) >= 0 {
		return
	}

	if index > len(c.todos) {
		index = len(c.todos)
	}

	c.todos = append(c.todos, Todo{})
	copy(c.todos[index+1:], c.todos[index:])
	c.todos[index] = todo
}

func (c *Controller) fail(n Notice) {
	c.mu.Lock()
	c.lastErr = n.Err
	c.mu.Unlock()

	c.notify(n)
}

func (c *Controller) notify(n Notice) {
	if c.onNotice != nil {
		c.onNotice(n)
	}
}

func removeAt(todos []Todo, i int) []Todo {
	out := make([]Todo, 0, len(todos)-1)
	out = append(out, todos[:i]...)
	return append(out, todos[i+1:]...)
}
