package domain

import (
	"strings"
	"time"
)

type TodoState string

const (
	TodoStatePending   TodoState = "pending"
	TodoStateCompleted TodoState = "completed"
)

// timestampPrecision is the finest resolution every store keeps.
const timestampPrecision = time.Microsecond

func ParseTodoState(s string) (TodoState, error) {
	switch TodoState(s) {
	case TodoStatePending, TodoStateCompleted:
		return TodoState(s), nil
	default:
		return "", ErrInvalidState
	}
}

func (s TodoState) IsValid() bool {
	_, err := ParseTodoState(string(s))
	return err == nil
}

func (s TodoState) String() string {
	return string(s)
}

type Todo struct {
	ID          string
	UserID      string
	Title       string
	Description string
	State       TodoState
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (t *Todo) BelongsTo(userID string) bool {
	return userID != "" && t.UserID == userID
}

// TodoPatch is a partial update. A nil field is left untouched.
type TodoPatch struct {
	Title       *string
	Description *string
	State       *TodoState
}

func (p TodoPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.State == nil
}

// Validate checks the fields that are present. Any text is a valid description.
func (p TodoPatch) Validate() error {
	if p.IsEmpty() {
		return ErrNoFieldsToUpdate
	}

	if p.State != nil && !p.State.IsValid() {
		return ErrInvalidState
	}

	if p.Title != nil {
		return ValidateTitle(*p.Title)
	}

	return nil
}

// Apply returns a copy of t with the patch applied. Ownership, id and timestamps are never touched.
func (p TodoPatch) Apply(t Todo) Todo {
	if p.Title != nil {
		t.Title = *p.Title
	}

	if p.Description != nil {
		t.Description = *p.Description
	}

	if p.State != nil {
		t.State = *p.State
	}

	return t
}

func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrTitleRequired
	}

	return nil
}

// Timestamp normalizes t to the precision and zone used for persisted records.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(timestampPrecision)
}

// NextUpdatedAt returns the updatedAt for a mutation happening at now. The result is always
// strictly after prev, so clock skew or two writes within one tick still advance it.
func NextUpdatedAt(prev, now time.Time) time.Time {
	now = Timestamp(now)
	floor := Timestamp(prev).Add(timestampPrecision)

	if now.Before(floor) {
		return floor
	}

	return now
}

type Summary struct {
	Message string
	Summary string
}
