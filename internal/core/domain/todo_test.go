package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestParseTodoState(t *testing.T) {
	RegisterTestingT(t)

	state, err := ParseTodoState("pending")
	Expect(err).To(BeNil())
	Expect(state).To(Equal(TodoStatePending))

	state, err = ParseTodoState("completed")
	Expect(err).To(BeNil())
	Expect(state).To(Equal(TodoStateCompleted))

	_, err = ParseTodoState("done")
	Expect(err).To(Equal(ErrInvalidState))

	_, err = ParseTodoState("")
	Expect(err).To(Equal(ErrInvalidState))
}

func TestTodoBelongsTo(t *testing.T) {
	RegisterTestingT(t)

	todo := Todo{UserID: "user-1"}

	Expect(todo.BelongsTo("user-1")).To(BeTrue())
	Expect(todo.BelongsTo("user-2")).To(BeFalse())
	Expect((&Todo{}).BelongsTo("")).To(BeFalse())
}

func TestTodoPatchValidate(t *testing.T) {
	RegisterTestingT(t)

	blank := "   "
	title := "Buy milk"
	long := strings.Repeat("é", 2000)
	done := TodoState("done")
	completed := TodoStateCompleted

	Expect(TodoPatch{}.Validate()).To(Equal(ErrNoFieldsToUpdate))
	Expect(TodoPatch{State: &done}.Validate()).To(Equal(ErrInvalidState))
	Expect(TodoPatch{Title: &blank}.Validate()).To(Equal(ErrTitleRequired))
	Expect(TodoPatch{Title: &long, Description: &long}.Validate()).To(Succeed())
	Expect(TodoPatch{Title: &title, State: &completed}.Validate()).To(Succeed())
}

func TestTodoPatchApply(t *testing.T) {
	RegisterTestingT(t)

	created := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	original := Todo{
		ID:          "id-1",
		UserID:      "user-1",
		Title:       "Old",
		Description: "keep me",
		State:       TodoStatePending,
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	title := "New"
	completed := TodoStateCompleted
	patched := TodoPatch{Title: &title, State: &completed}.Apply(original)

	Expect(patched.Title).To(Equal("New"))
	Expect(patched.Description).To(Equal("keep me"))
	Expect(patched.State).To(Equal(TodoStateCompleted))
	Expect(patched.UserID).To(Equal("user-1"))
	Expect(patched.UpdatedAt).To(Equal(created))
	Expect(original.Title).To(Equal("Old"))
}

func TestNextUpdatedAt(t *testing.T) {
	RegisterTestingT(t)

	prev := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	Expect(NextUpdatedAt(prev, prev.Add(time.Second))).To(Equal(prev.Add(time.Second)))
	Expect(NextUpdatedAt(prev, prev)).To(Equal(prev.Add(time.Microsecond)))
	Expect(NextUpdatedAt(prev, prev.Add(-time.Hour))).To(Equal(prev.Add(time.Microsecond)))
	Expect(NextUpdatedAt(prev, prev.Add(300*time.Nanosecond))).To(Equal(prev.Add(time.Microsecond)))
}

func TestErrorTaxonomy(t *testing.T) {
	RegisterTestingT(t)

	cause := errors.New("boom")

	storage := WrapStorage("create", cause)
	var se *StorageError
	Expect(errors.As(storage, &se)).To(BeTrue())
	Expect(se.Op).To(Equal("create"))
	Expect(errors.Is(storage, cause)).To(BeTrue())

	Expect(WrapStorage("get", ErrTodoNotFound)).To(Equal(ErrTodoNotFound))
	Expect(WrapStorage("get", nil)).To(BeNil())
	Expect(WrapStorage("list", storage)).To(BeIdenticalTo(storage))

	upstream := &UpstreamError{Stage: StageDelivery, Err: cause}
	Expect(errors.Is(upstream, cause)).To(BeTrue())
	Expect(upstream.Error()).To(ContainSubstring("delivery"))

	auth := NewAuthError(AuthExpiredCredential, cause)
	Expect(auth.Error()).To(ContainSubstring("expired"))
	Expect(errors.Is(auth, cause)).To(BeTrue())
}
