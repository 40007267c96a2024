package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todosync/internal/adapter/database/sqlite"
	"todosync/internal/core/domain"
	"todosync/internal/core/telemetry"
	. "todosync/pkg/test"
	factory "todosync/pkg/test/factory"
)

type TodoRepositorySuite struct {
	suite.Suite
	DB   *sqlite.DB
	Repo *TodoRepository
}

var ctx = context.Background()

func (s *TodoRepositorySuite) SetupTest() {
	s.DB = InitTestDB()
	s.Repo = NewTodoRepository(s.DB, telemetry.NewNoOpProbe()).(*TodoRepository)
}

func (s *TodoRepositorySuite) TearDownTest() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func TestTodoRepositorySuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoRepositorySuite))
}

func (s *TodoRepositorySuite) create(ownerID string) domain.Todo {
	data := factory.NewTodo[domain.Todo](map[string]any{
		"Title":  "Task Created",
		"UserID": ownerID,
	})

	todo, err := s.Repo.Create(ctx, data.UserID, data.Title, data.Description)
	Expect(err).To(BeNil())

	return todo
}

func (s *TodoRepositorySuite) TestCreateStampsDefaults() {
	todo, err := s.Repo.Create(ctx, "user-1", "Buy milk", "")

	Expect(err).To(BeNil())
	Expect(todo.ID).ToNot(BeEmpty())
	Expect(todo.UserID).To(Equal("user-1"))
	Expect(todo.State).To(Equal(domain.TodoStatePending))
	Expect(todo.CreatedAt.IsZero()).To(BeFalse())
	Expect(todo.UpdatedAt).To(Equal(todo.CreatedAt))

	stored, err := s.Repo.Get(ctx, todo.ID)
	Expect(err).To(BeNil())
	Expect(stored.Title).To(Equal("Buy milk"))
	Expect(stored.Description).To(BeEmpty())
	Expect(stored.CreatedAt).To(BeTemporally("==", todo.CreatedAt))
	Expect(stored.UpdatedAt).To(BeTemporally("==", todo.UpdatedAt))
}

func (s *TodoRepositorySuite) TestListByOwnerOrdersNewestFirst() {
	clock := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.Repo.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first := s.create("owner")
	second := s.create("owner")
	s.create("someone-else")

	todos, err := s.Repo.ListByOwner(ctx, "owner")

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(2))
	Expect(todos[0].ID).To(Equal(second.ID))
	Expect(todos[1].ID).To(Equal(first.ID))
}

func (s *TodoRepositorySuite) TestListByOwnerEmpty() {
	todos, err := s.Repo.ListByOwner(ctx, "nobody")

	Expect(err).To(BeNil())
	Expect(todos).ToNot(BeNil())
	Expect(todos).To(BeEmpty())
}

func (s *TodoRepositorySuite) TestListByOwnerAndState() {
	pending := s.create("owner")
	done := s.create("owner")

	completed := domain.TodoStateCompleted
	_, err := s.Repo.Update(ctx, done.ID, domain.TodoPatch{State: &completed})
	Expect(err).To(BeNil())

	todos, err := s.Repo.ListByOwnerAndState(ctx, "owner", domain.TodoStatePending)

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(1))
	Expect(todos[0].ID).To(Equal(pending.ID))
}

func (s *TodoRepositorySuite) TestUpdateAppliesOnlyPresentFields() {
	todo, _ := s.Repo.Create(ctx, "owner", "Old title", "keep")

	title := "New title"
	updated, err := s.Repo.Update(ctx, todo.ID, domain.TodoPatch{Title: &title})

	Expect(err).To(BeNil())
	Expect(updated.Title).To(Equal("New title"))
	Expect(updated.Description).To(Equal("keep"))
	Expect(updated.State).To(Equal(domain.TodoStatePending))
	Expect(updated.UserID).To(Equal("owner"))
	Expect(updated.CreatedAt).To(BeTemporally("==", todo.CreatedAt))
	Expect(updated.UpdatedAt.After(todo.CreatedAt)).To(BeTrue())
}

func (s *TodoRepositorySuite) TestUpdateAdvancesTimestampWithFrozenClock() {
	frozen := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s.Repo.now = func() time.Time { return frozen }

	todo := s.create("owner")

	completed := domain.TodoStateCompleted
	first, err := s.Repo.Update(ctx, todo.ID, domain.TodoPatch{State: &completed})
	Expect(err).To(BeNil())

	pending := domain.TodoStatePending
	second, err := s.Repo.Update(ctx, todo.ID, domain.TodoPatch{State: &pending})
	Expect(err).To(BeNil())

	Expect(first.UpdatedAt.After(todo.UpdatedAt)).To(BeTrue())
	Expect(second.UpdatedAt.After(first.UpdatedAt)).To(BeTrue())
	Expect(second.State).To(Equal(domain.TodoStatePending))
}

func (s *TodoRepositorySuite) TestUpdateNotFound() {
	title := "x"
	_, err := s.Repo.Update(ctx, "missing", domain.TodoPatch{Title: &title})

	Expect(errors.Is(err, domain.ErrTodoNotFound)).To(BeTrue())
}

func (s *TodoRepositorySuite) TestGetNotFound() {
	_, err := s.Repo.Get(ctx, "missing")

	Expect(errors.Is(err, domain.ErrTodoNotFound)).To(BeTrue())
}

func (s *TodoRepositorySuite) TestDeleteTwice() {
	todo := s.create("owner")

	Expect(s.Repo.Delete(ctx, todo.ID)).To(Succeed())

	err := s.Repo.Delete(ctx, todo.ID)
	Expect(errors.Is(err, domain.ErrTodoNotFound)).To(BeTrue())

	_, err = s.Repo.Get(ctx, todo.ID)
	Expect(errors.Is(err, domain.ErrTodoNotFound)).To(BeTrue())
}

func (s *TodoRepositorySuite) TestConcurrentCreates() {
	var wg sync.WaitGroup
	errs := make(chan error, 10)

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Repo.Create(ctx, "owner", "parallel", "")
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		Expect(err).To(BeNil())
	}

	todos, err := s.Repo.ListByOwner(ctx, "owner")
	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(10))
}

func (s *TodoRepositorySuite) TestStorageErrorsAreWrapped() {
	s.DB.Close()

	_, err := s.Repo.ListByOwner(ctx, "owner")

	var storageErr *domain.StorageError
	Expect(errors.As(err, &storageErr)).To(BeTrue())
	Expect(storageErr.Op).To(Equal("ListByOwner"))
}
