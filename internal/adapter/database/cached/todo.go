package cached

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"todosync/internal/core/domain"
	"todosync/internal/core/port"
	"todosync/internal/core/telemetry"
	. "todosync/pkg/tracing"
)

const ownerListPrefix = "todos:owner:"

type todoRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TodoRepository caches per-owner listings in front of another repository.
//
// Listings are stored under the owner's current generation token. Every write replaces the token,
// so a listing read before the write can only land under a token nobody looks up any more.
// Cache failures fall through to the store.
type TodoRepository struct {
	next    port.TodoRepository
	cache   port.CacheRepository
	ttl     time.Duration
	logger  *zap.Logger
	metrics *telemetry.AppMetrics
}

func NewTodoRepository(next port.TodoRepository, cache port.CacheRepository, ttl time.Duration, logger *zap.Logger, metrics *telemetry.AppMetrics) port.TodoRepository {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TodoRepository{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

func generationKey(ownerID string) string {
	return ownerListPrefix + ownerID + ":gen"
}

func listKey(ownerID string, generation []byte) string {
	return ownerListPrefix + ownerID + ":list:" + string(generation)
}

func (r *TodoRepository) Create(ctx context.Context, ownerID, title, description string) (domain.Todo, error) {
	todo, err := r.next.Create(ctx, ownerID, title, description)
	if err == nil {
		r.invalidate(ctx, ownerID)
	}

	return todo, err
}

func (r *TodoRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Todo, error) {
	generation, cacheable := r.generation(ctx, ownerID)

	if cacheable {
		if todos, ok := r.lookup(ctx, ownerID, generation); ok {
			return todos, nil
		}
	}

	todos, err := r.next.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if cacheable {
		r.store(ctx, ownerID, generation, todos)
	}

	return todos, nil
}

func (r *TodoRepository) ListByOwnerAndState(ctx context.Context, ownerID string, state domain.TodoState) ([]domain.Todo, error) {
	return r.next.ListByOwnerAndState(ctx, ownerID, state)
}

func (r *TodoRepository) Get(ctx context.Context, id string) (domain.Todo, error) {
	return r.next.Get(ctx, id)
}

func (r *TodoRepository) Update(ctx context.Context, id string, patch domain.TodoPatch) (domain.Todo, error) {
	todo, err := r.next.Update(ctx, id, patch)
	if err == nil {
		r.invalidate(ctx, todo.UserID)
	}

	return todo, err
}

func (r *TodoRepository) Delete(ctx context.Context, id string) error {
	todo, err := r.next.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, todo.UserID)

	return nil
}

// generation returns the owner's current token, creating one when none exists. It must be read
// before the store so that a concurrent write always changes it.
func (r *TodoRepository) generation(ctx context.Context, ownerID string) ([]byte, bool) {
	key := generationKey(ownerID)

	current, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn("Todo list generation read failed", zap.String("user_id", ownerID), zap.Error(err))
		return nil, false
	}

	if current != nil {
		return current, true
	}

	fresh := []byte(uuid.NewString())

	added, err := r.cache.SetIfAbsent(ctx, key, fresh, 0)
	if err != nil {
		r.logger.Warn("Todo list generation write failed", zap.String("user_id", ownerID), zap.Error(err))
		return nil, false
	}

	if added {
		return fresh, true
	}

	current, err = r.cache.Get(ctx, key)
	if err != nil || current == nil {
		return nil, false
	}

	return current, true
}

func (r *TodoRepository) lookup(ctx context.Context, ownerID string, generation []byte) ([]domain.Todo, bool) {
	data, err := r.cache.Get(ctx, listKey(ownerID, generation))
	if err != nil {
		r.logger.Warn("Todo list cache read failed", zap.String("user_id", ownerID), zap.Error(err))
		return nil, false
	}

	if data == nil {
		r.recordMiss(ctx)
		return nil, false
	}

	var records []todoRecord
	if err := json.Unmarshal(data, &records); err != nil {
		r.logger.Warn("Todo list cache entry is corrupt", zap.String("user_id", ownerID), zap.Error(err))
		r.invalidate(ctx, ownerID)
		return nil, false
	}

	if r.metrics != nil {
		r.metrics.RecordCacheHit(ctx, "todo_list")
	}
	AddSpanEvent(trace.SpanFromContext(ctx), "todo_list.cache_hit", attribute.Int("todo.count", len(records)))

	todos := make([]domain.Todo, 0, len(records))
	for _, rec := range records {
		todos = append(todos, domain.Todo{
			ID:          rec.ID,
			UserID:      rec.UserID,
			Title:       rec.Title,
			Description: rec.Description,
			State:       domain.TodoState(rec.State),
			CreatedAt:   rec.CreatedAt,
			UpdatedAt:   rec.UpdatedAt,
		})
	}

	return todos, true
}

func (r *TodoRepository) store(ctx context.Context, ownerID string, generation []byte, todos []domain.Todo) {
	records := make([]todoRecord, 0, len(todos))
	for _, t := range todos {
		records = append(records, todoRecord{
			ID:          t.ID,
			UserID:      t.UserID,
			Title:       t.Title,
			Description: t.Description,
			State:       string(t.State),
			CreatedAt:   t.CreatedAt,
			UpdatedAt:   t.UpdatedAt,
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return
	}

	if err := r.cache.Set(ctx, listKey(ownerID, generation), data, r.ttl); err != nil {
		r.logger.Warn("Todo list cache write failed", zap.String("user_id", ownerID), zap.Error(err))
	}
}

// invalidate moves the owner to a new generation and drops the listing of the old one.
func (r *TodoRepository) invalidate(ctx context.Context, ownerID string) {
	key := generationKey(ownerID)
	previous, _ := r.cache.Get(ctx, key)

	if err := r.cache.Set(ctx, key, []byte(uuid.NewString()), 0); err != nil {
		r.logger.Warn("Todo list cache invalidation failed", zap.String("user_id", ownerID), zap.Error(err))

		if err := r.cache.DeleteByPrefix(ctx, ownerListPrefix+ownerID+":"); err != nil {
			r.logger.Error("Todo list cache could not be cleared", zap.String("user_id", ownerID), zap.Error(err))
		}
		return
	}

	if previous != nil {
		if err := r.cache.Delete(ctx, listKey(ownerID, previous)); err != nil {
			r.logger.Warn("Todo list cache delete failed", zap.String("user_id", ownerID), zap.Error(err))
		}
	}
}

func (r *TodoRepository) recordMiss(ctx context.Context) {
	if r.metrics != nil {
		r.metrics.RecordCacheMiss(ctx, "todo_list")
	}
}
