package memory

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"todosync/internal/core/port"
)

// memoryRepository is a process-local CacheRepository backed by go-cache.
type memoryRepository struct {
	cache *cache.Cache
}

func NewMemoryRepository(defaultTTL time.Duration) port.CacheRepository {
	return &memoryRepository{
		cache: cache.New(defaultTTL, 2*defaultTTL),
	}
}

func (c *memoryRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}

	c.cache.Set(key, stored, ttl)

	return nil
}

func (c *memoryRepository) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	stored := make([]byte, len(value))
	copy(stored, value)

	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}

	if err := c.cache.Add(key, stored, ttl); err != nil {
		return false, nil
	}

	return true, nil
}

func (c *memoryRepository) Get(ctx context.Context, key string) ([]byte, error) {
	value, found := c.cache.Get(key)
	if !found {
		return nil, nil
	}

	stored := value.([]byte)
	out := make([]byte, len(stored))
	copy(out, stored)

	return out, nil
}

func (c *memoryRepository) Delete(ctx context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

func (c *memoryRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}

	return nil
}

func (c *memoryRepository) Close() error {
	c.cache.Flush()
	return nil
}
