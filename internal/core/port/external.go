package port

import (
	"context"
	"time"
)

// IdentityVerifier turns a bearer credential into a stable user id.
// Failures are reported as *domain.AuthError.
type IdentityVerifier interface {
	Verify(ctx context.Context, credential string) (string, error)
}

type SummaryGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// CacheRepository is a byte-oriented key/value cache. Get returns nil, nil on a miss.
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetIfAbsent stores value only when key is missing and reports whether it did.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
	Close() error
}
