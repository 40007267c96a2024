package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"
)

// Needs a running server: REDIS_ADDR=localhost:6379 go test ./...
func TestRedisRepository(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	RegisterTestingT(t)
	ctx := context.Background()

	repo, err := NewRedisRepository(ctx, Options{Addr: addr, Prefix: "test-" + uuid.NewString() + ":"})
	Expect(err).To(BeNil())
	defer repo.Close()

	value, err := repo.Get(ctx, "missing")
	Expect(err).To(BeNil())
	Expect(value).To(BeNil())

	Expect(repo.Set(ctx, "todos:owner:a", []byte("a"), time.Minute)).To(Succeed())
	Expect(repo.Set(ctx, "todos:owner:b", []byte("b"), time.Minute)).To(Succeed())

	value, err = repo.Get(ctx, "todos:owner:a")
	Expect(err).To(BeNil())
	Expect(string(value)).To(Equal("a"))

	added, err := repo.SetIfAbsent(ctx, "todos:owner:a", []byte("z"), time.Minute)
	Expect(err).To(BeNil())
	Expect(added).To(BeFalse())

	added, err = repo.SetIfAbsent(ctx, "todos:owner:c", []byte("c"), time.Minute)
	Expect(err).To(BeNil())
	Expect(added).To(BeTrue())

	Expect(repo.DeleteByPrefix(ctx, "todos:")).To(Succeed())

	value, _ = repo.Get(ctx, "todos:owner:b")
	Expect(value).To(BeNil())
}
