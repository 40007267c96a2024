package context

import (
	"context"
	"sync"
	"testing"

	. "github.com/onsi/gomega"
)

func TestCurrentRoundTripsThroughContext(t *testing.T) {
	RegisterTestingT(t)

	current := NewCurrent()
	current.Set("request_id", "req-1")
	current.Set("user_id", "alice")

	ctx := WithCurrent(context.Background(), current)

	Expect(RequestID(ctx)).To(Equal("req-1"))
	Expect(GetCurrent(ctx).All()).To(HaveKeyWithValue("user_id", "alice"))
	Expect(RequestID(context.Background())).To(BeEmpty())
}

func TestCurrentConcurrentAccess(t *testing.T) {
	RegisterTestingT(t)

	current := NewCurrent()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Go(func() {
			current.Set("counter", i)
			current.Get("counter")
		})
	}
	wg.Wait()

	Expect(current.Exists("counter")).To(BeTrue())
	_, ok := current.GetString("counter")
	Expect(ok).To(BeFalse())
}
