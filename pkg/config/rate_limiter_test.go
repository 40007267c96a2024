package config

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"todosync/internal/core/telemetry"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func newTestLimiter() *RateLimiter {
	metrics := telemetry.NewAppMetrics(prometheus.NewRegistry())
	return NewRateLimiter(zap.NewNop(), metrics, GetDefaultConfig().RateLimitConfigs)
}

func newLimitedRouter(rl *RateLimiter, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	if userID != "" {
		router.Use(func(c *gin.Context) {
			c.Set("x-user-id", userID)
			c.Next()
		})
	}
	router.Use(rl.RateLimitMiddleware())

	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	router.GET("/test", ok)
	router.POST("/summarize", ok)
	router.PUT("/todos/:id", ok)

	return router
}

func perform(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestNewRateLimiter(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestLimiter()

	Expect(rl.cache).ToNot(BeNil())
	Expect(rl.config).To(HaveKey("default"))
	Expect(rl.config).To(HaveKey("POST /summarize"))
}

func TestRateLimitMiddleware_DefaultLimit(t *testing.T) {
	RegisterTestingT(t)
	router := newLimitedRouter(newTestLimiter(), "")

	for i := 0; i < 65; i++ {
		w := perform(router, "GET", "/test")

		if i < 60 {
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("X-RateLimit-Limit")).To(Equal("60"))
		} else {
			Expect(w.Code).To(Equal(http.StatusTooManyRequests))
			Expect(w.Body.String()).To(ContainSubstring(`"error"`))
			Expect(w.Header().Get("Retry-After")).ToNot(BeEmpty())
		}
	}
}

func TestRateLimitMiddleware_SummarizeIsStricter(t *testing.T) {
	RegisterTestingT(t)
	router := newLimitedRouter(newTestLimiter(), "alice")

	for i := 0; i < 5; i++ {
		w := perform(router, "POST", "/summarize")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("X-RateLimit-Remaining")).To(Equal(strconv.Itoa(4 - i)))
	}

	Expect(perform(router, "POST", "/summarize").Code).To(Equal(http.StatusTooManyRequests))
}

func TestRateLimitMiddleware_KeysByUser(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestLimiter()
	alice := newLimitedRouter(rl, "alice")
	bob := newLimitedRouter(rl, "bob")

	for i := 0; i < 5; i++ {
		perform(alice, "POST", "/summarize")
	}

	Expect(perform(alice, "POST", "/summarize").Code).To(Equal(http.StatusTooManyRequests))
	Expect(perform(bob, "POST", "/summarize").Code).To(Equal(http.StatusOK))
}

func TestRateLimitMiddleware_RouteTemplateSharesBucket(t *testing.T) {
	RegisterTestingT(t)
	router := newLimitedRouter(newTestLimiter(), "alice")

	perform(router, "PUT", "/todos/one")
	w := perform(router, "PUT", "/todos/two")

	Expect(w.Header().Get("X-RateLimit-Limit")).To(Equal("60"))
	Expect(w.Header().Get("X-RateLimit-Remaining")).To(Equal("58"))
}

func TestRateLimitMiddleware_WindowReset(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestLimiter()
	rl.SetConfig("GET /test", RateLimitEndpointConfig{Requests: 2, Window: 50 * time.Millisecond})
	router := newLimitedRouter(rl, "")

	Expect(perform(router, "GET", "/test").Code).To(Equal(http.StatusOK))
	Expect(perform(router, "GET", "/test").Code).To(Equal(http.StatusOK))
	Expect(perform(router, "GET", "/test").Code).To(Equal(http.StatusTooManyRequests))

	Eventually(func() int {
		return perform(router, "GET", "/test").Code
	}).WithTimeout(time.Second).WithPolling(20 * time.Millisecond).Should(Equal(http.StatusOK))
}

func TestRateLimitMiddleware_NoDoubleCounting(t *testing.T) {
	RegisterTestingT(t)
	rl := newTestLimiter()
	router := newLimitedRouter(rl, "123")

	numRequests := 10
	results := make([]int, numRequests)
	var wg sync.WaitGroup

	for i := 0; i < numRequests; i++ {
		wg.Go(func() {
			w := perform(router, "PUT", "/todos/abc")
			remaining, _ := strconv.Atoi(w.Header().Get("X-RateLimit-Remaining"))
			results[i] = remaining
		})
	}

	wg.Wait()

	expected := []int{50, 51, 52, 53, 54, 55, 56, 57, 58, 59}
	sort.Ints(results)

	Expect(results).To(Equal(expected))
}
