package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestAppMetricsCounters(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()
	metrics := NewAppMetrics(prometheus.NewRegistry())

	metrics.RecordRequest(ctx, "GET", "/todos", "200", 10*time.Millisecond)
	metrics.RecordDatabaseOperation(ctx, "Create", "todos", nil)
	metrics.RecordDatabaseOperation(ctx, "Create", "todos", errors.New("locked"))
	metrics.RecordSummaryOutcome(ctx, "sent")
	metrics.RecordAuthFailure(ctx, "expired")
	metrics.RecordAuthFailure(ctx, "expired")
	metrics.RecordCacheHit(ctx, "todos")
	metrics.RecordCacheMiss(ctx, "todos")
	metrics.IncrementActiveConnections(ctx)
	metrics.IncrementActiveConnections(ctx)
	metrics.DecrementActiveConnections(ctx)

	Expect(testutil.ToFloat64(metrics.requestTotal.WithLabelValues("GET", "/todos", "200"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.databaseOperations.WithLabelValues("Create", "todos", "ok"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.databaseOperations.WithLabelValues("Create", "todos", "error"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.summaryOutcomes.WithLabelValues("sent"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.authFailures.WithLabelValues("expired"))).To(Equal(2.0))
	Expect(testutil.ToFloat64(metrics.cacheHits.WithLabelValues("todos"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.cacheMisses.WithLabelValues("todos"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.activeConnections)).To(Equal(1.0))
}

func TestNoOpProbeIsSafe(t *testing.T) {
	RegisterTestingT(t)
	probe := NewNoOpProbe()

	ctx, span := probe.StartServiceSpan(context.Background(), "todo", "Create", "alice", nil)
	span.SetAttributes(map[string]any{"k": "v"})
	span.RecordError(errors.New("boom"))
	span.End()

	Expect(ctx).NotTo(BeNil())
}
