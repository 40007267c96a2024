package telemetry

import (
	"context"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/gomega"

	"todosync/pkg/config"
)

func TestContainerServesMetrics(t *testing.T) {
	RegisterTestingT(t)
	ctx := context.Background()

	container, err := NewContainer(ctx, Config{
		ServiceName:    "todosync",
		ServiceVersion: "test",
		Environment:    "test",
		MetricsPort:    "0",
	}, config.NewNopLogger())
	Expect(err).To(BeNil())
	defer container.Shutdown(ctx)

	container.AppMetrics.RecordSummaryOutcome(ctx, "sent")

	probe := container.NewTelemetryProbe()
	_, span := probe.StartServiceSpan(ctx, "todo", "List", "alice", nil)
	span.End()

	rr := httptest.NewRecorder()
	container.MetricsServer.Handler.ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	Expect(rr.Code).To(Equal(200))
	Expect(rr.Body.String()).To(ContainSubstring(`summary_requests_total{outcome="sent"} 1`))
	Expect(rr.Body.String()).To(ContainSubstring("go_goroutines"))
}
