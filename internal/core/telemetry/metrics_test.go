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

func TestAppMetrics_RecordUserOperation(t *testing.T) {
	RegisterTestingT(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	metrics.RecordUserOperation(ctx, "create", nil)
	metrics.RecordUserOperation(ctx, "create", nil)
	metrics.RecordUserOperation(ctx, "create", errors.New("boom"))

	Expect(testutil.ToFloat64(metrics.userOperations.WithLabelValues("create", "ok"))).To(Equal(2.0))
	Expect(testutil.ToFloat64(metrics.userOperations.WithLabelValues("create", "error"))).To(Equal(1.0))
}

func TestAppMetrics_RecordRequest(t *testing.T) {
	RegisterTestingT(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())

	metrics.RecordRequest(context.Background(), "GET", "/users", 200, 10*time.Millisecond)

	Expect(testutil.ToFloat64(metrics.requestTotal.WithLabelValues("GET", "/users", "200"))).To(Equal(1.0))
}

func TestAppMetrics_ActiveConnections(t *testing.T) {
	RegisterTestingT(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())
	ctx := context.Background()

	metrics.IncrementActiveConnections(ctx)
	metrics.IncrementActiveConnections(ctx)
	metrics.DecrementActiveConnections(ctx)

	Expect(testutil.ToFloat64(metrics.activeConnections)).To(Equal(1.0))
}

func TestOTELProbe_RecordsOperations(t *testing.T) {
	RegisterTestingT(t)

	metrics := NewAppMetrics(prometheus.NewRegistry())
	probe := NewOTELProbe(nil, metrics)
	ctx := context.Background()

	ctx, span := probe.StartServiceSpan(ctx, "user", "delete", map[string]any{"user.id": int64(4)})
	probe.RecordServiceOperation(ctx, "user", "delete", time.Millisecond, nil)
	probe.RecordRepositoryOperation(ctx, "delete", "users", time.Millisecond, nil)
	probe.RecordBusinessEvent(ctx, "user.deleted", "user", "4", nil)
	span.End()

	Expect(testutil.ToFloat64(metrics.userOperations.WithLabelValues("delete", "ok"))).To(Equal(1.0))
	Expect(testutil.ToFloat64(metrics.databaseOperations.WithLabelValues("delete", "users"))).To(Equal(1.0))
}
