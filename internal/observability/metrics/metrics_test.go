package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsForbiddenLabels(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("outcome", "success"),
		attribute.String("tenant_id", "456"),
		attribute.String("source", "bulk"),
	)
	if len(attrs) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(attrs))
	}
	for _, attr := range attrs {
		if attr.Key == "tenant_id" {
			t.Fatalf("expected tenant_id to be dropped")
		}
	}
}

func TestRecordersAreNilSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.RecordReading(ctx, "single")
	m.RecordPayment(ctx, "electricity")
	m.RecordLogin(ctx, "success")
	m.RecordDocuments(ctx, 2)

	m, err := New(Config{ServiceName: "test"}, noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}
	m.RecordReading(ctx, "bulk")
}

func TestHTTPMetricsCountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m, err := NewHTTPMetricsWithRegisterer(Config{ServiceName: "test", Environment: "test"}, reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	r := gin.New()
	r.Use(GinMiddleware(m))
	r.GET("/rooms/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/rooms/1", "/rooms/2", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/rooms/:id", "200")); got != 2 {
		t.Fatalf("expected 2 room requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "unknown", "404")); got != 1 {
		t.Fatalf("expected 1 unknown request, got %v", got)
	}

	if _, err := NewHTTPMetricsWithRegisterer(Config{ServiceName: "test", Environment: "test"}, reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}
