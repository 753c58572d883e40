package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMetrics_RecordedOnMeter(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := NewMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	RecordRequestMetric(ctx, metrics, "GET", "GET /api/tuition-centres", 200, 15*time.Millisecond)
	RecordCacheHit(ctx, metrics, "search")
	RecordCacheMiss(ctx, metrics, "search")
	RecordDBMetric(ctx, metrics, "search_centres", 3*time.Millisecond)
	RecordSearchResult(ctx, metrics, "postgres", 42)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
	}
	for _, want := range []string{
		"http.server.request.count",
		"http.server.request.duration",
		"db.query.duration",
		"cache.hit.count",
		"cache.miss.count",
		"centre.search.result.total",
	} {
		assert.True(t, names[want], want)
	}
}

func TestRecorders_NilMetricsAreNoops(t *testing.T) {
	assert.NotPanics(t, func() {
		ctx := context.Background()
		RecordRequestMetric(ctx, nil, "GET", "/", 200, time.Millisecond)
		RecordCacheHit(ctx, nil, "search")
		RecordCacheMiss(ctx, nil, "search")
		RecordDBMetric(ctx, nil, "op", time.Millisecond)
		RecordSearchResult(ctx, nil, "memory", 0)
	})
}
