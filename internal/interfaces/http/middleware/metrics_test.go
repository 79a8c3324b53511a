package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	router := gin.New()
	router.Use(HTTPMetrics(HTTPMetricsConfig{Enabled: true, Meter: provider.Meter("test"), Logger: zap.NewNop()}))
	router.GET("/products/:slug", okHandler)

	for _, path := range []string{"/products/tee", "/products/hoodie", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := collectMetrics(t, reader)

	total, ok := got["http_server_request_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := make(map[string]int64)
	for _, dp := range total.DataPoints {
		route, _ := dp.Attributes.Value(attribute.Key("http_route"))
		status, _ := dp.Attributes.Value(attribute.Key("http_status_code"))
		counts[route.AsString()+" "+status.Emit()] += dp.Value
	}
	assert.Equal(t, int64(2), counts["/products/:slug 200"])
	assert.Equal(t, int64(1), counts["unknown 404"])

	duration, ok := got["http_server_request_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var observed uint64
	for _, dp := range duration.DataPoints {
		observed += dp.Count
	}
	assert.Equal(t, uint64(3), observed)

	active, ok := got["http_server_active_requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	for _, dp := range active.DataPoints {
		assert.Zero(t, dp.Value)
	}
}

func TestHTTPMetrics_Disabled(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	router := gin.New()
	router.Use(HTTPMetrics(HTTPMetricsConfig{Enabled: false, Meter: provider.Meter("test")}))
	router.GET("/ping", okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, collectMetrics(t, reader))
}
