package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/charro/storefront/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
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

func sumByAttrs(t *testing.T, m metricdata.Metrics) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		op, _ := dp.Attributes.Value(AttrDBOperation)
		table, _ := dp.Attributes.Value(AttrDBTable)
		out[op.AsString()+" "+table.AsString()] += dp.Value
	}
	return out
}

func setupMeteredDB(t *testing.T, slow time.Duration) (*gorm.DB, *sdkmetric.ManualReader) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))

	reader := sdkmetric.NewManualReader()
	mp, err := NewMeterProviderWithReader(config.TelemetryConfig{ServiceName: "storefront"}, reader, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	require.NoError(t, RegisterDBMetrics(db, DBMetricsConfig{
		Enabled:       true,
		SlowThreshold: slow,
		Meter:         mp.Meter("test"),
	}, zap.NewNop()))
	return db, reader
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), config.TelemetryConfig{ServiceName: "storefront"}, "test", zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("noop"))
	assert.NoError(t, mp.ForceFlush(context.Background()))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestMeterProviderWithReader(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp, err := NewMeterProviderWithReader(config.TelemetryConfig{ServiceName: "storefront"}, reader, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	require.True(t, mp.IsEnabled())

	orders, err := NewCounter(mp.Meter("test"), "orders_created_total", "Orders created", "{order}")
	require.NoError(t, err)
	orders.Inc(context.Background())
	orders.Inc(context.Background())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	svc, ok := rm.Resource.Set().Value("service.name")
	require.True(t, ok)
	assert.Equal(t, "storefront", svc.AsString())

	got := collect(t, reader)
	sum, ok := got["orders_created_total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
}

func TestRegisterDBMetrics_Disabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	require.NoError(t, RegisterDBMetrics(db, DBMetricsConfig{Enabled: false, Meter: provider.Meter("test")}, zap.NewNop()))
	require.NoError(t, db.AutoMigrate(&widget{}))
	assert.Empty(t, collect(t, reader))
}

func TestRegisterDBMetrics_CountsStatements(t *testing.T) {
	db, reader := setupMeteredDB(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "bolt"}).Error)
	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "nut"}).Error)
	var rows []widget
	require.NoError(t, db.WithContext(ctx).Find(&rows).Error)
	require.Error(t, db.WithContext(ctx).Exec("SELECT * FROM missing_table").Error)

	got := collect(t, reader)
	totals := sumByAttrs(t, got["db_query_total"])
	assert.Equal(t, int64(2), totals["create widgets"])
	assert.Equal(t, int64(1), totals["select widgets"])
	assert.Equal(t, int64(1), totals["select unknown"])

	errs := sumByAttrs(t, got["db_query_errors_total"])
	assert.Equal(t, int64(1), errs["select unknown"])

	_, slow := got["db_slow_query_total"]
	assert.False(t, slow)

	hist, ok := got["db_query_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var observed uint64
	for _, dp := range hist.DataPoints {
		observed += dp.Count
	}
	assert.Equal(t, uint64(4), observed)

	pool, ok := got["db_pool_connections_max"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, pool.DataPoints, 1)
}

func TestRegisterDBMetrics_SlowQuery(t *testing.T) {
	db, reader := setupMeteredDB(t, time.Nanosecond)

	var rows []widget
	require.NoError(t, db.WithContext(context.Background()).Find(&rows).Error)

	slow := sumByAttrs(t, collect(t, reader)["db_slow_query_total"])
	assert.Equal(t, int64(1), slow["select widgets"])
}

func TestOperationFromSQL(t *testing.T) {
	assert.Equal(t, "select", operationFromSQL("  SELECT 1"))
	assert.Equal(t, "insert", operationFromSQL("insert into widgets values (1)"))
	assert.Equal(t, "other", operationFromSQL("PRAGMA foreign_keys"))
	assert.Equal(t, "other", operationFromSQL(""))
}
