package telemetry

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const metricsStartKey = "telemetry:metrics_start"

// DBMetricsConfig holds configuration for database metrics
type DBMetricsConfig struct {
	Enabled       bool
	SlowThreshold time.Duration
	Meter         metric.Meter
}

type dbMetrics struct {
	queryTotal    *Counter
	queryDuration *Histogram
	slowQueries   *Counter
	queryErrors   *Counter
	slowThreshold time.Duration
}

// RegisterDBMetrics counts and times every GORM statement by operation and
// table, and reports the connection pool through observable gauges.
func RegisterDBMetrics(db *gorm.DB, cfg DBMetricsConfig, logger *zap.Logger) error {
	if !cfg.Enabled || cfg.Meter == nil {
		return nil
	}
	meter := cfg.Meter

	m := &dbMetrics{slowThreshold: cfg.SlowThreshold}
	var err error
	if m.queryTotal, err = NewCounter(meter, "db_query_total", "Total number of database statements", "{query}"); err != nil {
		return err
	}
	if m.queryErrors, err = NewCounter(meter, "db_query_errors_total", "Database statements that failed", "{query}"); err != nil {
		return err
	}
	if m.slowQueries, err = NewCounter(meter, "db_slow_query_total", "Database statements slower than the threshold", "{query}"); err != nil {
		return err
	}
	if m.queryDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "db_query_duration_seconds",
		Description: "Database statement latency in seconds",
		Unit:        "s",
		Boundaries:  DBDurationBuckets,
	}); err != nil {
		return err
	}

	if err := m.register(db); err != nil {
		return err
	}
	if err := registerPoolGauges(db, meter); err != nil {
		return err
	}

	logger.Info("Database metrics enabled", zap.Duration("slow_query_threshold", cfg.SlowThreshold))
	return nil
}

func (m *dbMetrics) register(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("metrics:before_create", m.before),
		cb.Create().After("gorm:create").Register("metrics:after_create", m.after("create")),
		cb.Query().Before("gorm:query").Register("metrics:before_query", m.before),
		cb.Query().After("gorm:query").Register("metrics:after_query", m.after("select")),
		cb.Update().Before("gorm:update").Register("metrics:before_update", m.before),
		cb.Update().After("gorm:update").Register("metrics:after_update", m.after("update")),
		cb.Delete().Before("gorm:delete").Register("metrics:before_delete", m.before),
		cb.Delete().After("gorm:delete").Register("metrics:after_delete", m.after("delete")),
		cb.Row().Before("gorm:row").Register("metrics:before_row", m.before),
		cb.Row().After("gorm:row").Register("metrics:after_row", m.after("")),
		cb.Raw().Before("gorm:raw").Register("metrics:before_raw", m.before),
		cb.Raw().After("gorm:raw").Register("metrics:after_raw", m.after("")),
	)
}

func (m *dbMetrics) before(db *gorm.DB) {
	db.InstanceSet(metricsStartKey, time.Now())
}

// after returns the callback for op. Row and raw statements pass "" and are
// classified from their SQL.
func (m *dbMetrics) after(op string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(metricsStartKey)
		if !ok {
			return
		}
		start, ok := v.(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(start)

		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}
		operation := op
		if operation == "" {
			operation = operationFromSQL(db.Statement.SQL.String())
		}
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}
		attrs := []attribute.KeyValue{AttrDBOperation.String(operation), AttrDBTable.String(table)}

		m.queryTotal.Inc(ctx, attrs...)
		m.queryDuration.RecordDuration(ctx, elapsed, attrs...)
		if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
			m.queryErrors.Inc(ctx, attrs...)
		}
		if m.slowThreshold > 0 && elapsed > m.slowThreshold {
			m.slowQueries.Inc(ctx, attrs...)
		}
	}
}

func operationFromSQL(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "other"
	}
	switch verb := strings.ToLower(fields[0]); verb {
	case "select", "insert", "update", "delete":
		return verb
	default:
		return "other"
	}
}

// registerPoolGauges reports database/sql pool stats on each collection
func registerPoolGauges(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	conns, err := meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	maxOpen, err := meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Maximum open connections allowed"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return err
	}
	waits, err := meter.Int64ObservableCounter("db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{wait}"))
	if err != nil {
		return err
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(maxOpen, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, conns, maxOpen, waits)
	return err
}
