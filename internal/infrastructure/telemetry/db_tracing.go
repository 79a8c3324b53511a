package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type contextKey string

const queryStartKey contextKey = "otel_query_start"

// DBTracingConfig holds configuration for database tracing
type DBTracingConfig struct {
	Enabled       bool
	DBSystem      string
	SlowThreshold time.Duration
	// Include bound query variables in db.statement. Leave off in production.
	WithVariables bool
	// Defaults to the global provider
	Provider trace.TracerProvider
}

// RegisterDBTracing installs otelgorm plus callbacks that tag each
// statement span with its table and row count, and flag failed or slow ones.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.WithVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if cfg.Provider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(cfg.Provider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	c := &statementCallbacks{slowThreshold: cfg.SlowThreshold}
	if err := c.register(db); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowThreshold),
	)
	return nil
}

type statementCallbacks struct {
	slowThreshold time.Duration
}

func (c *statementCallbacks) register(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("telemetry:before_create", c.before),
		cb.Create().After("gorm:create").Before("otel:after:create").Register("telemetry:after_create", c.after),
		cb.Query().Before("gorm:query").Register("telemetry:before_query", c.before),
		cb.Query().After("gorm:query").Before("otel:after:select").Register("telemetry:after_query", c.after),
		cb.Update().Before("gorm:update").Register("telemetry:before_update", c.before),
		cb.Update().After("gorm:update").Before("otel:after:update").Register("telemetry:after_update", c.after),
		cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", c.before),
		cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("telemetry:after_delete", c.after),
		cb.Row().Before("gorm:row").Register("telemetry:before_row", c.before),
		cb.Row().After("gorm:row").Before("otel:after:row").Register("telemetry:after_row", c.after),
		cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", c.before),
		cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("telemetry:after_raw", c.after),
	)
}

func (c *statementCallbacks) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey, time.Now())
	}
}

func (c *statementCallbacks) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	if db.Statement.RowsAffected >= 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	}
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartKey).(time.Time)
	if !ok || c.slowThreshold <= 0 {
		return
	}
	if elapsed := time.Since(start); elapsed > c.slowThreshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query")
	}
}
