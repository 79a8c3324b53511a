package telemetry

import (
	"context"
	"fmt"

	"github.com/charro/storefront/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerProvider ships zap records to the collector through the otelzap bridge
type LoggerProvider struct {
	provider *sdklog.LoggerProvider
	name     string
	logger   *zap.Logger
}

// NewLoggerProvider exports log records over OTLP/gRPC. A disabled provider's
// Core is a no-op.
func NewLoggerProvider(ctx context.Context, cfg config.TelemetryConfig, version string, logger *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{name: cfg.ServiceName, logger: logger}
	if !cfg.Enabled {
		return lp, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP logs exporter: %w", err)
	}

	if err := lp.install(cfg, version, sdklog.NewBatchProcessor(exporter)); err != nil {
		return nil, err
	}
	logger.Info("Log export initialized", zap.String("collector_endpoint", cfg.CollectorEndpoint))
	return lp, nil
}

// NewLoggerProviderWithProcessor installs a provider feeding processor directly
func NewLoggerProviderWithProcessor(cfg config.TelemetryConfig, processor sdklog.Processor, logger *zap.Logger) (*LoggerProvider, error) {
	lp := &LoggerProvider{name: cfg.ServiceName, logger: logger}
	if err := lp.install(cfg, "test", processor); err != nil {
		return nil, err
	}
	return lp, nil
}

func (lp *LoggerProvider) install(cfg config.TelemetryConfig, version string, processor sdklog.Processor) error {
	res, err := newResource(cfg, version)
	if err != nil {
		return err
	}
	lp.provider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(processor),
	)
	global.SetLoggerProvider(lp.provider)
	return nil
}

// IsEnabled reports whether records are being exported
func (lp *LoggerProvider) IsEnabled() bool {
	return lp.provider != nil
}

// Core returns a zap core writing to the provider, for use with logger.Tee
func (lp *LoggerProvider) Core() zapcore.Core {
	if lp.provider == nil {
		return zapcore.NewNopCore()
	}
	return otelzap.NewCore(lp.name, otelzap.WithLoggerProvider(lp.provider))
}

// Shutdown flushes and stops the provider
func (lp *LoggerProvider) Shutdown(ctx context.Context) error {
	if lp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := lp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown logger provider: %w", err)
	}
	return nil
}
