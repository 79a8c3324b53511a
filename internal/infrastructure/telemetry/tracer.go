// Package telemetry sets up OpenTelemetry traces, metrics and logs for the
// API server and its database layer.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/charro/storefront/internal/infrastructure/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// TracerProvider owns the SDK provider installed as the global one.
// A disabled TracerProvider leaves the global no-op provider in place.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	cfg      config.TelemetryConfig
	logger   *zap.Logger
}

// NewTracerProvider exports spans over OTLP/gRPC to cfg.CollectorEndpoint
func NewTracerProvider(ctx context.Context, cfg config.TelemetryConfig, version string, logger *zap.Logger) (*TracerProvider, error) {
	tp := &TracerProvider{cfg: cfg, logger: logger}
	if !cfg.Enabled {
		logger.Info("Telemetry disabled")
		return tp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	provider, err := newSDKProvider(cfg, version, sdktrace.WithBatcher(exporter))
	if err != nil {
		return nil, err
	}
	tp.install(provider)

	logger.Info("Tracing initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
		zap.String("service_name", cfg.ServiceName),
	)
	return tp, nil
}

// NewTracerProviderWithProcessor installs a provider feeding sp directly.
// Tests use it with a span recorder.
func NewTracerProviderWithProcessor(cfg config.TelemetryConfig, sp sdktrace.SpanProcessor, logger *zap.Logger) (*TracerProvider, error) {
	cfg.Enabled = true
	provider, err := newSDKProvider(cfg, "test", sdktrace.WithSpanProcessor(sp))
	if err != nil {
		return nil, err
	}
	tp := &TracerProvider{cfg: cfg, logger: logger}
	tp.install(provider)
	return tp, nil
}

// newResource describes the service to every signal's provider
func newResource(cfg config.TelemetryConfig, version string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

func newSDKProvider(cfg config.TelemetryConfig, version string, export sdktrace.TracerProviderOption) (*sdktrace.TracerProvider, error) {
	res, err := newResource(cfg, version)
	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		export,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SamplingRatio)),
	), nil
}

func sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

func (tp *TracerProvider) install(provider *sdktrace.TracerProvider) {
	tp.provider = provider
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// IsEnabled reports whether spans are being exported
func (tp *TracerProvider) IsEnabled() bool {
	return tp.provider != nil
}

// Tracer returns a named tracer
func (tp *TracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if tp.provider == nil {
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return tp.provider.Tracer(name, opts...)
}

// ForceFlush exports buffered spans
func (tp *TracerProvider) ForceFlush(ctx context.Context) error {
	if tp.provider == nil {
		return nil
	}
	return tp.provider.ForceFlush(ctx)
}

// Shutdown flushes and stops the provider
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := tp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	tp.logger.Info("Tracer provider shut down")
	return nil
}
