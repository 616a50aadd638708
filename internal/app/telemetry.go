package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"todoTracker/internal/config"
	"todoTracker/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const exportTimeout = 10 * time.Second

// initTelemetry installs global tracer and meter providers for the configured exporter.
// The otelhttp wrapper on the router records into them. stdout output goes to w.
// The returned func flushes and stops both providers.
func initTelemetry(ctx context.Context, cfg config.TelemetryConfig, w io.Writer) (func(context.Context) error, error) {
	if cfg.Exporter == "" || cfg.Exporter == config.ExporterNone {
		tp := sdktrace.NewTracerProvider()
		mp := sdkmetric.NewMeterProvider()
		otel.SetTracerProvider(tp)
		otel.SetMeterProvider(mp)
		return func(ctx context.Context) error {
			return multierr.Append(tp.Shutdown(ctx), mp.Shutdown(ctx))
		}, nil
	}

	res, err := newResource(ctx, cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	var (
		spanExporter   sdktrace.SpanExporter
		metricExporter sdkmetric.Exporter
		traceOpts      []sdktrace.TracerProviderOption
	)

	switch cfg.Exporter {
	case config.ExporterStdout:
		spanExporter, err = stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("create stdout trace exporter: %w", err)
		}
		metricExporter, err = stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		// print spans as they end
		traceOpts = append(traceOpts, sdktrace.WithSyncer(spanExporter))

	case config.ExporterOTLP:
		spanExporter, metricExporter, err = newOTLPExporters(cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(spanExporter, sdktrace.WithBatchTimeout(5*time.Second)))

	default:
		return nil, fmt.Errorf("unknown telemetry exporter %q", cfg.Exporter)
	}

	interval := cfg.MetricInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	tp := sdktrace.NewTracerProvider(append(traceOpts,
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
	)...)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(interval))),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("Telemetry enabled",
		zap.String("exporter", cfg.Exporter),
		zap.String("service", cfg.ServiceName))

	return func(ctx context.Context) error {
		return multierr.Append(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

// newOTLPExporters builds HTTP exporters. Without an endpoint the SDK reads
// OTEL_EXPORTER_OTLP_ENDPOINT and OTEL_EXPORTER_OTLP_HEADERS.
func newOTLPExporters(endpoint string) (sdktrace.SpanExporter, sdkmetric.Exporter, error) {
	traceOpts := []otlptracehttp.Option{otlptracehttp.WithTimeout(exportTimeout)}
	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithTimeout(exportTimeout)}
	if endpoint != "" {
		traceOpts = append(traceOpts, otlptracehttp.WithEndpointURL(endpoint+"/v1/traces"))
		metricOpts = append(metricOpts, otlpmetrichttp.WithEndpointURL(endpoint+"/v1/metrics"))
	}

	// exporters outlive the init context
	spanExporter, err := otlptracehttp.New(context.Background(), traceOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp trace exporter: %w", err)
	}
	metricExporter, err := otlpmetrichttp.New(context.Background(), metricOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}
	return spanExporter, metricExporter, nil
}

// newResource names the service. OTEL_RESOURCE_ATTRIBUTES and OTEL_SERVICE_NAME win over serviceName.
func newResource(ctx context.Context, serviceName string) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attribute.String("service.name", serviceName)),
		resource.WithFromEnv(),
	)
	if err != nil {
		if errors.Is(err, resource.ErrPartialResource) {
			return res, nil
		}
		return nil, fmt.Errorf("create telemetry resource: %w", err)
	}
	return res, nil
}
