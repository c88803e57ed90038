// Package telemetry wires OpenTelemetry trace and log export for processes
// that tick state machines.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/amp-labs/tickfsm/config"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// gkeCollectorEndpoint is used when running in Kubernetes without an explicit endpoint.
const gkeCollectorEndpoint = "http://opentelemetry-collector.opentelemetry.svc.cluster.local:4318"

var (
	mut            sync.Mutex              //nolint:gochecknoglobals
	tracerProvider *sdktrace.TracerProvider //nolint:gochecknoglobals
	loggerProvider *sdklog.LoggerProvider   //nolint:gochecknoglobals
)

// Endpoint returns the collector endpoint for cfg. An empty endpoint falls
// back to the in-cluster collector when running in Kubernetes.
func Endpoint(cfg config.Telemetry) string {
	if cfg.Endpoint != "" {
		return cfg.Endpoint
	}

	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return gkeCollectorEndpoint
	}

	return ""
}

// Initialize sets up OpenTelemetry tracing, and log export when
// cfg.LogsEnabled is set, with the given configuration.
func Initialize(ctx context.Context, cfg config.Telemetry) error {
	if !cfg.Enabled {
		slog.Info("OpenTelemetry is disabled")

		return nil
	}

	endpoint := Endpoint(cfg)
	if endpoint == "" {
		slog.Warn("OpenTelemetry endpoint not configured, telemetry will be disabled")

		return nil
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		return err
	}

	spanExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(endpoint),
		otlptracehttp.WithTimeout(cfg.Timeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	var logExporter sdklog.Exporter

	if cfg.LogsEnabled {
		logExporter, err = otlploghttp.New(ctx,
			otlploghttp.WithEndpointURL(endpoint),
			otlploghttp.WithTimeout(cfg.Timeout),
		)
		if err != nil {
			return errors.Join(
				fmt.Errorf("failed to create OTLP log exporter: %w", err),
				spanExporter.Shutdown(ctx))
		}
	}

	install(res, spanExporter, logExporter)

	slog.Info("OpenTelemetry initialized",
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"environment", cfg.Environment,
		"endpoint", endpoint,
		"logs", cfg.LogsEnabled,
	)

	return nil
}

func newResource(ctx context.Context, cfg config.Telemetry) (*resource.Resource, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.ServiceVersion),
			semconv.DeploymentEnvironmentKey.String(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	return res, nil
}

// install registers the global providers. A nil logExporter leaves log
// export off.
func install(res *resource.Resource, spanExporter sdktrace.SpanExporter, logExporter sdklog.Exporter) {
	mut.Lock()
	defer mut.Unlock()

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(spanExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tracerProvider)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if logExporter == nil {
		loggerProvider = nil

		return
	}

	loggerProvider = sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)

	global.SetLoggerProvider(loggerProvider)
}

// LogHandler returns an slog handler that exports records through the
// OpenTelemetry log bridge, or nil when log export is not initialized.
func LogHandler(name string) slog.Handler { //nolint:ireturn
	mut.Lock()
	defer mut.Unlock()

	if loggerProvider == nil {
		return nil
	}

	return otelslog.NewHandler(name, otelslog.WithLoggerProvider(loggerProvider))
}

// Shutdown flushes and shuts down the tracer and logger providers.
func Shutdown(ctx context.Context) error {
	mut.Lock()
	defer mut.Unlock()

	var errs []error

	if tracerProvider != nil {
		slog.Info("Shutting down OpenTelemetry tracer provider")

		errs = append(errs, tracerProvider.Shutdown(ctx))
		tracerProvider = nil
	}

	if loggerProvider != nil {
		errs = append(errs, loggerProvider.Shutdown(ctx))
		loggerProvider = nil
	}

	return errors.Join(errs...)
}
