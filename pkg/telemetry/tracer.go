package telemetry

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Span attribute keys.
var (
	AttrRevision         = attribute.Key("refdata.revision")
	AttrPreviousRevision = attribute.Key("refdata.previous_revision")
	AttrSource           = attribute.Key("refdata.source")
	AttrSeedFiles        = attribute.Key("refdata.seed_files")
	AttrRecords          = attribute.Key("refdata.records")
	AttrKind             = attribute.Key("refdata.kind")
	AttrAllowed          = attribute.Key("policy.allowed")
	AttrViolations       = attribute.Key("policy.violations")
	AttrReloadStatus     = attribute.Key("reload.status")
)

// Tracer creates spans for the load, lint and publish stages.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewTracer builds a tracer provider. A disabled configuration yields a
// provider that never samples, so callers can start spans unconditionally.
func NewTracer(cfg TracingConfig, serviceName, serviceVersion, environment string, extra map[string]string) (*Tracer, error) {
	if !cfg.Enabled {
		provider := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample()))
		return &Tracer{provider: provider, tracer: provider.Tracer(serviceName)}, nil
	}

	attrs := []attribute.KeyValue{
		semconv.ServiceNameKey.String(serviceName),
		semconv.ServiceVersionKey.String(serviceVersion),
		attribute.String("environment", environment),
	}
	for k, v := range extra {
		attrs = append(attrs, attribute.String(k, v))
	}
	res, err := resource.New(context.Background(), resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplingRate))),
	}

	exporter, err := newSpanExporter(cfg, serviceVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	if exporter != nil {
		var batch []sdktrace.BatchSpanProcessorOption
		if cfg.ExportTimeout > 0 {
			batch = append(batch, sdktrace.WithExportTimeout(cfg.ExportTimeout))
		}
		opts = append(opts, sdktrace.WithBatcher(exporter, batch...))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &Tracer{provider: provider, tracer: provider.Tracer(serviceName)}, nil
}

// newSpanExporter returns nil for the "none" exporter: spans are sampled
// but dropped.
func newSpanExporter(cfg TracingConfig, serviceVersion string) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "otlp":
		opts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(cfg.Endpoint),
			otlptracegrpc.WithDialOption(grpc.WithUserAgent("refdata/" + serviceVersion)),
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()))
		}
		return otlptracegrpc.New(context.Background(), opts...)
	case "stdout":
		// stdout carries command output.
		return stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.Exporter)
}

// StartSpan starts a span with attributes.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartLoadSpan starts the span around reading seed files.
func (t *Tracer) StartLoadSpan(ctx context.Context, files int) (context.Context, trace.Span) {
	return t.StartSpan(ctx, "seeds.load", AttrSeedFiles.Int(files))
}

// StartPolicySpan starts the span around linting a snapshot.
func (t *Tracer) StartPolicySpan(ctx context.Context, revision string) (context.Context, trace.Span) {
	return t.StartSpan(ctx, "policy.evaluate", AttrRevision.String(revision))
}

// StartPublishSpan starts the span around swapping in a snapshot.
func (t *Tracer) StartPublishSpan(ctx context.Context, revision string) (context.Context, trace.Span) {
	return t.StartSpan(ctx, "snapshot.publish", AttrRevision.String(revision))
}

// RecordError marks span as failed. It is a no-op for a nil error or span.
func RecordError(span trace.Span, err error) {
	if err == nil || span == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordSuccess marks span as ok.
func RecordSuccess(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
}

// AddEvent adds an event to span.
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Shutdown flushes pending spans and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// TraceID returns the trace id of the span in ctx, or "" when there is none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
