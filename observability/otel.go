package observability

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

var (
	providerOnce sync.Once
	providerErr  error
)

// InitTracing installs a global OpenTelemetry provider with a stdout span
// exporter writing to w. The first successful initialisation wins; subsequent
// calls are no-ops returning the original error, if any.
func InitTracing(serviceName, serviceVersion string, w io.Writer) error {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return fmt.Errorf("create stdout exporter: %w", err)
	}
	return InitTracingWithExporter(serviceName, serviceVersion, exporter)
}

// InitTracingWithExporter installs a global provider backed by the supplied
// exporter, allowing OTLP or other SDK exporters to be plugged in.
func InitTracingWithExporter(serviceName, serviceVersion string, exporter sdktrace.SpanExporter) error {
	if exporter == nil {
		return nil
	}
	providerOnce.Do(func() {
		res, err := resource.New(context.Background(),
			resource.WithAttributes(
				attribute.String("service.name", serviceName),
				attribute.String("service.version", serviceVersion),
			),
		)
		if err != nil {
			providerErr = err
			return
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
	})
	return providerErr
}

// OTelTracer adapts the global OpenTelemetry tracer to the Tracer interface.
type OTelTracer struct {
	name string
}

// NewOTelTracer returns a Tracer delegating to the named otel tracer.
func NewOTelTracer(name string) *OTelTracer {
	return &OTelTracer{name: name}
}

func (t *OTelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, sp := otel.Tracer(t.name).Start(ctx, name)
	return ctx, &otelSpan{span: sp}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) SetTag(key string, value interface{}) {
	switch v := value.(type) {
	case string:
		s.span.SetAttributes(attribute.String(key, v))
	case int:
		s.span.SetAttributes(attribute.Int(key, v))
	case int64:
		s.span.SetAttributes(attribute.Int64(key, v))
	case bool:
		s.span.SetAttributes(attribute.Bool(key, v))
	case float64:
		s.span.SetAttributes(attribute.Float64(key, v))
	default:
		s.span.SetAttributes(attribute.String(key, fmt.Sprint(v)))
	}
}

func (s *otelSpan) SetError(err error) {
	if err == nil {
		s.span.SetStatus(codes.Ok, "")
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *otelSpan) Finish() { s.span.End() }
