// Package tracing configures OpenTelemetry spans for the inop servers.
// Tracing is off unless a sample ratio above zero is configured; finished
// spans are appended to a JSONL file when one is set.
package tracing

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/RowanDark/inop"

// Config controls how tracing is initialised for the process.
type Config struct {
	// ServiceName is recorded on every span. Defaults to "inop".
	ServiceName string `yaml:"service_name,omitempty"`
	// SampleRatio is the share of root spans sampled, clamped to [0,1].
	// Zero disables tracing.
	SampleRatio float64 `yaml:"sample_ratio"`
	// FilePath receives finished spans as JSON lines when set.
	FilePath string `yaml:"file,omitempty"`
}

// Validate rejects ratios outside [0,1].
func (c Config) Validate() error {
	if c.SampleRatio < 0 || c.SampleRatio > 1 || math.IsNaN(c.SampleRatio) {
		return fmt.Errorf("sample_ratio must be within [0,1], got %g", c.SampleRatio)
	}
	return nil
}

var (
	globalMu     sync.RWMutex
	globalTracer *Tracer
	disabled     = noop.NewTracerProvider().Tracer(instrumentationName)
)

// Setup installs the process tracer. The returned shutdown function flushes
// pending spans and must be called before exit.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	tracer, err := newTracer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if tracer == nil {
		return func(context.Context) error { return nil }, nil
	}

	globalMu.Lock()
	previous := globalTracer
	globalTracer = tracer
	globalMu.Unlock()

	if previous != nil {
		_ = previous.Shutdown(ctx)
	}

	otel.SetTracerProvider(tracer.provider)
	otel.SetTextMapPropagator(propagator)

	return tracer.Shutdown, nil
}

// CurrentTracer returns the active tracer, or nil when tracing is off.
func CurrentTracer() *Tracer {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalTracer
}

// Tracer bundles the SDK provider with the tracer spans are started from.
type Tracer struct {
	provider    *sdktrace.TracerProvider
	tracer      trace.Tracer
	serviceName string
}

func newTracer(ctx context.Context, cfg Config) (*Tracer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SampleRatio == 0 {
		return nil, nil
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "inop"
	}

	resource, err := sdkresource.New(ctx,
		sdkresource.WithTelemetrySDK(),
		sdkresource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	}
	if path := strings.TrimSpace(cfg.FilePath); path != "" {
		exp, err := newFileExporter(path)
		if err != nil {
			return nil, fmt.Errorf("open trace file: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	return &Tracer{
		provider:    provider,
		tracer:      provider.Tracer(instrumentationName),
		serviceName: serviceName,
	}, nil
}

// Shutdown flushes exporters and releases resources.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	globalMu.Lock()
	if globalTracer == t {
		globalTracer = nil
	}
	globalMu.Unlock()
	return t.provider.Shutdown(shutdownCtx)
}

// ServiceName returns the configured service name.
func (t *Tracer) ServiceName() string {
	if t == nil {
		return ""
	}
	return t.serviceName
}

// StartSpan begins a span derived from ctx. With tracing off the span is a
// non-recording noop, so callers never need to check.
func StartSpan(ctx context.Context, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tr := disabled
	if t := CurrentTracer(); t != nil {
		tr = t.tracer
	}
	return tr.Start(ctx, name, trace.WithSpanKind(kind), trace.WithAttributes(attrs...))
}

// TraceID returns the hex trace id of the span in ctx, or "" when there is
// none.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
