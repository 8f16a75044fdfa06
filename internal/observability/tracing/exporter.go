package tracing

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// SpanSnapshot is the JSON form of a finished span.
type SpanSnapshot struct {
	TraceID      string         `json:"trace_id"`
	SpanID       string         `json:"span_id"`
	ParentSpanID string         `json:"parent_span_id,omitempty"`
	Name         string         `json:"name"`
	Kind         string         `json:"kind"`
	Attributes   map[string]any `json:"attributes,omitempty"`
	Status       string         `json:"status"`
	StatusMsg    string         `json:"status_message,omitempty"`
	StartTime    time.Time      `json:"start_time"`
	EndTime      time.Time      `json:"end_time"`
	ServiceName  string         `json:"service_name,omitempty"`
}

// fileExporter appends spans to a JSONL file readable by the owner only.
type fileExporter struct {
	mu  sync.Mutex
	fw  *os.File
	enc *json.Encoder
}

var _ sdktrace.SpanExporter = (*fileExporter)(nil)

func newFileExporter(path string) (*fileExporter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return &fileExporter{fw: f, enc: json.NewEncoder(f)}, nil
}

func (f *fileExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fw == nil {
		return nil
	}
	for _, span := range spans {
		if err := f.enc.Encode(snapshot(span)); err != nil {
			return err
		}
	}
	return nil
}

func (f *fileExporter) Shutdown(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fw == nil {
		return nil
	}
	err := f.fw.Close()
	f.fw = nil
	return err
}

func snapshot(span sdktrace.ReadOnlySpan) SpanSnapshot {
	sc := span.SpanContext()
	out := SpanSnapshot{
		TraceID:   sc.TraceID().String(),
		SpanID:    sc.SpanID().String(),
		Name:      span.Name(),
		Kind:      span.SpanKind().String(),
		Status:    "unset",
		StatusMsg: span.Status().Description,
		StartTime: span.StartTime(),
		EndTime:   span.EndTime(),
	}
	if parent := span.Parent(); parent.IsValid() {
		out.ParentSpanID = parent.SpanID().String()
	}
	switch span.Status().Code {
	case codes.Ok:
		out.Status = "ok"
	case codes.Error:
		out.Status = "error"
	}
	if attrs := span.Attributes(); len(attrs) > 0 {
		out.Attributes = make(map[string]any, len(attrs))
		for _, kv := range attrs {
			out.Attributes[string(kv.Key)] = attributeValue(kv)
		}
	}
	if res := span.Resource(); res != nil {
		if v, ok := res.Set().Value(semconv.ServiceNameKey); ok {
			out.ServiceName = v.AsString()
		}
	}
	return out
}

func attributeValue(kv attribute.KeyValue) any {
	switch kv.Value.Type() {
	case attribute.BOOL:
		return kv.Value.AsBool()
	case attribute.INT64:
		return kv.Value.AsInt64()
	case attribute.FLOAT64:
		return kv.Value.AsFloat64()
	case attribute.STRING:
		return kv.Value.AsString()
	default:
		return kv.Value.Emit()
	}
}
