package tracing

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// UnaryServerInterceptor wraps unary gRPC handlers in server spans.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = ContextWithMetadataSpan(ctx)
		attrs := []attribute.KeyValue{
			attribute.String("rpc.system", "grpc"),
		}
		service, method := splitMethod(info.FullMethod)
		if service != "" {
			attrs = append(attrs, attribute.String("rpc.service", service))
		}
		if method != "" {
			attrs = append(attrs, attribute.String("rpc.method", method))
		}
		ctx, span := StartSpan(ctx, info.FullMethod, trace.SpanKindServer, attrs...)
		defer span.End()

		resp, err := handler(ctx, req)
		code := status.Code(err)
		span.SetAttributes(attribute.String("rpc.grpc.status_code", code.String()))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, code.String())
			return resp, err
		}
		span.SetStatus(codes.Ok, "")
		return resp, nil
	}
}

func splitMethod(full string) (string, string) {
	full = strings.TrimPrefix(full, "/")
	parts := strings.Split(full, "/")
	if len(parts) != 2 {
		return full, ""
	}
	return parts[0], parts[1]
}
