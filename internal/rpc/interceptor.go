package rpc

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/RowanDark/inop/internal/logging"
)

// RequestIDKey is the metadata key carrying a caller supplied request id.
const RequestIDKey = "x-request-id"

type ctxKey struct{}

// RequestID returns the request id the interceptor attached to ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// UnaryInterceptor attaches a request id, echoing a caller supplied UUID,
// returns it in the response header and counts calls by status code.
func (s *Service) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		id := incomingRequestID(ctx)
		if id == "" {
			id = logging.NewRequestID()
		}
		ctx = context.WithValue(ctx, ctxKey{}, id)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDKey, id))

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)
		s.metrics.RecordRPC(info.FullMethod, code.String())
		s.logger.Debug("rpc",
			slog.String("method", info.FullMethod),
			slog.String("code", code.String()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", id),
		)
		return resp, err
	}
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, v := range md.Get(RequestIDKey) {
		v = strings.TrimSpace(v)
		if _, err := uuid.Parse(v); err == nil {
			return v
		}
	}
	return ""
}
