package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/netutil"

	"github.com/RowanDark/inop/internal/cipher"
	"github.com/RowanDark/inop/internal/logging"
	"github.com/RowanDark/inop/internal/observability/metrics"
	"github.com/RowanDark/inop/internal/observability/tracing"
	"github.com/RowanDark/inop/internal/wheels"
)

const (
	defaultMaxBodyBytes    = 1 << 20
	defaultShutdownTimeout = 5 * time.Second
	requestIDHeader        = "X-Request-Id"
)

// Config configures the REST API server.
type Config struct {
	Addr            string
	Settings        cipher.Settings
	Flags           cipher.Flags
	Catalog         *wheels.Catalog
	Profiles        *cipher.ProfileStore
	Metrics         *metrics.Registry
	Audit           *logging.AuditLogger
	Logger          *slog.Logger
	MaxConns        int
	MaxBodyBytes    int64
	ShutdownTimeout time.Duration
}

// Server exposes the cipher pipeline over HTTP. Every request assembles its
// own pipeline, so requests share no machine state.
type Server struct {
	cfg        Config
	httpServer *http.Server
	catalog    *wheels.Catalog
	audit      *logging.AuditLogger
	logger     *slog.Logger
	metrics    *metrics.Registry
}

// NewServer validates the configuration and constructs a server.
func NewServer(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, errors.New("api address must be provided")
	}
	if cfg.Catalog == nil {
		cfg.Catalog = wheels.Default()
	}
	if err := cfg.Settings.Validate(cfg.Catalog); err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	if err := cfg.Flags.Validate(); err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	audit := cfg.Audit
	if audit == nil {
		audit = logging.Discard()
	}
	return &Server{
		cfg:     cfg,
		catalog: cfg.Catalog,
		audit:   audit.WithComponent("api"),
		logger:  logger,
		metrics: cfg.Metrics,
	}, nil
}

// Handler returns the routed handler with request id and metrics
// middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	mux.Handle("/api/v1/inop/encrypt", s.instrument("encrypt", http.HandlerFunc(s.handleEncrypt)))
	mux.Handle("/api/v1/inop/decrypt", s.instrument("decrypt", http.HandlerFunc(s.handleDecrypt)))
	mux.Handle("/api/v1/inop/wheels", s.instrument("wheels", http.HandlerFunc(s.handleWheels)))
	mux.Handle("/api/v1/inop/profiles", s.instrument("profiles", http.HandlerFunc(s.handleProfiles)))
	return mux
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln, at most MaxConns at a time when set,
// until ctx is cancelled or a fatal error occurs.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConns)
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("api listening", slog.String("addr", ln.Addr().String()))
	_ = s.audit.Emit(logging.AuditEvent{
		EventType: logging.EventServerLifecycle,
		Outcome:   logging.OutcomeInfo,
		Reason:    "api listening on " + ln.Addr().String(),
	})

	errCh := make(chan error, 1)
	go func() {
		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
		return <-errCh
	case err := <-errCh:
		return err
	}
}

type ctxKey struct{}

// RequestID returns the request id attached by the server middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument attaches a request id, echoing a caller supplied UUID, and
// counts the response status per route inside a server span.
func (s *Server) instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = logging.NewRequestID()
		}
		w.Header().Set(requestIDHeader, id)
		r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))

		ctx := tracing.ExtractHTTP(r.Context(), r.Header)
		ctx, span := tracing.StartSpan(ctx, "http."+route, trace.SpanKindServer,
			attribute.String("http.request.method", r.Method),
			attribute.String("http.route", r.URL.Path),
			attribute.String("request.id", id),
		)
		defer span.End()
		r = r.WithContext(ctx)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.RecordHTTPRequest(route, strconv.Itoa(rec.status))
		span.SetAttributes(attribute.Int("http.response.status_code", rec.status))
		if rec.status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(rec.status))
		}
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("write response", slog.Any("error", err))
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error(), RequestID: RequestID(r.Context())})
}
