// Package rpc serves the cipher pipeline over gRPC as the inop.v1.Cipher
// service. Messages are google.protobuf.Struct values so clients in any
// language can call the service without generated stubs.
package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"unicode/utf8"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/inop/internal/alphabet"
	"github.com/RowanDark/inop/internal/cipher"
	"github.com/RowanDark/inop/internal/logging"
	"github.com/RowanDark/inop/internal/machine"
	"github.com/RowanDark/inop/internal/observability/metrics"
	"github.com/RowanDark/inop/internal/observability/tracing"
	"github.com/RowanDark/inop/internal/wheels"
)

const (
	ServiceName      = "inop.v1.Cipher"
	MethodEncrypt    = "/" + ServiceName + "/Encrypt"
	MethodDecrypt    = "/" + ServiceName + "/Decrypt"
	MethodListWheels = "/" + ServiceName + "/ListWheels"
)

// CipherServer is the server API of inop.v1.Cipher.
type CipherServer interface {
	Encrypt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Decrypt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListWheels(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// Config configures the gRPC service.
type Config struct {
	Settings cipher.Settings
	Flags    cipher.Flags
	Catalog  *wheels.Catalog
	Profiles *cipher.ProfileStore
	Metrics  *metrics.Registry
	Audit    *logging.AuditLogger
	Logger   *slog.Logger
}

// Service implements CipherServer. Each call assembles its own pipeline.
type Service struct {
	cfg     Config
	catalog *wheels.Catalog
	audit   *logging.AuditLogger
	logger  *slog.Logger
	metrics *metrics.Registry
}

var _ CipherServer = (*Service)(nil)

// NewService validates the default settings and flags.
func NewService(cfg Config) (*Service, error) {
	if cfg.Catalog == nil {
		cfg.Catalog = wheels.Default()
	}
	if err := cfg.Settings.Validate(cfg.Catalog); err != nil {
		return nil, fmt.Errorf("rpc: %w", err)
	}
	if err := cfg.Flags.Validate(); err != nil {
		return nil, fmt.Errorf("rpc: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	audit := cfg.Audit
	if audit == nil {
		audit = logging.Discard()
	}
	return &Service{
		cfg:     cfg,
		catalog: cfg.Catalog,
		audit:   audit.WithComponent("rpc"),
		logger:  logger,
		metrics: cfg.Metrics,
	}, nil
}

// NewServer returns a gRPC server with the service registered and the
// request id and metrics interceptor installed.
func NewServer(svc *Service, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(
		tracing.UnaryServerInterceptor(),
		svc.UnaryInterceptor(),
	)}, opts...)
	srv := grpc.NewServer(opts...)
	RegisterCipherServer(srv, svc)
	return srv
}

// Serve runs srv on lis until ctx is cancelled, then stops it gracefully.
func Serve(ctx context.Context, srv *grpc.Server, lis net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		srv.GracefulStop()
		err := <-errCh
		if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

// Encrypt takes {message, profile?} and returns
// {ciphertext, blocks, marker, suite, request_id}.
func (s *Service) Encrypt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := s.pipeline(str(req, "profile"))
	if err != nil {
		return nil, toStatus(err)
	}
	suite := p.Session().Suite().Name
	ct, marker, err := p.Encrypt(str(req, "message"))
	if err != nil {
		s.emit(ctx, logging.EventEncrypt, suite, logging.OutcomeFailure, err, nil)
		return nil, toStatus(err)
	}
	s.emit(ctx, logging.EventEncrypt, suite, logging.OutcomeSuccess, nil, map[string]any{
		"symbols": utf8.RuneCountInString(ct),
	})
	return structpb.NewStruct(map[string]any{
		"ciphertext": ct,
		"blocks":     cipher.Blocks(ct, p.Flags().Block),
		"marker":     marker,
		"suite":      suite,
		"request_id": RequestID(ctx),
	})
}

// Decrypt takes {ciphertext, marker?, profile?} and returns
// {plaintext, display, request_id}.
func (s *Service) Decrypt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	ciphertext := str(req, "ciphertext")
	if ciphertext == "" {
		return nil, status.Error(codes.InvalidArgument, "ciphertext field is required")
	}
	p, err := s.pipeline(str(req, "profile"))
	if err != nil {
		return nil, toStatus(err)
	}
	suite := p.Session().Suite().Name
	pt, err := p.Decrypt(ciphertext, str(req, "marker"))
	if err != nil {
		s.emit(ctx, logging.EventDecryptFailed, suite, logging.OutcomeFailure, err, nil)
		return nil, toStatus(err)
	}
	s.emit(ctx, logging.EventDecrypt, suite, logging.OutcomeSuccess, nil, map[string]any{
		"symbols": utf8.RuneCountInString(pt),
	})
	return structpb.NewStruct(map[string]any{
		"plaintext":  pt,
		"display":    alphabet.Restore(pt),
		"request_id": RequestID(ctx),
	})
}

// ListWheels takes {suite?} and returns {suites: [{suite, alphabet,
// rotors, reflectors}]}.
func (s *Service) ListWheels(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	suites := alphabet.Suites()
	if name := str(req, "suite"); name != "" {
		suite, err := alphabet.LookupSuite(name)
		if err != nil {
			return nil, status.Error(codes.NotFound, err.Error())
		}
		suites = []alphabet.Suite{suite}
	}
	out := make([]any, 0, len(suites))
	for _, suite := range suites {
		out = append(out, map[string]any{
			"suite":      suite.Name,
			"alphabet":   suite.Alphabet.String(),
			"rotors":     anySlice(s.catalog.Rotors(suite.Name)),
			"reflectors": anySlice(s.catalog.Reflectors(suite.Name)),
		})
	}
	return structpb.NewStruct(map[string]any{"suites": out})
}

var errProfileNotFound = errors.New("profile not found")

func (s *Service) pipeline(profile string) (*cipher.Pipeline, error) {
	settings, flags := s.cfg.Settings, s.cfg.Flags
	if profile != "" {
		var p *cipher.Profile
		ok := false
		if s.cfg.Profiles != nil {
			p, ok = s.cfg.Profiles.Get(profile)
		}
		if !ok {
			return nil, fmt.Errorf("%w: %s", errProfileNotFound, profile)
		}
		settings, flags = p.Settings, p.Flags
	}
	return cipher.NewPipeline(settings, s.catalog, flags,
		cipher.WithLogger(s.logger),
		cipher.WithObserver(s.metrics),
	)
}

func (s *Service) emit(ctx context.Context, event logging.EventType, suite string, outcome logging.Outcome, err error, meta map[string]any) {
	ev := logging.AuditEvent{
		RequestID: RequestID(ctx),
		EventType: event,
		Suite:     suite,
		Outcome:   outcome,
		Metadata:  meta,
	}
	if err != nil {
		ev.Reason = err.Error()
	}
	if emitErr := s.audit.Emit(ev); emitErr != nil {
		s.logger.Warn("audit emit failed", slog.Any("error", emitErr))
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, errProfileNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, cipher.ErrMarkerNotFound),
		errors.Is(err, machine.ErrInvalidSymbol),
		errors.Is(err, machine.ErrOutOfRange):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func str(s *structpb.Struct, field string) string {
	return s.GetFields()[field].GetStringValue()
}

func anySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
