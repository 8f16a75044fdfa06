package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/net/netutil"

	"github.com/RowanDark/inop/internal/api"
	"github.com/RowanDark/inop/internal/cipher"
	"github.com/RowanDark/inop/internal/config"
	"github.com/RowanDark/inop/internal/logging"
	"github.com/RowanDark/inop/internal/observability/metrics"
	"github.com/RowanDark/inop/internal/observability/tracing"
	"github.com/RowanDark/inop/internal/rpc"
	"github.com/RowanDark/inop/internal/wheels"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to inop.yml (default ./inop.yml when present)")
	httpAddr := flag.String("http-addr", "", "override the REST listen address (\"-\" disables it)")
	grpcAddr := flag.String("grpc-addr", "", "override the gRPC listen address (\"-\" disables it)")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("inopd %s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if v := strings.TrimSpace(*httpAddr); v != "" {
		cfg.Server.HTTPAddr = v
	}
	if v := strings.TrimSpace(*grpcAddr); v != "" {
		cfg.Server.GRPCAddr = v
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run validates cfg, opens the configured listeners and serves until ctx is
// cancelled.
func run(ctx context.Context, cfg config.Config, logOut io.Writer) error {
	if err := config.Validate(cfg, nil); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var httpLn, grpcLn net.Listener
	if addr := listenAddr(cfg.Server.HTTPAddr); addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen http %s: %w", addr, err)
		}
		httpLn = ln
	}
	if addr := listenAddr(cfg.Server.GRPCAddr); addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			if httpLn != nil {
				_ = httpLn.Close()
			}
			return fmt.Errorf("listen grpc %s: %w", addr, err)
		}
		grpcLn = ln
	}
	if httpLn == nil && grpcLn == nil {
		return errors.New("no listener configured; set server.http_addr or server.grpc_addr")
	}

	audit, err := newAuditLogger("inopd")
	if err != nil {
		return fmt.Errorf("configure audit logger: %w", err)
	}
	defer audit.Close()

	return serve(ctx, cfg, httpLn, grpcLn, audit, logOut)
}

// listenAddr treats "-" as a disabled listener.
func listenAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "-" {
		return ""
	}
	return addr
}

// serve runs the REST server on httpLn and the gRPC server on grpcLn; either
// may be nil. Both share one metrics registry, audit trail and profile store.
func serve(ctx context.Context, cfg config.Config, httpLn, grpcLn net.Listener, audit *logging.AuditLogger, logOut io.Writer) error {
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger, err := logging.New(logOut, level, cfg.Log.Format)
	if err != nil {
		return err
	}

	shutdownTracing, err := tracing.Setup(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("flush traces", slog.Any("error", err))
		}
	}()

	catalog := wheels.Default()
	reg := metrics.NewRegistry()

	var profiles *cipher.ProfileStore
	if dir := strings.TrimSpace(cfg.ProfilesDir); dir != "" {
		profiles = cipher.NewProfileStore(dir, catalog)
		if err := profiles.Load(); err != nil {
			return fmt.Errorf("load profiles: %w", err)
		}
	}

	emitAudit(audit, logging.AuditEvent{
		EventType: logging.EventConfigLoaded,
		Outcome:   logging.OutcomeInfo,
		Suite:     cfg.Session.Suite,
		Metadata: map[string]any{
			"version":     version,
			"double_pass": cfg.Pipeline.DoublePass,
			"padding":     cfg.Pipeline.Padding,
			"rotors":      len(cfg.Session.Rotors),
			"trace_ratio": cfg.Tracing.SampleRatio,
		},
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := make(chan error, 2)
	running := 0

	if httpLn != nil {
		srv, err := api.NewServer(api.Config{
			Addr:            httpLn.Addr().String(),
			Settings:        cfg.Session,
			Flags:           cfg.Pipeline,
			Catalog:         catalog,
			Profiles:        profiles,
			Metrics:         reg,
			Audit:           audit,
			Logger:          logger.With(slog.String("component", "api")),
			MaxConns:        cfg.Server.MaxConns,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		})
		if err != nil {
			return err
		}
		running++
		go func() { errCh <- srv.Serve(ctx, httpLn) }()
	}

	if grpcLn != nil {
		svc, err := rpc.NewService(rpc.Config{
			Settings: cfg.Session,
			Flags:    cfg.Pipeline,
			Catalog:  catalog,
			Profiles: profiles,
			Metrics:  reg,
			Audit:    audit,
			Logger:   logger.With(slog.String("component", "rpc")),
		})
		if err != nil {
			return err
		}
		if cfg.Server.MaxConns > 0 {
			grpcLn = netutil.LimitListener(grpcLn, cfg.Server.MaxConns)
		}
		logger.Info("rpc listening", slog.String("addr", grpcLn.Addr().String()))
		running++
		go func() { errCh <- rpc.Serve(ctx, rpc.NewServer(svc), grpcLn) }()
	}

	// The first listener to stop takes the other one down with it.
	var errs []error
	for i := 0; i < running; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
		cancel()
	}
	err = errors.Join(errs...)
	emitAudit(audit, logging.AuditEvent{
		EventType: logging.EventServerLifecycle,
		Outcome:   logging.OutcomeInfo,
		Reason:    "inopd stopped",
	})
	return err
}

func newAuditLogger(component string) (*logging.AuditLogger, error) {
	opts := []logging.Option{}
	if disableStdout(os.Getenv("INOP_AUDIT_LOG_STDOUT")) {
		opts = append(opts, logging.WithoutStdout())
	}
	if path := strings.TrimSpace(os.Getenv("INOP_AUDIT_LOG_PATH")); path != "" {
		opts = append(opts, logging.WithFile(path))
	}
	return logging.NewAuditLogger(component, opts...)
}

func disableStdout(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "0" || value == "false" || value == "no"
}

func emitAudit(logger *logging.AuditLogger, event logging.AuditEvent) {
	if logger == nil {
		return
	}
	if err := logger.Emit(event); err != nil {
		fmt.Fprintf(os.Stderr, "audit log error: %v\n", err)
	}
}
