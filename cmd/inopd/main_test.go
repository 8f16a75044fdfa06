package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/inop/internal/api"
	"github.com/RowanDark/inop/internal/config"
	"github.com/RowanDark/inop/internal/logging"
	"github.com/RowanDark/inop/internal/rpc"
)

func TestServeBootsAndShutsDown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	grpcLn, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	auditBuf := &bytes.Buffer{}
	audit, err := logging.NewAuditLogger("inopd_test", logging.WithoutStdout(), logging.WithWriter(auditBuf))
	if err != nil {
		t.Fatalf("NewAuditLogger: %v", err)
	}

	cfg := config.Default()
	cfg.Pipeline.Padding = false
	cfg.Pipeline.DoublePass = false

	errCh := make(chan error, 1)
	go func() {
		errCh <- serve(ctx, cfg, httpLn, grpcLn, audit, io.Discard)
	}()

	base := "http://" + httpLn.Addr().String()
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("REST server did not come up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	resp, err := http.Post(base+"/api/v1/inop/encrypt", "application/json", strings.NewReader(`{"message":"AAAAA"}`))
	if err != nil {
		t.Fatalf("encrypt request: %v", err)
	}
	var enc api.EncryptResponse
	if err := json.NewDecoder(resp.Body).Decode(&enc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if enc.Ciphertext != "BDZGO" {
		t.Fatalf("expected BDZGO over REST, got %q", enc.Ciphertext)
	}

	conn, err := grpc.NewClient(grpcLn.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("failed to create gRPC client: %v", err)
	}
	callCtx, callCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer callCancel()
	in, _ := structpb.NewStruct(map[string]any{"ciphertext": "BDZGO"})
	out, err := rpc.NewClient(conn).Decrypt(callCtx, in)
	if err != nil {
		t.Fatalf("rpc decrypt: %v", err)
	}
	if got := out.GetFields()["plaintext"].GetStringValue(); got != "AAAAA" {
		t.Fatalf("expected AAAAA over gRPC, got %q", got)
	}

	resp, err = http.Get(base + "/metrics")
	if err != nil {
		t.Fatalf("metrics request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), `inop_symbols_enciphered_total{suite="Legacy"} 10`) {
		t.Fatalf("expected REST and gRPC to share one registry, got %s", body)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("failed to close client connection: %v", err)
	}
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down after context cancellation")
	}

	trail := auditBuf.String()
	for _, want := range []string{`"event_type":"config_loaded"`, `"event_type":"encrypt"`, `"event_type":"decrypt"`, `"reason":"inopd stopped"`} {
		if !strings.Contains(trail, want) {
			t.Fatalf("expected %s in audit trail, got %s", want, trail)
		}
	}
}

func TestRunRejectsMissingListeners(t *testing.T) {
	cfg := config.Default()
	cfg.Server.HTTPAddr = "-"
	cfg.Server.GRPCAddr = "-"
	if err := run(context.Background(), cfg, io.Discard); err == nil || !strings.Contains(err.Error(), "no listener") {
		t.Fatalf("expected missing listener error, got %v", err)
	}

	cfg = config.Default()
	cfg.Session.MasterKey = "AA"
	if err := run(context.Background(), cfg, io.Discard); err == nil {
		t.Fatalf("expected invalid configuration error")
	}
}

func TestDisableStdout(t *testing.T) {
	for _, v := range []string{"0", "false", " NO "} {
		if !disableStdout(v) {
			t.Fatalf("expected %q to disable stdout", v)
		}
	}
	if disableStdout("yes") {
		t.Fatalf("yes should keep stdout")
	}
}
