package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RowanDark/inop/internal/cipher"
	"github.com/RowanDark/inop/internal/logging"
	"github.com/RowanDark/inop/internal/observability/metrics"
)

func legacySettings() cipher.Settings {
	return cipher.Settings{
		Suite:     "Legacy",
		Rotors:    []string{"I", "II", "III"},
		Reflector: "B",
		RingSet:   []int{1, 1, 1},
		MasterKey: "AAAA",
	}
}

func singlePass() cipher.Flags {
	f := cipher.DefaultFlags()
	f.DoublePass = false
	f.Padding = false
	f.Block = 5
	return f
}

type testServer struct {
	*Server
	audit   *bytes.Buffer
	metrics *metrics.Registry
}

func setupTestServer(t *testing.T, mutate func(*Config)) testServer {
	t.Helper()

	buf := &bytes.Buffer{}
	audit, err := logging.NewAuditLogger("test", logging.WithoutStdout(), logging.WithWriter(buf))
	require.NoError(t, err)
	reg := metrics.NewRegistry()

	cfg := Config{
		Addr:     "127.0.0.1:0",
		Settings: legacySettings(),
		Flags:    cipher.DefaultFlags(),
		Profiles: cipher.NewProfileStore("", nil),
		Metrics:  reg,
		Audit:    audit,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	return testServer{Server: srv, audit: buf, metrics: reg}
}

func do(t *testing.T, h http.Handler, method, target, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestServerConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing address", mutate: func(c *Config) { c.Addr = " " }, wantErr: "address"},
		{name: "unknown rotor", mutate: func(c *Config) { c.Settings.Rotors = []string{"I", "II", "IX"} }, wantErr: "IX"},
		{name: "bad flags", mutate: func(c *Config) { c.Flags.Block = 0 }, wantErr: "block"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Addr: ":0", Settings: legacySettings(), Flags: cipher.DefaultFlags()}
			tt.mutate(&cfg)
			_, err := NewServer(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHealthz(t *testing.T) {
	srv := setupTestServer(t, nil)
	rr := do(t, srv.Handler(), http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestRequestIDEchoedOrGenerated(t *testing.T) {
	srv := setupTestServer(t, nil)
	h := srv.Handler()

	id := uuid.NewString()
	rr := do(t, h, http.MethodGet, "/api/v1/inop/wheels", "", http.Header{requestIDHeader: {id}})
	assert.Equal(t, id, rr.Header().Get(requestIDHeader))

	rr = do(t, h, http.MethodGet, "/api/v1/inop/wheels", "", http.Header{requestIDHeader: {"not a uuid"}})
	got := rr.Header().Get(requestIDHeader)
	assert.NotEqual(t, "not a uuid", got)
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
}

func TestMetricsEndpointCountsRequests(t *testing.T) {
	srv := setupTestServer(t, func(c *Config) { c.Flags = singlePass() })
	h := srv.Handler()

	do(t, h, http.MethodPost, "/api/v1/inop/encrypt", `{"message":"AAAAA"}`, nil)
	do(t, h, http.MethodPost, "/api/v1/inop/encrypt", `{`, nil)

	rr := do(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `inop_http_requests_total{code="200",route="encrypt"} 1`)
	assert.Contains(t, body, `inop_http_requests_total{code="400",route="encrypt"} 1`)
	assert.Contains(t, body, `inop_symbols_enciphered_total{suite="Legacy"} 5`)
	assert.Contains(t, body, `inop_pipeline_operations_total{operation="encrypt",outcome="ok"} 1`)
}

func TestMetricsRouteAbsentWithoutRegistry(t *testing.T) {
	srv := setupTestServer(t, func(c *Config) { c.Metrics = nil })
	rr := do(t, srv.Handler(), http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServeAndShutdown(t *testing.T) {
	srv := setupTestServer(t, func(c *Config) { c.MaxConns = 2 })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ctx, ln)
	}()

	url := "http://" + ln.Addr().String()
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = http.Get(url + "/healthz")
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(url+"/api/v1/inop/encrypt", "application/json", strings.NewReader(`{"message":"attack at dawn"}`))
	require.NoError(t, err)
	var enc EncryptResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&enc))
	resp.Body.Close()
	assert.NotEmpty(t, enc.Ciphertext)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down in time")
	}

	assert.Contains(t, srv.audit.String(), `"event_type":"server_lifecycle"`)
}

func TestWriteJSONResponse(t *testing.T) {
	srv := setupTestServer(t, nil)
	rr := httptest.NewRecorder()
	srv.writeJSON(rr, http.StatusCreated, map[string]string{"suite": "INOP-38"})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"suite":"INOP-38"}`, rr.Body.String())
}
