package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("unexpected status %d", rr.Code)
	}
	return rr.Body.String()
}

func TestHandlerExportsMetrics(t *testing.T) {
	r := NewRegistry()
	r.ObserveSymbols("INOP-38", 40)
	r.ObserveSymbols("INOP-38", 2)
	r.ObserveSymbols("Legacy", 0)
	r.ObserveOperation("encrypt", "ok", 3*time.Millisecond)
	r.ObserveOperation("decrypt", "marker_not_found", time.Millisecond)
	r.RecordHTTPRequest("encrypt", "200")
	r.RecordRPC("/inop.v1.Cipher/Decrypt", "InvalidArgument")

	body := scrape(t, r)
	required := []string{
		`inop_symbols_enciphered_total{suite="INOP-38"} 42`,
		`inop_pipeline_operations_total{operation="encrypt",outcome="ok"} 1`,
		`inop_pipeline_operations_total{operation="decrypt",outcome="marker_not_found"} 1`,
		`inop_pipeline_duration_seconds_count{operation="encrypt"} 1`,
		`inop_http_requests_total{code="200",route="encrypt"} 1`,
		`inop_rpc_requests_total{code="InvalidArgument",method="/inop.v1.Cipher/Decrypt"} 1`,
		"go_goroutines",
	}
	for _, metric := range required {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected metric %q to be exported, got %q", metric, body)
		}
	}
	if strings.Contains(body, `suite="Legacy"`) {
		t.Fatalf("zero observations should not create a series")
	}
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	a.ObserveSymbols("INOP-60", 5)

	if strings.Contains(scrape(t, b), `suite="INOP-60"`) {
		t.Fatalf("observation leaked between registries")
	}
}

func TestNilRegistryDiscards(t *testing.T) {
	var r *Registry
	r.ObserveSymbols("Legacy", 1)
	r.ObserveOperation("encrypt", "ok", time.Second)
	r.RecordHTTPRequest("encrypt", "200")
	r.RecordRPC("m", "OK")
}
