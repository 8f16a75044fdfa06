// Package metrics exposes inop counters and latencies in the Prometheus
// text format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inop"

// Registry owns the inop collectors. The zero value is not usable; call
// NewRegistry. A nil *Registry discards every observation.
type Registry struct {
	registry *prometheus.Registry

	symbols      *prometheus.CounterVec
	operations   *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec
	rpcRequests  *prometheus.CounterVec
}

// NewRegistry creates a registry with the pipeline, HTTP and RPC collectors
// plus the Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		symbols: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "symbols_enciphered_total",
			Help:      "Symbols passed through a machine, counting each pass.",
		}, []string{"suite"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "operations_total",
			Help:      "Pipeline encrypt and decrypt calls by outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Latency of pipeline encrypt and decrypt calls.",
			Buckets:   []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "REST requests by route and status code.",
		}, []string{"route", "code"}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "gRPC requests by method and status code.",
		}, []string{"method", "code"}),
	}

	r.registry.MustRegister(
		r.symbols,
		r.operations,
		r.duration,
		r.httpRequests,
		r.rpcRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Prometheus returns the underlying registry.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveSymbols counts symbols enciphered under suite.
func (r *Registry) ObserveSymbols(suite string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.symbols.WithLabelValues(suite).Add(float64(n))
}

// ObserveOperation records the outcome and latency of a pipeline call.
func (r *Registry) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(operation, outcome).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordHTTPRequest counts a REST request.
func (r *Registry) RecordHTTPRequest(route, code string) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(route, code).Inc()
}

// RecordRPC counts a gRPC request.
func (r *Registry) RecordRPC(method, code string) {
	if r == nil {
		return
	}
	r.rpcRequests.WithLabelValues(method, code).Inc()
}
