// Package observability provides Prometheus metrics for monitoring
// glmbridge backend calls.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// BackendRequestsTotal counts requests sent to the inference backend
	// by model and outcome.
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glmbridge_backend_requests_total",
			Help: "Backend requests",
		},
		[]string{"model", "status"},
	)

	// BackendLatency records backend request latency in seconds by model.
	BackendLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "glmbridge_backend_latency_seconds",
			Help:    "Backend latency",
			Buckets: LLMBuckets,
		},
		[]string{"model"},
	)

	// BackendTokensTotal counts tokens reported by the backend by direction
	// (input/output). Values are passed through from the backend's usage
	// field, not computed locally.
	BackendTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glmbridge_backend_tokens_total",
			Help: "Token count",
		},
		[]string{"model", "direction"},
	)

	// StreamsActive tracks the number of in-flight SSE streams.
	StreamsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "glmbridge_streams_active",
			Help: "Active SSE streams",
		},
	)
)

func init() {
	prometheus.MustRegister(
		BackendRequestsTotal,
		BackendLatency,
		BackendTokensTotal,
		StreamsActive,
	)
}
