package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxysmith_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "proxysmith_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		},
		[]string{"method", "path"},
	)

	// Liveness metrics
	ProbeBatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxysmith_probe_batches_total",
			Help: "Total number of liveness batches by outcome",
		},
		[]string{"outcome"},
	)
	ProbeBatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "proxysmith_probe_batch_duration_seconds",
			Help:    "Wall-clock duration of liveness batches",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)
	ProbeSlotsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxysmith_probe_inflight_slots",
			Help: "Liveness worker slots currently busy",
		},
	)
	EndpointsByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "proxysmith_endpoints",
			Help: "Tracked endpoints per liveness state",
		},
		[]string{"state"},
	)
	ValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxysmith_validations_total",
			Help: "Bulk validation verdicts",
		},
		[]string{"result"},
	)

	// Emitter metrics
	RenderTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxysmith_render_total",
			Help: "Rendered documents per target",
		},
		[]string{"target"},
	)
	DecodeFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "proxysmith_decode_failures_total",
			Help: "Links discarded during batch decoding",
		},
	)
)

var registerOnce sync.Once

// InitMetrics registers every collector with the default registry.
// Safe to call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)

		prometheus.MustRegister(ProbeBatchesTotal)
		prometheus.MustRegister(ProbeBatchDuration)
		prometheus.MustRegister(ProbeSlotsInFlight)
		prometheus.MustRegister(EndpointsByState)
		prometheus.MustRegister(ValidationsTotal)

		prometheus.MustRegister(RenderTotal)
		prometheus.MustRegister(DecodeFailuresTotal)

		prometheus.MustRegister(collectors.NewBuildInfoCollector())
	})
}
