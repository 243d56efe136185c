package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ChatRequests      *prometheus.CounterVec
	BusyRejections    *prometheus.CounterVec
	UpstreamRetries   *prometheus.CounterVec
	SynthesisAttempts *prometheus.CounterVec
	CacheLookups      *prometheus.CounterVec
	StreamFallbacks   prometheus.Counter
	RequestLatency    *prometheus.HistogramVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ChatRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_requests_total",
			Help:      "Chat requests by outcome.",
		}, []string{"outcome"}),
		BusyRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "busy_rejections_total",
			Help:      "Requests rejected at a concurrency gate, by path.",
		}, []string{"path"}),
		UpstreamRetries: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_retries_total",
			Help:      "Retries against upstream backends, by backend.",
		}, []string{"backend"}),
		SynthesisAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthesis_attempts_total",
			Help:      "Speech synthesis attempts by region and outcome.",
		}, []string{"region", "outcome"}),
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Synthesis cache lookups by result.",
		}, []string{"result"}),
		StreamFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_fallbacks_total",
			Help:      "Streaming chats that fell back to a buffered reply.",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_latency_ms",
			Help:      "End-to-end request latency in milliseconds, by operation.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000},
		}, []string{"operation"}),
	}
}

func (m *Metrics) ObserveLatency(operation string, d time.Duration) {
	m.RequestLatency.WithLabelValues(operation).Observe(float64(d.Milliseconds()))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
