package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	messagesSent     *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	latency          *prometheus.HistogramVec
	providerAttempts *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	rateDenials      *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		messagesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_messages_sent_total",
				Help: "Total number of messages sent to backend",
			},
			[]string{"backend", "symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketpulse_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		providerAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_provider_attempts_total",
				Help: "Upstream provider fetch attempts by outcome",
			},
			[]string{"provider", "resource", "outcome"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_cache_lookups_total",
				Help: "TTL cache lookups by outcome (fresh or miss)",
			},
			[]string{"operation", "outcome"},
		),
		rateDenials: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketpulse_rate_denials_total",
				Help: "Requests denied by the rate limiter",
			},
			[]string{"bucket"},
		),
	}
}

// RecordMessageSent records a message sent to a backend.
func (r *Recorder) RecordMessageSent(backend, symbol string) {
	r.messagesSent.WithLabelValues(backend, symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordProviderAttempt records one upstream fetch attempt and its outcome.
func (r *Recorder) RecordProviderAttempt(provider, resource, outcome string) {
	r.providerAttempts.WithLabelValues(provider, resource, outcome).Inc()
}

// RecordCacheLookup records a TTL cache lookup outcome.
func (r *Recorder) RecordCacheLookup(operation, outcome string) {
	r.cacheLookups.WithLabelValues(operation, outcome).Inc()
}

// RecordRateDenial records a rate limiter denial for a bucket.
func (r *Recorder) RecordRateDenial(bucket string) {
	r.rateDenials.WithLabelValues(bucket).Inc()
}
