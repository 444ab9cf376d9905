package endpointfetcher

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels recorded on endpointfetcher_calls_total.
const (
	outcomeSuccess        = "success"
	outcomeRequestFailure = "request_failure"
	outcomeTransportError = "transport_error"
)

// MetricsCollector provides Prometheus metrics for the call lifecycle. It
// is safe for concurrent use and may be shared between clients.
type MetricsCollector struct {
	callsTotal      *prometheus.CounterVec
	callDuration    *prometheus.HistogramVec
	callsInFlight   *prometheus.GaugeVec
	requestFailures *prometheus.CounterVec
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		callsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "endpointfetcher_calls_total",
				Help: "Total number of endpoint calls made",
			},
			[]string{"endpoint", "method", "outcome"},
		),
		callDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "endpointfetcher_call_duration_seconds",
				Help:    "Duration of endpoint calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "method"},
		),
		callsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "endpointfetcher_calls_in_flight",
				Help: "Number of endpoint calls currently in flight",
			},
			[]string{"endpoint", "method"},
		),
		requestFailures: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "endpointfetcher_request_failures_total",
				Help: "Total number of non-2xx responses by status code",
			},
			[]string{"endpoint", "status"},
		),
	}
}

// RecordCallStart marks a call as in flight.
func (m *MetricsCollector) RecordCallStart(endpoint, method string) {
	m.callsInFlight.WithLabelValues(endpoint, method).Inc()
}

// RecordCallEnd marks a call as finished.
func (m *MetricsCollector) RecordCallEnd(endpoint, method string) {
	m.callsInFlight.WithLabelValues(endpoint, method).Dec()
}

// RecordCall records the outcome and duration of one finished call.
func (m *MetricsCollector) RecordCall(endpoint, method string, err error, duration time.Duration) {
	outcome := outcomeSuccess
	var re *RequestError
	switch {
	case err == nil:
	case errors.As(err, &re):
		outcome = outcomeRequestFailure
		m.requestFailures.WithLabelValues(endpoint, strconv.Itoa(re.Status)).Inc()
	default:
		outcome = outcomeTransportError
	}
	m.callsTotal.WithLabelValues(endpoint, method, outcome).Inc()
	m.callDuration.WithLabelValues(endpoint, method).Observe(duration.Seconds())
}
