// Package metrics provides the Prometheus metrics for the dashboard and its API client.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ccadash"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests          *prometheus.CounterVec
	apiRequestDuration   *prometheus.HistogramVec
	apiInFlight          prometheus.Gauge
	sessionInvalidations prometheus.Counter
	dashboardFallbacks   *prometheus.CounterVec
}

// New registers the collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api_client",
			Name:      "requests_total",
			Help:      "Requests sent to the CCA backend API, by status code and method.",
		}, []string{"code", "method"}),
		apiRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api_client",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests sent to the CCA backend API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		apiInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api_client",
			Name:      "in_flight_requests",
			Help:      "Requests to the CCA backend API currently waiting for a response.",
		}),
		sessionInvalidations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_invalidations_total",
			Help:      "Sessions cleared after the backend rejected the token.",
		}),
		dashboardFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_fallbacks_total",
			Help:      "Dashboard sections rendered with default values after an upstream failure.",
		}, []string{"section"}),
	}
}

// InstrumentRoundTripper wraps next so that every backend request is counted and timed
func (m *Metrics) InstrumentRoundTripper(next http.RoundTripper) http.RoundTripper {
	if m == nil {
		return next
	}
	return promhttp.InstrumentRoundTripperInFlight(m.apiInFlight,
		promhttp.InstrumentRoundTripperCounter(m.apiRequests,
			promhttp.InstrumentRoundTripperDuration(m.apiRequestDuration, next),
		),
	)
}

func (m *Metrics) SessionInvalidated() {
	if m == nil {
		return
	}
	m.sessionInvalidations.Inc()
}

func (m *Metrics) DashboardFallback(section string) {
	if m == nil {
		return
	}
	m.dashboardFallbacks.WithLabelValues(section).Inc()
}

// Handler exposes the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
