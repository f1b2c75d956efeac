package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	portalRequestsTotal  *prometheus.CounterVec
	portalLatencySeconds *prometheus.HistogramVec
	portalErrorsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for API observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		portalRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_requests_total",
			Help: "Total number of portal API requests served.",
		}, []string{"method", "route", "status"})

		portalLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_latency_seconds",
			Help:    "Latency distribution for portal API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		portalErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_errors_total",
			Help: "Total number of error responses returned by portal endpoints.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(portalRequestsTotal, portalLatencySeconds, portalErrorsTotal)
	})
}

// Requests exposes the counter for portal requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return portalRequestsTotal
}

// Latency exposes the latency histogram for portal requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return portalLatencySeconds
}

// Errors exposes the counter for portal error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return portalErrorsTotal
}
