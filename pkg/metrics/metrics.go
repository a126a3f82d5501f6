// Package metrics holds the Prometheus collectors describing catalog traffic.
// A nil *Metrics is valid and records nothing, so library users that do not
// care about metrics never have to construct one.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors updated by the catalog wrapper.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	pages    *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Catalog operations by outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "catalog_request_duration_seconds",
			Help:    "Wall time of catalog operations including every page request.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_pages_fetched_total",
			Help: "Pages requested from paginated endpoints.",
		}, []string{"endpoint"}),
	}
	reg.MustRegister(m.requests, m.duration, m.pages)
	return m
}

// Observe records one finished operation that started at start.
func (m *Metrics) Observe(operation, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Page counts a page request against endpoint.
func (m *Metrics) Page(endpoint string) {
	if m == nil {
		return
	}
	m.pages.WithLabelValues(endpoint).Inc()
}
