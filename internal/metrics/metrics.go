package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the request lifecycle and the HTTP
// surface. A nil *Metrics records nothing.
type Metrics struct {
	RequestsSubmitted *prometheus.CounterVec
	RequestsDecided   *prometheus.CounterVec
	RequestConflicts  *prometheus.CounterVec

	// HTTP handler latency by route pattern and status code
	HTTPDuration *prometheus.HistogramVec
}

// New registers every metric with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "egov_requests_submitted_total",
			Help: "Total requests submitted by domain and kind",
		}, []string{"domain", "kind"}),

		RequestsDecided: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "egov_requests_decided_total",
			Help: "Total requests decided by domain, kind and verdict",
		}, []string{"domain", "kind", "verdict"}),

		RequestConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "egov_request_conflicts_total",
			Help: "Total submissions and decisions refused with a conflict",
		}, []string{"domain", "code"}),

		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "egov_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) IncrementSubmitted(domain, kind string) {
	if m != nil {
		m.RequestsSubmitted.WithLabelValues(domain, kind).Inc()
	}
}

func (m *Metrics) IncrementDecided(domain, kind, verdict string) {
	if m != nil {
		m.RequestsDecided.WithLabelValues(domain, kind, verdict).Inc()
	}
}

func (m *Metrics) IncrementConflict(domain, code string) {
	if m != nil {
		m.RequestConflicts.WithLabelValues(domain, code).Inc()
	}
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m != nil {
		m.HTTPDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
	}
}
