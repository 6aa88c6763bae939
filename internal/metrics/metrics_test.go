package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncrementSubmitted("DOCUMENT", "ADD_DOCUMENT")
	m.IncrementSubmitted("DOCUMENT", "ADD_DOCUMENT")
	m.IncrementDecided("DOCUMENT", "ADD_DOCUMENT", "APPROVE")
	m.IncrementConflict("DOCUMENT", "REQUEST_ALREADY_DECIDED")
	m.ObserveHTTP("GET", "/healthz", "200", 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsSubmitted.WithLabelValues("DOCUMENT", "ADD_DOCUMENT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsDecided.WithLabelValues("DOCUMENT", "ADD_DOCUMENT", "APPROVE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestConflicts.WithLabelValues("DOCUMENT", "REQUEST_ALREADY_DECIDED")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementSubmitted("a", "b")
		m.IncrementDecided("a", "b", "c")
		m.IncrementConflict("a", "b")
		m.ObserveHTTP("GET", "/", "200", time.Second)
	})
}
