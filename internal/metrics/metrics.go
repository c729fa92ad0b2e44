// Package metrics exposes Prometheus collectors for the note server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kuitang/note-it/internal/obs"
)

type Manager struct {
	// counters
	CounterRequests *prometheus.CounterVec

	// gauges
	GaugeRequests prometheus.Gauge
	GaugeNotes    prometheus.GaugeFunc

	// histograms
	HistRequestDuration prometheus.Histogram

	gatherer prometheus.Gatherer
}

func NewTestManagerAndRegistry(notesCount func() int) (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("noteit", "server", reg, notesCount), reg
}

// NewManager registers the server collectors on reg. notesCount is sampled
// on every scrape.
func NewManager(namespace, subsystem string, reg *prometheus.Registry, notesCount func() int) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of handled requests",
		}, []string{"method", "status"}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests in flight",
		}),
		GaugeNotes: factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notes",
			Help:      "Number of notes currently held",
		}, func() float64 { return float64(notesCount()) }),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Request handling duration",
			Buckets:   prometheus.DefBuckets,
		}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RequestMetrics counts requests by method and final status.
func RequestMetrics(m *Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m.GaugeRequests.Inc()
			defer m.GaugeRequests.Dec()
			defer func(begin time.Time) {
				m.HistRequestDuration.Observe(time.Since(begin).Seconds())
			}(time.Now())

			wrapped, recorder := obs.NewResponseRecorder(w)
			next.ServeHTTP(wrapped, r)

			m.CounterRequests.With(prometheus.Labels{
				"method": r.Method,
				"status": strconv.Itoa(recorder.StatusCode()),
			}).Inc()
		})
	}
}
