// Package metrics exposes check-in counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BrandonDHaskell/checkpoint/server/internal/checkin/types"
)

// Collector implements service.Observer and records HTTP statuses.
type Collector struct {
	checkins   *prometheus.CounterVec
	failures   *prometheus.CounterVec
	suppressed *prometheus.CounterVec
	latency    prometheus.Histogram
	httpStatus *prometheus.CounterVec
}

// NewCollector registers the check-in metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		checkins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkpoint_checkins_total",
			Help: "Attendance events recorded, by kind.",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkpoint_checkin_failures_total",
			Help: "Check-ins that ended in an error, by reason.",
		}, []string{"reason"}),
		suppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkpoint_scans_suppressed_total",
			Help: "Tokens dropped by the debouncer, by input source.",
		}, []string{"source"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "checkpoint_transition_seconds",
			Help:    "Time from accepted token to recorded event.",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checkpoint_http_status_total",
			Help: "HTTP responses by status code.",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.checkins,
		c.failures,
		c.suppressed,
		c.latency,
		c.httpStatus,
	)

	return c
}

func (c *Collector) CheckInRecorded(kind types.EventKind, elapsed time.Duration) {
	c.checkins.WithLabelValues(kind.String()).Inc()
	c.latency.Observe(elapsed.Seconds())
}

func (c *Collector) CheckInFailed(reason string) {
	c.failures.WithLabelValues(reason).Inc()
}

func (c *Collector) ScanSuppressed(source string) {
	c.suppressed.WithLabelValues(source).Inc()
}

func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler serves the gatherer in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
