package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the scan module.
type Metrics struct {
	ScansHandled   *prometheus.CounterVec
	ScansDebounced prometheus.Counter
	ScanDuration   prometheus.Histogram
	OpenSessions   prometheus.Gauge
}

// New creates a new Metrics instance with all scan module metrics registered.
func New() *Metrics {
	return &Metrics{
		ScansHandled: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scanledger_scans_handled_total",
			Help: "Scans handled by session mode and outcome",
		}, []string{"mode", "outcome"}), // outcome: "ok", "rejected", "busy"

		ScansDebounced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scanledger_scans_debounced_total",
			Help: "Scans discarded as duplicate reads inside the debounce window",
		}),

		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "scanledger_scan_duration_seconds",
			Help:    "Time from scan receipt to outcome",
			Buckets: prometheus.DefBuckets,
		}),

		OpenSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "scanledger_open_sessions",
			Help: "Scan sessions currently open",
		}),
	}
}

// RecordScan records a handled scan.
func (m *Metrics) RecordScan(mode, outcome string, seconds float64) {
	if m != nil {
		m.ScansHandled.WithLabelValues(mode, outcome).Inc()
		m.ScanDuration.Observe(seconds)
	}
}

// RecordDebounced records a discarded duplicate read.
func (m *Metrics) RecordDebounced() {
	if m != nil {
		m.ScansDebounced.Inc()
	}
}

// SessionOpened adjusts the open-session gauge up.
func (m *Metrics) SessionOpened() {
	if m != nil {
		m.OpenSessions.Inc()
	}
}

// SessionClosed adjusts the open-session gauge down.
func (m *Metrics) SessionClosed() {
	if m != nil {
		m.OpenSessions.Dec()
	}
}
