package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Dispatch paths used as the "path" label.
const (
	PathTick     = "tick"
	PathBackfill = "backfill"
	PathResume   = "resume"
)

// Metrics exports scheduler activity to Prometheus. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registered     prometheus.Gauge
	armed          prometheus.Gauge
	fired          *prometheus.CounterVec
	failures       *prometheus.CounterVec
	skips          prometheus.Counter
	skippedMinutes prometheus.Histogram
}

// NewMetrics creates the scheduler collectors and registers them on reg
// (prometheus.DefaultRegisterer when nil).
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		registered: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scheduler_actions_registered",
				Help:      "Number of registered scheduled actions",
			},
		),
		armed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "scheduler_armed",
				Help:      "1 when tick dispatch is active, 0 while waiting for the clock",
			},
		),
		fired: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scheduler_actions_fired_total",
				Help:      "Scheduled action invocations by dispatch path",
			},
			[]string{"path"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scheduler_action_failures_total",
				Help:      "Scheduled action invocations that returned an error or panicked",
			},
			[]string{"path"},
		),
		skips: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scheduler_time_skips_total",
				Help:      "Number of detected clock jumps",
			},
		),
		skippedMinutes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scheduler_time_skip_minutes",
				Help:      "Size of detected clock jumps in game minutes",
				Buckets:   []float64{5, 15, 30, 60, 180, 360, 720, 1440, 4320, 10080},
			},
		),
	}

	reg.MustRegister(
		m.registered,
		m.armed,
		m.fired,
		m.failures,
		m.skips,
		m.skippedMinutes,
	)

	return m
}

func (m *Metrics) setRegistered(n int) {
	if m == nil {
		return
	}
	m.registered.Set(float64(n))
}

func (m *Metrics) setArmed(armed bool) {
	if m == nil {
		return
	}
	if armed {
		m.armed.Set(1)
	} else {
		m.armed.Set(0)
	}
}

func (m *Metrics) recordFired(path string) {
	if m == nil {
		return
	}
	m.fired.WithLabelValues(path).Inc()
}

func (m *Metrics) recordFailure(path string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(path).Inc()
}

func (m *Metrics) recordSkip(minutes int) {
	if m == nil {
		return
	}
	m.skips.Inc()
	m.skippedMinutes.Observe(float64(minutes))
}
