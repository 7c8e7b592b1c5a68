package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/evacchi/droolsjbpm-knowledge/internal/timer"
)

// Metrics records timer lifecycle events as Prometheus series
type Metrics struct {
	scheduled *prometheus.CounterVec
	fired     *prometheus.CounterVec
	failed    *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	active    prometheus.Gauge
}

const kindLabel = "kind"

var _ timer.Recorder = (*Metrics)(nil)

// New creates the timer metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		scheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timer_scheduled_total",
			Help: "Total number of timers submitted to the scheduler",
		}, []string{kindLabel}),
		fired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timer_fired_total",
			Help: "Total number of timer fires that completed",
		}, []string{kindLabel}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timer_failed_total",
			Help: "Total number of timer fires that failed",
		}, []string{kindLabel}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "timer_skipped_total",
			Help: "Total number of timer fires dropped by an inactive deployment",
		}, []string{kindLabel}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "timers_active",
			Help: "Number of timers currently registered",
		}),
	}
	reg.MustRegister(m.scheduled, m.fired, m.failed, m.skipped, m.active)
	return m
}

// TimerScheduled counts a submitted timer
func (m *Metrics) TimerScheduled(kind timer.JobKind) {
	m.scheduled.WithLabelValues(string(kind)).Inc()
}

// TimerFired counts a fire as completed or failed
func (m *Metrics) TimerFired(kind timer.JobKind, err error) {
	if err != nil {
		m.failed.WithLabelValues(string(kind)).Inc()
		return
	}
	m.fired.WithLabelValues(string(kind)).Inc()
}

// TimerSkipped counts a fire that was dropped
func (m *Metrics) TimerSkipped(kind timer.JobKind) {
	m.skipped.WithLabelValues(string(kind)).Inc()
}

// TimersActive sets the number of registered timers
func (m *Metrics) TimersActive(n int) {
	m.active.Set(float64(n))
}
