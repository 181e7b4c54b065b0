// Package jobmetrics instruments asynq task handlers.
package jobmetrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors shared by every task handler.
type Metrics struct {
	runs        *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
	deliveries  *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers collectors on registerer. A nil registerer shares one
// set registered on the Prometheus default registry.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer != nil {
		return register(registerer)
	}
	defaultOnce.Do(func() {
		defaultMetrics = register(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

func register(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "odyssey",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Task executions by task type and outcome.",
		}, []string{"task", "outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "odyssey",
			Subsystem: "jobs",
			Name:      "failures_total",
			Help:      "Task executions that returned an error.",
		}, []string{"task"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "odyssey",
			Subsystem: "jobs",
			Name:      "duration_seconds",
			Help:      "Task execution time.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"task"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "odyssey",
			Subsystem: "jobs",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run per task type.",
		}, []string{"task"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "odyssey",
			Subsystem: "mail",
			Name:      "deliveries_total",
			Help:      "Recipients handed to SMTP by delivery status.",
		}, []string{"status"}),
	}
	registerer.MustRegister(m.runs, m.failures, m.duration, m.lastSuccess, m.deliveries)
	return m
}

// Run measures one task execution.
type Run struct {
	metrics *Metrics
	task    string
	started time.Time
}

// Track starts measuring a run of task. Safe on a nil receiver.
func (m *Metrics) Track(task string) *Run {
	return &Run{metrics: m, task: task, started: time.Now()}
}

// End records the outcome of the run and hands err back to the caller.
func (r *Run) End(err error) error {
	if r == nil || r.metrics == nil || r.task == "" {
		return err
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
		r.metrics.failures.WithLabelValues(r.task).Inc()
	} else {
		r.metrics.lastSuccess.WithLabelValues(r.task).SetToCurrentTime()
	}
	r.metrics.runs.WithLabelValues(r.task, outcome).Inc()
	r.metrics.duration.WithLabelValues(r.task).Observe(time.Since(r.started).Seconds())
	return err
}

// AddDeliveries counts recipients by delivery status (sent or failed).
func (m *Metrics) AddDeliveries(status string, recipients int) {
	if m == nil || recipients <= 0 {
		return
	}
	m.deliveries.WithLabelValues(status).Add(float64(recipients))
}
