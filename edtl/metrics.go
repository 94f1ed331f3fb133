package edtl

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors updated by a Verifier.
type Metrics struct {
	// ChecksTotal counts (case, requirement) checks.
	// Labels: result (pass, fail, error)
	ChecksTotal *prometheus.CounterVec

	// ViolationsTotal counts violations.
	// Labels: requirement, phase
	ViolationsTotal *prometheus.CounterVec

	// TriggersTotal counts obligations opened by a trigger.
	TriggersTotal prometheus.Counter

	// DischargesTotal counts obligations cancelled by release or trace end.
	DischargesTotal prometheus.Counter

	// CheckDuration tracks the time spent in a single bounded check.
	CheckDuration prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "edtl",
				Subsystem: "verifier",
				Name:      "checks_total",
				Help:      "Total number of requirement checks by result",
			},
			[]string{"result"},
		),
		ViolationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "edtl",
				Subsystem: "verifier",
				Name:      "violations_total",
				Help:      "Total number of requirement violations",
			},
			[]string{"requirement", "phase"},
		),
		TriggersTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "edtl",
				Subsystem: "verifier",
				Name:      "triggers_total",
				Help:      "Total number of obligations opened by a trigger",
			},
		),
		DischargesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "edtl",
				Subsystem: "verifier",
				Name:      "discharges_total",
				Help:      "Total number of obligations cancelled by release or trace end",
			},
		),
		CheckDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "edtl",
				Subsystem: "verifier",
				Name:      "check_duration_seconds",
				Help:      "Duration of a single bounded check in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
		),
	}
}

func (m *Metrics) observe(r Result, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CheckDuration.Observe(elapsed.Seconds())
	switch {
	case err != nil:
		m.ChecksTotal.WithLabelValues("error").Inc()
		return
	case r.Verdict.Passed:
		m.ChecksTotal.WithLabelValues("pass").Inc()
	default:
		m.ChecksTotal.WithLabelValues("fail").Inc()
		m.ViolationsTotal.WithLabelValues(r.Requirement, string(r.Verdict.Violation.Phase)).Inc()
	}
	m.TriggersTotal.Add(float64(r.Verdict.Triggers))
	m.DischargesTotal.Add(float64(r.Verdict.Discharged))
}
