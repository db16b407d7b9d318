package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the enrollment pipeline. All methods are
// nil-safe so tests can run without a registry.
type Metrics struct {
	// Accepted submissions (post-validation, persisted and queued).
	Submitted prometheus.Counter

	// Terminal outcomes by status: completed, rejected, failed.
	Outcomes *prometheus.CounterVec

	// Redeliveries dropped because the claim found the record already taken.
	ClaimsLost prometheus.Counter

	// Enrollments requeued by the staleness sweep, by prior status.
	SweepRequeued *prometheus.CounterVec

	// Time from claim to terminal write.
	ProcessingDuration prometheus.Histogram
}

// New creates all enrollment pipeline metrics and registers them on the
// default registry.
func New() *Metrics {
	return &Metrics{
		Submitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enrolld_enrollments_submitted_total",
			Help: "Total enrollment requests accepted by the submission gateway",
		}),
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enrolld_enrollments_outcomes_total",
			Help: "Total terminal enrollment outcomes by status",
		}, []string{"status"}),
		ClaimsLost: promauto.NewCounter(prometheus.CounterOpts{
			Name: "enrolld_enrollments_claims_lost_total",
			Help: "Total queue deliveries dropped because another consumer already claimed the enrollment",
		}),
		SweepRequeued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enrolld_enrollments_sweep_requeued_total",
			Help: "Total stale enrollments requeued by the staleness sweep, by prior status",
		}, []string{"status"}),
		ProcessingDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "enrolld_enrollment_processing_duration_seconds",
			Help:    "Duration from claim to terminal write",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncSubmitted() {
	if m != nil {
		m.Submitted.Inc()
	}
}

func (m *Metrics) IncOutcome(status string) {
	if m != nil {
		m.Outcomes.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) IncClaimsLost() {
	if m != nil {
		m.ClaimsLost.Inc()
	}
}

func (m *Metrics) IncSweepRequeued(status string) {
	if m != nil {
		m.SweepRequeued.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) ObserveProcessingDuration(d time.Duration) {
	if m != nil {
		m.ProcessingDuration.Observe(d.Seconds())
	}
}
