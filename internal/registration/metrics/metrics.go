package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded for submissions and edits.
const (
	OutcomeStored  = "stored"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Metrics holds Prometheus collectors for registration operations.
type Metrics struct {
	Submissions      *prometheus.CounterVec
	ValidationErrors *prometheus.CounterVec
	Updates          *prometheus.CounterVec
	Deletions        prometheus.Counter
	ExportedRows     prometheus.Counter
	Exports          prometheus.Counter
	StoreLatency     *prometheus.HistogramVec
}

// New registers registration metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventreg_registrations_submitted_total",
			Help: "Registration form submissions, labeled by outcome",
		}, []string{"outcome"}),
		ValidationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventreg_registration_validation_errors_total",
			Help: "Field validation errors, labeled by field",
		}, []string{"field"}),
		Updates: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventreg_registrations_updated_total",
			Help: "Dashboard edits of registrations, labeled by outcome",
		}, []string{"outcome"}),
		Deletions: factory.NewCounter(prometheus.CounterOpts{
			Name: "eventreg_registrations_deleted_total",
			Help: "Registrations deleted from the dashboard",
		}),
		Exports: factory.NewCounter(prometheus.CounterOpts{
			Name: "eventreg_exports_total",
			Help: "CSV exports produced",
		}),
		ExportedRows: factory.NewCounter(prometheus.CounterOpts{
			Name: "eventreg_exported_rows_total",
			Help: "Registration rows written to CSV exports",
		}),
		StoreLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "eventreg_store_operation_latency_seconds",
			Help:    "Latency of registration store operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncSubmission(outcome string) {
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncValidationError(field string) {
	m.ValidationErrors.WithLabelValues(field).Inc()
}

func (m *Metrics) IncUpdate(outcome string) {
	m.Updates.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncDeletion() {
	m.Deletions.Inc()
}

func (m *Metrics) ObserveExport(rows int) {
	m.Exports.Inc()
	m.ExportedRows.Add(float64(rows))
}

func (m *Metrics) ObserveStoreLatency(operation string, seconds float64) {
	m.StoreLatency.WithLabelValues(operation).Observe(seconds)
}
