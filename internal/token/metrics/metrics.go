package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the token module.
type Metrics struct {
	TokensIssued       *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	TokensDeleted      prometheus.Counter
}

// New creates a new Metrics instance with all token module metrics registered.
func New() *Metrics {
	return &Metrics{
		TokensIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scanledger_tokens_issued_total",
			Help: "Total tokens issued by kind",
		}, []string{"kind"}),

		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scanledger_token_validation_failures_total",
			Help: "Total scan validation failures by reason",
		}, []string{"reason"}), // reason: "not_found", "inactive", "kind_mismatch", "dangling_ref"

		TokensDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scanledger_tokens_deleted_total",
			Help: "Total tokens permanently deleted",
		}),
	}
}

// IncrementIssued records an issued token.
func (m *Metrics) IncrementIssued(kind string) {
	if m != nil {
		m.TokensIssued.WithLabelValues(kind).Inc()
	}
}

// IncrementValidationFailure records a failed scan validation.
func (m *Metrics) IncrementValidationFailure(reason string) {
	if m != nil {
		m.ValidationFailures.WithLabelValues(reason).Inc()
	}
}

// IncrementDeleted records a deleted token.
func (m *Metrics) IncrementDeleted() {
	if m != nil {
		m.TokensDeleted.Inc()
	}
}
