package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the ledger module.
type Metrics struct {
	DonationsRecorded      prometheus.Counter
	DonationCents          prometheus.Counter
	ParticipationsRecorded prometheus.Counter
	DuplicateParticipation prometheus.Counter
}

// New creates a new Metrics instance with all ledger module metrics registered.
func New() *Metrics {
	return &Metrics{
		DonationsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scanledger_donations_recorded_total",
			Help: "Total donations written to the ledger",
		}),
		DonationCents: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scanledger_donation_cents_total",
			Help: "Total donated amount in cents",
		}),
		ParticipationsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scanledger_participations_recorded_total",
			Help: "Total volunteer participations recorded",
		}),
		DuplicateParticipation: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scanledger_duplicate_participations_total",
			Help: "Participation attempts rejected as duplicates",
		}),
	}
}

// RecordDonation records a donation write.
func (m *Metrics) RecordDonation(amountCents int64) {
	if m != nil {
		m.DonationsRecorded.Inc()
		m.DonationCents.Add(float64(amountCents))
	}
}

// RecordParticipation records a participation write.
func (m *Metrics) RecordParticipation() {
	if m != nil {
		m.ParticipationsRecorded.Inc()
	}
}

// RecordDuplicateParticipation records a rejected duplicate.
func (m *Metrics) RecordDuplicateParticipation() {
	if m != nil {
		m.DuplicateParticipation.Inc()
	}
}
