// Package ledger is the redemption engine: it turns validated scans into
// immutable donation and participation rows. Donations are append-only and
// never deduplicated; participation is unique per donor and group, enforced
// at the storage layer rather than by read-then-write.
package ledger

import (
	"time"

	id "scanledger/pkg/domain"
)

// Source marks how a ledger row came to exist. Every row written through the
// scan surface carries SourceScan.
type Source string

const SourceScan Source = "SCAN"

// Donation is one recorded gift. Rows are immutable once written.
type Donation struct {
	ID          id.DonationID
	DonorID     id.DonorID
	GroupID     id.GroupID
	AmountCents int64
	Source      Source
	CreatedAt   time.Time
}

// Participation records that a donor joined a volunteer group. At most one
// row exists per (donor, group) pair.
type Participation struct {
	ID        id.ParticipationID
	DonorID   id.DonorID
	GroupID   id.GroupID
	CreatedAt time.Time
}

// DonationSummary is what the scanner UI shows after a donation: names, not
// ids.
type DonationSummary struct {
	DonationID  id.DonationID
	DonorName   string
	GroupName   string
	AmountCents int64
	RecordedAt  time.Time
}

// ParticipationSummary is the volunteer-group counterpart.
type ParticipationSummary struct {
	ParticipationID id.ParticipationID
	DonorName       string
	GroupName       string
	RecordedAt      time.Time
}
