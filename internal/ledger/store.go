package ledger

import (
	"context"

	id "scanledger/pkg/domain"
)

// Store persists ledger rows.
//
// AppendParticipation must rely on the storage layer's uniqueness guarantee
// and return sentinel.ErrConflict for a duplicate (donor, group) pair; the
// service never pre-checks with a read.
type Store interface {
	AppendDonation(ctx context.Context, d *Donation) error
	AppendParticipation(ctx context.Context, p *Participation) error

	ListDonationsByDonor(ctx context.Context, donorID id.DonorID) ([]*Donation, error)
	ListParticipationsByDonor(ctx context.Context, donorID id.DonorID) ([]*Participation, error)

	// HasDonorRows reports whether any donation or participation references
	// the donor. The token delete cascade consults it.
	HasDonorRows(ctx context.Context, donorID id.DonorID) (bool, error)
}
