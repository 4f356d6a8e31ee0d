package store

import (
	"context"
	"sort"
	"sync"

	"scanledger/internal/ledger"
	id "scanledger/pkg/domain"
	"scanledger/pkg/platform/sentinel"
)

type pairKey struct {
	donor id.DonorID
	group id.GroupID
}

// InMemory keeps ledger rows in slices guarded by a mutex. Participation
// uniqueness is enforced the same way the postgres store's constraint does.
type InMemory struct {
	mu             sync.RWMutex
	donations      []*ledger.Donation
	participations []*ledger.Participation
	pairs          map[pairKey]bool
}

func NewInMemory() *InMemory {
	return &InMemory{pairs: make(map[pairKey]bool)}
}

func (s *InMemory) AppendDonation(_ context.Context, d *ledger.Donation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.donations = append(s.donations, &cp)
	return nil
}

func (s *InMemory) AppendParticipation(_ context.Context, p *ledger.Participation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{donor: p.DonorID, group: p.GroupID}
	if s.pairs[key] {
		return sentinel.ErrConflict
	}
	cp := *p
	s.participations = append(s.participations, &cp)
	s.pairs[key] = true
	return nil
}

func (s *InMemory) ListDonationsByDonor(_ context.Context, donorID id.DonorID) ([]*ledger.Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ledger.Donation
	for _, d := range s.donations {
		if d.DonorID == donorID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) ListParticipationsByDonor(_ context.Context, donorID id.DonorID) ([]*ledger.Participation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*ledger.Participation
	for _, p := range s.participations {
		if p.DonorID == donorID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) HasDonorRows(_ context.Context, donorID id.DonorID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.donations {
		if d.DonorID == donorID {
			return true, nil
		}
	}
	for _, p := range s.participations {
		if p.DonorID == donorID {
			return true, nil
		}
	}
	return false, nil
}
