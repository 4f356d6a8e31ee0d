package store

import (
	"context"
	"sort"
	"sync"

	"scanledger/internal/directory"
	id "scanledger/pkg/domain"
	"scanledger/pkg/platform/sentinel"
)

// In-memory stores keep unit tests and single-station deployments lightweight.
// They intentionally favor clarity over performance.

type InMemoryDonorStore struct {
	mu     sync.RWMutex
	donors map[id.DonorID]directory.Donor
}

func NewInMemoryDonorStore() *InMemoryDonorStore {
	return &InMemoryDonorStore{donors: make(map[id.DonorID]directory.Donor)}
}

func (s *InMemoryDonorStore) Create(_ context.Context, donor *directory.Donor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.donors[donor.ID] = *donor
	return nil
}

func (s *InMemoryDonorStore) FindByID(_ context.Context, donorID id.DonorID) (*directory.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.donors[donorID]; ok {
		copy := d
		return &copy, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryDonorStore) FindMatching(_ context.Context, name, className, gradeName, cohort string) (*directory.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.donors {
		if d.Name == name && d.ClassName == className && d.GradeName == gradeName && d.Cohort == cohort {
			copy := d
			return &copy, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryDonorStore) List(_ context.Context) ([]*directory.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*directory.Donor, 0, len(s.donors))
	for _, d := range s.donors {
		copy := d
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *InMemoryDonorStore) Delete(_ context.Context, donorID id.DonorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.donors[donorID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.donors, donorID)
	return nil
}

type InMemoryGroupStore struct {
	mu     sync.RWMutex
	groups map[id.GroupID]directory.Group
}

func NewInMemoryGroupStore() *InMemoryGroupStore {
	return &InMemoryGroupStore{groups: make(map[id.GroupID]directory.Group)}
}

func (s *InMemoryGroupStore) Create(_ context.Context, group *directory.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups[group.ID] = *group
	return nil
}

func (s *InMemoryGroupStore) FindByID(_ context.Context, groupID id.GroupID) (*directory.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if g, ok := s.groups[groupID]; ok {
		copy := g
		return &copy, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryGroupStore) List(_ context.Context) ([]*directory.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*directory.Group, 0, len(s.groups))
	for _, g := range s.groups {
		copy := g
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
