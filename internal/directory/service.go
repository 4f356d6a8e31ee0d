package directory

import (
	"context"
	"errors"

	id "scanledger/pkg/domain"
	dErrors "scanledger/pkg/domain-errors"
	"scanledger/pkg/platform/sentinel"
	"scanledger/pkg/requestcontext"
)

// Service exposes the donor/group directory to the token issuer and the UI
// collaborators that populate fund and volunteer selectors.
type Service struct {
	donors DonorStore
	groups GroupStore
}

func NewService(donors DonorStore, groups GroupStore) *Service {
	return &Service{donors: donors, groups: groups}
}

// FindOrCreateDonor returns the donor matching the attribute tuple, creating
// one when no match exists. Issuing twice for identical attributes reuses the
// donor.
func (s *Service) FindOrCreateDonor(ctx context.Context, name, className, gradeName, cohort string) (*Donor, error) {
	donor, err := NewDonor(id.NewDonorID(), name, className, gradeName, cohort, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	existing, err := s.donors.FindMatching(ctx, donor.Name, donor.ClassName, donor.GradeName, donor.Cohort)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "donor lookup failed")
	}

	if err := s.donors.Create(ctx, donor); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create donor")
	}
	return donor, nil
}

// GetDonor fetches a donor for display.
func (s *Service) GetDonor(ctx context.Context, donorID id.DonorID) (*Donor, error) {
	donor, err := s.donors.FindByID(ctx, donorID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "donor not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "donor lookup failed")
	}
	return donor, nil
}

// ListDonors returns all donors ordered by name.
func (s *Service) ListDonors(ctx context.Context) ([]*Donor, error) {
	donors, err := s.donors.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list donors")
	}
	return donors, nil
}

// GetGroup fetches a group, translating a miss into GroupNotFound.
func (s *Service) GetGroup(ctx context.Context, groupID id.GroupID) (*Group, error) {
	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "group not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "group lookup failed")
	}
	return group, nil
}

// ListGroups returns all groups ordered by name for selector population.
func (s *Service) ListGroups(ctx context.Context) ([]*Group, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list groups")
	}
	return groups, nil
}

// CreateGroup registers a fund or volunteer group.
func (s *Service) CreateGroup(ctx context.Context, name string, groupType GroupType) (*Group, error) {
	group, err := NewGroup(id.NewGroupID(), name, groupType, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create group")
	}
	return group, nil
}

// DeleteDonor removes a donor record. Callers are responsible for the
// reference checks; the token service performs the guarded cascade.
func (s *Service) DeleteDonor(ctx context.Context, donorID id.DonorID) error {
	if err := s.donors.Delete(ctx, donorID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "donor not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete donor")
	}
	return nil
}
