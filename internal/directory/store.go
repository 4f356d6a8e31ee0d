package directory

import (
	"context"

	id "scanledger/pkg/domain"
)

// DonorStore persists donors. Implementations return sentinel.ErrNotFound for
// missing records.
type DonorStore interface {
	Create(ctx context.Context, donor *Donor) error
	FindByID(ctx context.Context, donorID id.DonorID) (*Donor, error)
	// FindMatching looks up a donor by the attribute tuple used at issuance.
	FindMatching(ctx context.Context, name, className, gradeName, cohort string) (*Donor, error)
	List(ctx context.Context) ([]*Donor, error)
	Delete(ctx context.Context, donorID id.DonorID) error
}

// GroupStore persists funds and volunteer groups.
type GroupStore interface {
	Create(ctx context.Context, group *Group) error
	FindByID(ctx context.Context, groupID id.GroupID) (*Group, error)
	// List returns all groups ordered by name, for selector population.
	List(ctx context.Context) ([]*Group, error)
}
