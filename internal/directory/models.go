// Package directory holds the Donor and Group records that tokens and ledger
// rows reference. Donors are people who give or volunteer; groups are either
// funds (accept donations) or volunteer groups (accept participation).
package directory

import (
	"strings"
	"time"

	id "scanledger/pkg/domain"
	dErrors "scanledger/pkg/domain-errors"
)

// GroupType distinguishes funds from volunteer groups.
type GroupType string

const (
	GroupTypeFund      GroupType = "FUND"
	GroupTypeVolunteer GroupType = "VOLUNTEER"
)

// Donor is a person bound to IDENTITY tokens and ledger rows.
type Donor struct {
	ID        id.DonorID
	Name      string
	ClassName string
	GradeName string
	Cohort    string
	CreatedAt time.Time
}

// NewDonor validates and constructs a donor. Cohort is optional.
func NewDonor(donorID id.DonorID, name, className, gradeName, cohort string, now time.Time) (*Donor, error) {
	name = strings.TrimSpace(name)
	className = strings.TrimSpace(className)
	gradeName = strings.TrimSpace(gradeName)
	cohort = strings.TrimSpace(cohort)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "donor name is required")
	}
	if className == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "donor class is required")
	}
	if gradeName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "donor grade is required")
	}
	return &Donor{
		ID:        donorID,
		Name:      name,
		ClassName: className,
		GradeName: gradeName,
		Cohort:    cohort,
		CreatedAt: now,
	}, nil
}

// Group is a fund or a volunteer group.
type Group struct {
	ID        id.GroupID
	Name      string
	Type      GroupType
	CreatedAt time.Time
}

// NewGroup validates and constructs a group.
func NewGroup(groupID id.GroupID, name string, groupType GroupType, now time.Time) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "group name is required")
	}
	if groupType != GroupTypeFund && groupType != GroupTypeVolunteer {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "group type must be FUND or VOLUNTEER")
	}
	return &Group{ID: groupID, Name: name, Type: groupType, CreatedAt: now}, nil
}
