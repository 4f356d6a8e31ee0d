// Package domain defines the typed identifiers shared across scanledger.
//
// Each entity gets its own uuid-backed type so a DonorID can never be passed
// where a GroupID is expected. Parse functions validate at trust boundaries:
// IDs must be valid, non-empty, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "scanledger/pkg/domain-errors"
)

type (
	// DonorID identifies a person who gives or volunteers.
	DonorID uuid.UUID
	// GroupID identifies a fund or volunteer group.
	GroupID uuid.UUID
	// DonationID identifies an immutable donation ledger row.
	DonationID uuid.UUID
	// ParticipationID identifies an immutable participation ledger row.
	ParticipationID uuid.UUID
	// SessionID identifies an operator scan session.
	SessionID uuid.UUID
)

func (id DonorID) String() string         { return uuid.UUID(id).String() }
func (id GroupID) String() string         { return uuid.UUID(id).String() }
func (id DonationID) String() string      { return uuid.UUID(id).String() }
func (id ParticipationID) String() string { return uuid.UUID(id).String() }
func (id SessionID) String() string       { return uuid.UUID(id).String() }

func (id DonorID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id GroupID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewDonorID mints a random donor id.
func NewDonorID() DonorID { return DonorID(uuid.New()) }

// NewGroupID mints a random group id.
func NewGroupID() GroupID { return GroupID(uuid.New()) }

// NewDonationID mints a random donation id.
func NewDonationID() DonationID { return DonationID(uuid.New()) }

// NewParticipationID mints a random participation id.
func NewParticipationID() ParticipationID { return ParticipationID(uuid.New()) }

// NewSessionID mints a random session id.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// ParseDonorID validates and parses a donor id from its string form.
func ParseDonorID(raw string) (DonorID, error) {
	u, err := parseUUID(raw, "donor id")
	return DonorID(u), err
}

// ParseGroupID validates and parses a group id from its string form.
func ParseGroupID(raw string) (GroupID, error) {
	u, err := parseUUID(raw, "group id")
	return GroupID(u), err
}

// ParseDonationID validates and parses a donation id from its string form.
func ParseDonationID(raw string) (DonationID, error) {
	u, err := parseUUID(raw, "donation id")
	return DonationID(u), err
}

// ParseParticipationID validates and parses a participation id from its string form.
func ParseParticipationID(raw string) (ParticipationID, error) {
	u, err := parseUUID(raw, "participation id")
	return ParticipationID(u), err
}

// ParseSessionID validates and parses a session id from its string form.
func ParseSessionID(raw string) (SessionID, error) {
	u, err := parseUUID(raw, "session id")
	return SessionID(u), err
}

func parseUUID(raw, what string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "malformed "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" must not be the nil UUID")
	}
	return u, nil
}
