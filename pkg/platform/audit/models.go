// Package audit captures the administrative and ledger actions the redemption
// engine performs, so every financial effect can be traced back to a token,
// an operator, and a request.
package audit

import (
	"context"
	"time"

	id "scanledger/pkg/domain"
)

// Action names a recorded event.
type Action string

const (
	ActionTokenIssued           Action = "token_issued"
	ActionTokenDeactivated      Action = "token_deactivated"
	ActionTokenReactivated      Action = "token_reactivated"
	ActionTokenDeleted          Action = "token_deleted"
	ActionDonationRecorded      Action = "donation_recorded"
	ActionParticipationRecorded Action = "participation_recorded"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Action      Action
	TokenValue  string
	DonorID     id.DonorID
	GroupID     id.GroupID
	AmountCents int64
	Operator    string
	RequestID   string
	Timestamp   time.Time
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByDonor(ctx context.Context, donorID id.DonorID) ([]Event, error)
	ListAll(ctx context.Context) ([]Event, error)
}
