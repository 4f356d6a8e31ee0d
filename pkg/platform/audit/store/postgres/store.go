package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "scanledger/pkg/domain"
	audit "scanledger/pkg/platform/audit"
)

// Store persists audit events in PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	query := `
		INSERT INTO audit_events (action, token_value, donor_id, group_id, amount_cents, operator, request_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		string(event.Action),
		nullString(event.TokenValue),
		nullUUID(uuid.UUID(event.DonorID)),
		nullUUID(uuid.UUID(event.GroupID)),
		event.AmountCents,
		event.Operator,
		event.RequestID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByDonor(ctx context.Context, donorID id.DonorID) ([]audit.Event, error) {
	query := `
		SELECT action, token_value, donor_id, group_id, amount_cents, operator, request_id, occurred_at
		FROM audit_events WHERE donor_id = $1 ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(donorID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) ListAll(ctx context.Context) ([]audit.Event, error) {
	query := `
		SELECT action, token_value, donor_id, group_id, amount_cents, operator, request_id, occurred_at
		FROM audit_events ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var action string
		var tokenValue sql.NullString
		var donorID, groupID uuid.NullUUID
		if err := rows.Scan(&action, &tokenValue, &donorID, &groupID, &e.AmountCents, &e.Operator, &e.RequestID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Action = audit.Action(action)
		e.TokenValue = tokenValue.String
		if donorID.Valid {
			e.DonorID = id.DonorID(donorID.UUID)
		}
		if groupID.Valid {
			e.GroupID = id.GroupID(groupID.UUID)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullUUID(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}
