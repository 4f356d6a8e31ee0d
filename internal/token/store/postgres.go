package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"scanledger/internal/token"
	id "scanledger/pkg/domain"
	"scanledger/pkg/platform/sentinel"
)

// Postgres persists tokens in the qr_tokens table. The unique index on value
// backs the never-reused guarantee; a duplicate insert surfaces as
// sentinel.ErrConflict so the issuer can re-mint.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, t *token.Token) error {
	var donorID uuid.NullUUID
	var groupID uuid.NullUUID
	var amountCents sql.NullInt64
	var label sql.NullString

	if identity, ok := t.Identity(); ok {
		donorID = uuid.NullUUID{UUID: uuid.UUID(identity.DonorID), Valid: true}
	}
	if preset, ok := t.Preset(); ok {
		groupID = uuid.NullUUID{UUID: uuid.UUID(preset.GroupID), Valid: true}
		amountCents = sql.NullInt64{Int64: preset.AmountCents, Valid: true}
		label = sql.NullString{String: preset.Label, Valid: preset.Label != ""}
	}

	query := `
		INSERT INTO qr_tokens (value, kind, is_active, image_ref, donor_id, group_id, amount_cents, label, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.Value, string(t.Kind), t.IsActive, t.ImageRef, donorID, groupID, amountCents, label, t.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create token: %w", err)
	}
	return nil
}

func (s *Postgres) FindByValue(ctx context.Context, value string) (*token.Token, error) {
	query := `
		SELECT value, kind, is_active, image_ref, donor_id, group_id, amount_cents, label, created_at
		FROM qr_tokens WHERE value = $1
	`
	t, err := scanToken(s.db.QueryRowContext(ctx, query, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *Postgres) SetActive(ctx context.Context, value string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE qr_tokens SET is_active = $2 WHERE value = $1`, value, active)
	if err != nil {
		return fmt.Errorf("set token active: %w", err)
	}
	return requireAffected(res)
}

func (s *Postgres) Delete(ctx context.Context, value string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM qr_tokens WHERE value = $1`, value)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return requireAffected(res)
}

func (s *Postgres) CountByDonor(ctx context.Context, donorID id.DonorID) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM qr_tokens WHERE donor_id = $1`, uuid.UUID(donorID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tokens by donor: %w", err)
	}
	return count, nil
}

func (s *Postgres) List(ctx context.Context) ([]*token.Token, error) {
	query := `
		SELECT value, kind, is_active, image_ref, donor_id, group_id, amount_cents, label, created_at
		FROM qr_tokens ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*token.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanToken(row rowScanner) (*token.Token, error) {
	var (
		value, kind string
		isActive    bool
		imageRef    sql.NullString
		donorID     uuid.NullUUID
		groupID     uuid.NullUUID
		amountCents sql.NullInt64
		label       sql.NullString
		createdAt   sql.NullTime
	)
	if err := row.Scan(&value, &kind, &isActive, &imageRef, &donorID, &groupID, &amountCents, &label, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan token: %w", err)
	}

	var identity *token.IdentityBinding
	var preset *token.PresetBinding
	if donorID.Valid {
		identity = &token.IdentityBinding{DonorID: id.DonorID(donorID.UUID)}
	}
	if groupID.Valid {
		preset = &token.PresetBinding{
			GroupID:     id.GroupID(groupID.UUID),
			AmountCents: amountCents.Int64,
			Label:       label.String,
		}
	}
	return token.Rehydrate(value, token.Kind(kind), isActive, imageRef.String, createdAt.Time, identity, preset)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
