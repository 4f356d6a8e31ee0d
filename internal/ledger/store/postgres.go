package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"scanledger/internal/ledger"
	id "scanledger/pkg/domain"
	"scanledger/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// Postgres persists ledger rows in the donations and participations tables
// over a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) AppendDonation(ctx context.Context, d *ledger.Donation) error {
	const query = `
		INSERT INTO donations (id, donor_id, group_id, amount_cents, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.pool.Exec(ctx, query,
		d.ID.String(), d.DonorID.String(), d.GroupID.String(),
		d.AmountCents, string(d.Source), d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert donation: %w", err)
	}
	return nil
}

func (s *Postgres) AppendParticipation(ctx context.Context, p *ledger.Participation) error {
	const query = `
		INSERT INTO participations (id, donor_id, group_id, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := s.pool.Exec(ctx, query,
		p.ID.String(), p.DonorID.String(), p.GroupID.String(), p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert participation: %w", err)
	}
	return nil
}

func (s *Postgres) ListDonationsByDonor(ctx context.Context, donorID id.DonorID) ([]*ledger.Donation, error) {
	const query = `
		SELECT id, donor_id, group_id, amount_cents, source, created_at
		FROM donations WHERE donor_id = $1 ORDER BY created_at`
	rows, err := s.pool.Query(ctx, query, donorID.String())
	if err != nil {
		return nil, fmt.Errorf("list donations: %w", err)
	}
	defer rows.Close()

	var out []*ledger.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Postgres) ListParticipationsByDonor(ctx context.Context, donorID id.DonorID) ([]*ledger.Participation, error) {
	const query = `
		SELECT id, donor_id, group_id, created_at
		FROM participations WHERE donor_id = $1 ORDER BY created_at`
	rows, err := s.pool.Query(ctx, query, donorID.String())
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	var out []*ledger.Participation
	for rows.Next() {
		var p ledger.Participation
		var pid, donor, group string
		if err := rows.Scan(&pid, &donor, &group, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		if err := assignParticipationIDs(&p, pid, donor, group); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *Postgres) HasDonorRows(ctx context.Context, donorID id.DonorID) (bool, error) {
	const query = `
		SELECT EXISTS (SELECT 1 FROM donations WHERE donor_id = $1)
		    OR EXISTS (SELECT 1 FROM participations WHERE donor_id = $1)`
	var exists bool
	if err := s.pool.QueryRow(ctx, query, donorID.String()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check donor ledger rows: %w", err)
	}
	return exists, nil
}

func scanDonation(rows pgx.Rows) (*ledger.Donation, error) {
	var d ledger.Donation
	var did, donor, group, source string
	if err := rows.Scan(&did, &donor, &group, &d.AmountCents, &source, &d.CreatedAt); err != nil {
		return nil, fmt.Errorf("scan donation: %w", err)
	}
	donationID, err := id.ParseDonationID(did)
	if err != nil {
		return nil, err
	}
	donorID, err := id.ParseDonorID(donor)
	if err != nil {
		return nil, err
	}
	groupID, err := id.ParseGroupID(group)
	if err != nil {
		return nil, err
	}
	d.ID = donationID
	d.DonorID = donorID
	d.GroupID = groupID
	d.Source = ledger.Source(source)
	return &d, nil
}

func assignParticipationIDs(p *ledger.Participation, pid, donor, group string) error {
	participationID, err := id.ParseParticipationID(pid)
	if err != nil {
		return err
	}
	donorID, err := id.ParseDonorID(donor)
	if err != nil {
		return err
	}
	groupID, err := id.ParseGroupID(group)
	if err != nil {
		return err
	}
	p.ID = participationID
	p.DonorID = donorID
	p.GroupID = groupID
	return nil
}
