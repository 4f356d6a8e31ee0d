package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"scanledger/internal/directory"
	id "scanledger/pkg/domain"
	"scanledger/pkg/platform/sentinel"
)

// PostgresDonorStore persists donors in PostgreSQL.
type PostgresDonorStore struct {
	db *sql.DB
}

func NewPostgresDonorStore(db *sql.DB) *PostgresDonorStore {
	return &PostgresDonorStore{db: db}
}

func (s *PostgresDonorStore) Create(ctx context.Context, donor *directory.Donor) error {
	query := `
		INSERT INTO donors (id, name, class_name, grade_name, cohort, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(donor.ID), donor.Name, donor.ClassName, donor.GradeName, donor.Cohort, donor.CreatedAt)
	if err != nil {
		return fmt.Errorf("create donor: %w", err)
	}
	return nil
}

func (s *PostgresDonorStore) FindByID(ctx context.Context, donorID id.DonorID) (*directory.Donor, error) {
	query := `
		SELECT id, name, class_name, grade_name, cohort, created_at
		FROM donors WHERE id = $1
	`
	return s.scanDonor(s.db.QueryRowContext(ctx, query, uuid.UUID(donorID)))
}

func (s *PostgresDonorStore) FindMatching(ctx context.Context, name, className, gradeName, cohort string) (*directory.Donor, error) {
	query := `
		SELECT id, name, class_name, grade_name, cohort, created_at
		FROM donors
		WHERE name = $1 AND class_name = $2 AND grade_name = $3 AND cohort = $4
		LIMIT 1
	`
	return s.scanDonor(s.db.QueryRowContext(ctx, query, name, className, gradeName, cohort))
}

func (s *PostgresDonorStore) List(ctx context.Context) ([]*directory.Donor, error) {
	query := `
		SELECT id, name, class_name, grade_name, cohort, created_at
		FROM donors ORDER BY name ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list donors: %w", err)
	}
	defer rows.Close()

	var donors []*directory.Donor
	for rows.Next() {
		var d directory.Donor
		var donorID uuid.UUID
		if err := rows.Scan(&donorID, &d.Name, &d.ClassName, &d.GradeName, &d.Cohort, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan donor: %w", err)
		}
		d.ID = id.DonorID(donorID)
		donors = append(donors, &d)
	}
	return donors, rows.Err()
}

func (s *PostgresDonorStore) Delete(ctx context.Context, donorID id.DonorID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM donors WHERE id = $1`, uuid.UUID(donorID))
	if err != nil {
		return fmt.Errorf("delete donor: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete donor: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresDonorStore) scanDonor(row *sql.Row) (*directory.Donor, error) {
	var d directory.Donor
	var donorID uuid.UUID
	err := row.Scan(&donorID, &d.Name, &d.ClassName, &d.GradeName, &d.Cohort, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan donor: %w", err)
	}
	d.ID = id.DonorID(donorID)
	return &d, nil
}

// PostgresGroupStore persists funds and volunteer groups in PostgreSQL.
type PostgresGroupStore struct {
	db *sql.DB
}

func NewPostgresGroupStore(db *sql.DB) *PostgresGroupStore {
	return &PostgresGroupStore{db: db}
}

func (s *PostgresGroupStore) Create(ctx context.Context, group *directory.Group) error {
	query := `
		INSERT INTO groups (id, name, type, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(group.ID), group.Name, string(group.Type), group.CreatedAt)
	if err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

func (s *PostgresGroupStore) FindByID(ctx context.Context, groupID id.GroupID) (*directory.Group, error) {
	query := `SELECT id, name, type, created_at FROM groups WHERE id = $1`
	var g directory.Group
	var gid uuid.UUID
	var groupType string
	err := s.db.QueryRowContext(ctx, query, uuid.UUID(groupID)).Scan(&gid, &g.Name, &groupType, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find group: %w", err)
	}
	g.ID = id.GroupID(gid)
	g.Type = directory.GroupType(groupType)
	return &g, nil
}

func (s *PostgresGroupStore) List(ctx context.Context) ([]*directory.Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, type, created_at FROM groups ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []*directory.Group
	for rows.Next() {
		var g directory.Group
		var gid uuid.UUID
		var groupType string
		if err := rows.Scan(&gid, &g.Name, &groupType, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		g.ID = id.GroupID(gid)
		g.Type = directory.GroupType(groupType)
		groups = append(groups, &g)
	}
	return groups, rows.Err()
}
