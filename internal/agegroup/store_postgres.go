package agegroup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"enrolld/pkg/platform/sentinel"
)

// PostgresStore persists age groups in PostgreSQL. The overlap invariant is
// enforced in a single statement: the insert only happens when no existing
// range intersects, so competing creates resolve inside the database.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, group AgeGroup) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO age_groups (id, name, min_age, max_age)
		 SELECT $1, $2, $3, $4
		 WHERE NOT EXISTS (
			SELECT 1 FROM age_groups WHERE min_age <= $4 AND max_age >= $3
		 )`,
		group.ID, group.Name, group.MinAge, group.MaxAge,
	)
	if err != nil {
		return fmt.Errorf("create age group: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create age group: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]AgeGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, min_age, max_age FROM age_groups ORDER BY min_age`)
	if err != nil {
		return nil, fmt.Errorf("list age groups: %w", err)
	}
	defer rows.Close()

	var groups []AgeGroup
	for rows.Next() {
		var g AgeGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.MinAge, &g.MaxAge); err != nil {
			return nil, fmt.Errorf("scan age group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list age groups: %w", err)
	}
	return groups, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM age_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete age group: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete age group: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindContaining(ctx context.Context, age int) (AgeGroup, error) {
	var g AgeGroup
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, min_age, max_age FROM age_groups
		 WHERE min_age <= $1 AND max_age >= $1`,
		age,
	).Scan(&g.ID, &g.Name, &g.MinAge, &g.MaxAge)
	if errors.Is(err, sql.ErrNoRows) {
		return AgeGroup{}, sentinel.ErrNotFound
	}
	if err != nil {
		return AgeGroup{}, fmt.Errorf("find containing age group: %w", err)
	}
	return g, nil
}
