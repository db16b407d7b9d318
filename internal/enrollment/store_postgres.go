package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"enrolld/pkg/platform/sentinel"
)

const enrollmentColumns = `id, name, age, cpf, status, error_reason, matched_group_id, created_at, updated_at`

// PostgresStore persists enrollments in PostgreSQL. The claim relies on the
// conditional UPDATE's affected count; no explicit locking is needed.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, e Enrollment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO enrollments (`+enrollmentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, $9)`,
		e.ID, e.Name, e.Age, e.CPF, e.Status, e.ErrorReason, e.MatchedGroupID, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Enrollment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE id = $1`, id)
	e, err := scanEnrollment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Enrollment{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Enrollment{}, fmt.Errorf("get enrollment: %w", err)
	}
	return e, nil
}

func (s *PostgresStore) ConditionalUpdate(ctx context.Context, id string, from, to Status, fields Update) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE enrollments
		 SET status = $1,
		     error_reason = COALESCE(NULLIF($2, ''), error_reason),
		     matched_group_id = COALESCE(NULLIF($3, ''), matched_group_id),
		     updated_at = now()
		 WHERE id = $4 AND status = $5`,
		to, fields.ErrorReason, fields.MatchedGroupID, id, from,
	)
	if err != nil {
		return 0, fmt.Errorf("conditional update enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("conditional update enrollment: %w", err)
	}
	return affected, nil
}

func (s *PostgresStore) FindStale(ctx context.Context, status Status, olderThan time.Time) ([]Enrollment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments
		 WHERE status = $1 AND updated_at < $2
		 ORDER BY updated_at`,
		status, olderThan,
	)
	if err != nil {
		return nil, fmt.Errorf("find stale enrollments: %w", err)
	}
	defer rows.Close()

	var stale []Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		stale = append(stale, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find stale enrollments: %w", err)
	}
	return stale, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEnrollment(row scanner) (Enrollment, error) {
	var e Enrollment
	var reason, groupID sql.NullString
	err := row.Scan(&e.ID, &e.Name, &e.Age, &e.CPF, &e.Status, &reason, &groupID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return Enrollment{}, err
	}
	e.ErrorReason = reason.String
	e.MatchedGroupID = groupID.String
	return e, nil
}
