package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"enrolld/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, age, cpf, group_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Age, user.CPF, user.GroupID, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (User, error) {
	return s.findOne(ctx, `WHERE id = $1`, id)
}

func (s *PostgresStore) FindByCPF(ctx context.Context, cpf string) (User, error) {
	return s.findOne(ctx, `WHERE cpf = $1`, cpf)
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, age, cpf, group_id, created_at FROM users `+where, arg,
	).Scan(&u.ID, &u.Name, &u.Age, &u.CPF, &u.GroupID, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, sentinel.ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
