//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Schema mirrors the production tables. Integration tests apply it to a fresh
// container instead of shipping a migration tool (schema migration is out of
// scope for this service).
const Schema = `
CREATE TABLE IF NOT EXISTS age_groups (
	id      TEXT PRIMARY KEY,
	name    TEXT NOT NULL,
	min_age INT  NOT NULL,
	max_age INT  NOT NULL
);

CREATE TABLE IF NOT EXISTS enrollments (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	age              INT  NOT NULL,
	cpf              TEXT NOT NULL,
	status           TEXT NOT NULL,
	error_reason     TEXT,
	matched_group_id TEXT,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS enrollments_status_updated_at ON enrollments (status, updated_at);

CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	age        INT  NOT NULL,
	cpf        TEXT NOT NULL,
	group_id   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// NewPostgresDB starts a PostgreSQL container, applies the schema, and
// returns an open connection. Everything is cleaned up with the test.
func NewPostgresDB(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("enrolld_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(Schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	return db
}
