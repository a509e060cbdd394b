// Package postgres implements the domain repositories using PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"eatwise/internal/domain"

	"github.com/lib/pq"
)

// DB wraps a *sql.DB and implements domain repository interfaces.
type DB struct {
	sql *sql.DB
}

// Ensure interfaces are met.
var _ domain.ProfileRepository = (*DB)(nil)
var _ domain.LedgerRepository = (*LedgerRepo)(nil)
var _ domain.InviteRepository = (*InviteRepo)(nil)

// Open connects to PostgreSQL, pings, and runs migrations.
func Open(connStr string) (*DB, error) {
	s, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	s.SetMaxOpenConns(10)
	s.SetMaxIdleConns(5)
	s.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.PingContext(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	d := New(s)
	if err := d.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return d, nil
}

// New wraps an existing connection pool without pinging or migrating.
func New(s *sql.DB) *DB {
	return &DB{sql: s}
}

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

// Ping checks the connection.
func (d *DB) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users_profile (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		kcal_threshold BIGINT NOT NULL DEFAULT 2100 CHECK (kcal_threshold >= 0),
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		password_hash TEXT NOT NULL,
		access_token TEXT UNIQUE,
		created_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS ledger (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users_profile(id) ON DELETE CASCADE,
		calories DOUBLE PRECISION NOT NULL CHECK (calories > 0),
		subject TEXT NOT NULL,
		registration_date TIMESTAMPTZ NOT NULL
	);`,
	"CREATE INDEX IF NOT EXISTS idx_ledger_user_id ON ledger(user_id);",
	"CREATE INDEX IF NOT EXISTS idx_ledger_registration_date ON ledger(registration_date);",
	`CREATE TABLE IF NOT EXISTS user_profile_invites (
		id UUID PRIMARY KEY,
		source_user_id UUID NOT NULL,
		target_name TEXT NOT NULL,
		target_user_email TEXT NOT NULL,
		message TEXT,
		created_at TIMESTAMPTZ NOT NULL
	);`,
	"CREATE INDEX IF NOT EXISTS idx_invites_source_created ON user_profile_invites(source_user_id, created_at);",
}

// Migrate creates the schema if it does not exist.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := d.sql.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
