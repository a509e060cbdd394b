package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eatwise/internal/domain"

	"github.com/google/uuid"
)

const profileColumns = "id, name, email, kcal_threshold, is_admin, password_hash, access_token, created_at"

func scanProfile(row *sql.Row) (*domain.UserProfile, error) {
	var p domain.UserProfile
	var token sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.KcalThreshold, &p.IsAdmin, &p.PasswordHash, &token, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if token.Valid {
		p.AccessToken = &token.String
	}
	return &p, nil
}

// ExistsByEmail reports whether a profile uses email.
func (d *DB) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := d.sql.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users_profile WHERE email = $1)", email,
	).Scan(&exists)
	return exists, err
}

// GetByEmail retrieves a profile by email.
func (d *DB) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	return scanProfile(d.sql.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM users_profile WHERE email = $1", email))
}

// GetByID retrieves a profile by ID.
func (d *DB) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	return scanProfile(d.sql.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM users_profile WHERE id = $1", id))
}

// GetByAccessToken retrieves the profile holding token.
func (d *DB) GetByAccessToken(ctx context.Context, token string) (*domain.UserProfile, error) {
	return scanProfile(d.sql.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM users_profile WHERE access_token = $1", token))
}

// Create inserts a new profile.
func (d *DB) Create(ctx context.Context, p domain.UserProfile) (*domain.UserProfile, error) {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO users_profile ("+profileColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		p.ID, p.Name, p.Email, p.KcalThreshold, p.IsAdmin, p.PasswordHash, p.AccessToken, p.CreatedAt,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("user profile %s: %w", p.Email, domain.ErrDuplicate)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetAccessToken replaces the access token of the profile using email.
func (d *DB) SetAccessToken(ctx context.Context, email, token string) error {
	_, err := d.sql.ExecContext(ctx,
		"UPDATE users_profile SET access_token = $1 WHERE email = $2", token, email)
	return err
}

// Count returns the total number of profiles.
func (d *DB) Count(ctx context.Context) (int, error) {
	var count int
	err := d.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM users_profile").Scan(&count)
	return count, err
}
