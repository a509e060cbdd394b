package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"eatwise/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// InviteRepo implements invite persistence on DB.
type InviteRepo struct {
	db *DB
}

// NewInviteRepo wraps a DB as an InviteRepository.
func NewInviteRepo(db *DB) *InviteRepo {
	return &InviteRepo{db: db}
}

const inviteColumns = "id, source_user_id, target_name, target_user_email, message, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanInvite(s scanner) (domain.UserProfileInvite, error) {
	var inv domain.UserProfileInvite
	var msg sql.NullString
	err := s.Scan(&inv.ID, &inv.SourceUserID, &inv.TargetName, &inv.TargetUserEmail, &msg, &inv.CreatedAt)
	if msg.Valid {
		inv.Message = &msg.String
	}
	return inv, err
}

// FindLatestBySourceAndTarget returns the newest invite from source to email.
func (r *InviteRepo) FindLatestBySourceAndTarget(ctx context.Context, sourceUserID uuid.UUID, targetEmail string) (*domain.UserProfileInvite, error) {
	inv, err := scanInvite(r.db.sql.QueryRowContext(ctx,
		"SELECT "+inviteColumns+" FROM user_profile_invites WHERE source_user_id = $1 AND target_user_email = $2 ORDER BY created_at DESC LIMIT 1",
		sourceUserID, targetEmail))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// CountRecentBySource counts invites from source created after since.
func (r *InviteRepo) CountRecentBySource(ctx context.Context, sourceUserID uuid.UUID, since time.Time) (int, error) {
	var n int
	err := r.db.sql.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_profile_invites WHERE source_user_id = $1 AND created_at > $2",
		sourceUserID, since.UTC(),
	).Scan(&n)
	return n, err
}

// FindBySource lists the invites sent by source, oldest first.
func (r *InviteRepo) FindBySource(ctx context.Context, sourceUserID uuid.UUID) ([]domain.UserProfileInvite, error) {
	return r.query(ctx,
		"SELECT "+inviteColumns+" FROM user_profile_invites WHERE source_user_id = $1 ORDER BY created_at", sourceUserID)
}

// Save inserts a new invite.
func (r *InviteRepo) Save(ctx context.Context, inv domain.UserProfileInvite) (*domain.UserProfileInvite, error) {
	_, err := r.db.sql.ExecContext(ctx,
		"INSERT INTO user_profile_invites ("+inviteColumns+") VALUES ($1, $2, $3, $4, $5, $6)",
		inv.ID, inv.SourceUserID, inv.TargetName, inv.TargetUserEmail, inv.Message, inv.CreatedAt.UTC(),
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// FindAll lists every pending invite, oldest first.
func (r *InviteRepo) FindAll(ctx context.Context) ([]domain.UserProfileInvite, error) {
	return r.query(ctx, "SELECT "+inviteColumns+" FROM user_profile_invites ORDER BY created_at")
}

func (r *InviteRepo) query(ctx context.Context, q string, args ...any) ([]domain.UserProfileInvite, error) {
	rows, err := r.db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := []domain.UserProfileInvite{}
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// DeleteAll removes the given invites in one statement.
func (r *InviteRepo) DeleteAll(ctx context.Context, invites []domain.UserProfileInvite) error {
	if len(invites) == 0 {
		return nil
	}
	ids := make([]string, len(invites))
	for i, inv := range invites {
		ids[i] = inv.ID.String()
	}
	_, err := r.db.sql.ExecContext(ctx,
		"DELETE FROM user_profile_invites WHERE id = ANY($1::uuid[])", pq.Array(ids))
	return err
}
