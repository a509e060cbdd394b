package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserProfileInvite is a pending request to provision an account for
// TargetUserEmail. It lives until the provisioning sweep deletes it.
type UserProfileInvite struct {
	ID              uuid.UUID `json:"id"`
	SourceUserID    uuid.UUID `json:"sourceUserId"`
	TargetName      string    `json:"targetName"`
	TargetUserEmail string    `json:"targetUserEmail"`
	Message         *string   `json:"message,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// InviteRepository is the port for invite persistence.
type InviteRepository interface {
	// FindLatestBySourceAndTarget returns nil, nil when no invite exists.
	FindLatestBySourceAndTarget(ctx context.Context, sourceUserID uuid.UUID, targetEmail string) (*UserProfileInvite, error)
	// CountRecentBySource counts invites created strictly after since.
	CountRecentBySource(ctx context.Context, sourceUserID uuid.UUID, since time.Time) (int, error)
	FindBySource(ctx context.Context, sourceUserID uuid.UUID) ([]UserProfileInvite, error)
	Save(ctx context.Context, inv UserProfileInvite) (*UserProfileInvite, error)
	FindAll(ctx context.Context) ([]UserProfileInvite, error)
	DeleteAll(ctx context.Context, invites []UserProfileInvite) error
}
