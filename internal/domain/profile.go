// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultKcalThreshold is the daily calorie goal given to new profiles.
const DefaultKcalThreshold int64 = 2100

// UserProfile represents an account in the system.
type UserProfile struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	KcalThreshold int64     `json:"kcalThreshold"`
	IsAdmin       bool      `json:"isAdmin"`
	PasswordHash  string    `json:"-"`
	AccessToken   *string   `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ProfileRepository defines the port for profile persistence operations.
// Lookups return nil, nil when nothing matches.
type ProfileRepository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*UserProfile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*UserProfile, error)
	GetByAccessToken(ctx context.Context, token string) (*UserProfile, error)
	Create(ctx context.Context, p UserProfile) (*UserProfile, error)
	SetAccessToken(ctx context.Context, email, token string) error
	Count(ctx context.Context) (int, error)
}
