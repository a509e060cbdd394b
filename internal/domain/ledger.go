package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LedgerEntry is one recorded food item owned by a user.
type LedgerEntry struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"userId"`
	Calories         float64   `json:"calories"`
	Subject          string    `json:"subject"`
	RegistrationDate time.Time `json:"registrationDate"`
}

// LedgerRepository is the port for ledger entry persistence.
//
// FindByDateRange is inclusive on both ends.
type LedgerRepository interface {
	Save(ctx context.Context, e LedgerEntry) (*LedgerEntry, error)
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]LedgerEntry, error)
	FindAll(ctx context.Context) ([]LedgerEntry, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]LedgerEntry, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}
