package app

import (
	"context"
	"strings"
	"time"

	"eatwise/internal/domain"

	"github.com/google/uuid"
)

// LedgerEntryRequest is the client payload for creating or replacing an entry.
// UserID is honoured only for admin requests.
type LedgerEntryRequest struct {
	Calories         float64    `json:"calories" validate:"gt=0"`
	Subject          string     `json:"subject" validate:"required"`
	RegistrationDate time.Time  `json:"registrationDate" validate:"required"`
	UserID           *uuid.UUID `json:"userId,omitempty"`
}

// LedgerService encapsulates ledger entry CRUD use cases.
type LedgerService struct {
	repo domain.LedgerRepository
	now  Clock
}

// NewLedgerService creates a LedgerService backed by the given repository.
func NewLedgerService(repo domain.LedgerRepository) *LedgerService {
	return &LedgerService{repo: repo, now: time.Now}
}

// WithClock overrides the time source used for the not-in-the-future check.
func (s *LedgerService) WithClock(c Clock) *LedgerService {
	s.now = c
	return s
}

func (s *LedgerService) validate(req *LedgerEntryRequest) error {
	req.Subject = strings.TrimSpace(req.Subject)
	if err := validateStruct(req); err != nil {
		return err
	}
	if req.RegistrationDate.After(s.now()) {
		return fieldError("registrationDate", "must not be in the future")
	}
	return nil
}

func adminScope(caller *domain.UserProfile, adminRequest bool) bool {
	return adminRequest && caller.IsAdmin
}

// CreateEntry validates and stores a new entry owned by the caller, or by
// req.UserID when an admin asks for it.
func (s *LedgerService) CreateEntry(ctx context.Context, caller *domain.UserProfile, req LedgerEntryRequest, adminRequest bool) (*domain.LedgerEntry, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	owner := caller.ID
	if adminScope(caller, adminRequest) && req.UserID != nil {
		owner = *req.UserID
	}
	return s.repo.Save(ctx, domain.LedgerEntry{
		ID:               uuid.New(),
		UserID:           owner,
		Calories:         req.Calories,
		Subject:          req.Subject,
		RegistrationDate: req.RegistrationDate,
	})
}

// ListEntries returns the caller's entries, or every entry for admin requests.
func (s *LedgerService) ListEntries(ctx context.Context, caller *domain.UserProfile, adminRequest bool) ([]domain.LedgerEntry, error) {
	if adminScope(caller, adminRequest) {
		return s.repo.FindAll(ctx)
	}
	return s.repo.FindByUserID(ctx, caller.ID)
}

func (s *LedgerService) visible(ctx context.Context, caller *domain.UserProfile, id uuid.UUID, adminRequest bool) (*domain.LedgerEntry, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil || (!adminScope(caller, adminRequest) && e.UserID != caller.ID) {
		return nil, ErrEntryNotFound
	}
	return e, nil
}

// UpdateEntry replaces calories, subject and date of an existing entry.
// Ownership never changes.
func (s *LedgerService) UpdateEntry(ctx context.Context, caller *domain.UserProfile, id uuid.UUID, req LedgerEntryRequest, adminRequest bool) (*domain.LedgerEntry, error) {
	if err := s.validate(&req); err != nil {
		return nil, err
	}
	existing, err := s.visible(ctx, caller, id, adminRequest)
	if err != nil {
		return nil, err
	}
	existing.Calories = req.Calories
	existing.Subject = req.Subject
	existing.RegistrationDate = req.RegistrationDate
	return s.repo.Save(ctx, *existing)
}

// DeleteEntry removes an entry visible to the caller.
func (s *LedgerService) DeleteEntry(ctx context.Context, caller *domain.UserProfile, id uuid.UUID, adminRequest bool) error {
	existing, err := s.visible(ctx, caller, id, adminRequest)
	if err != nil {
		return err
	}
	return s.repo.DeleteByID(ctx, existing.ID)
}
