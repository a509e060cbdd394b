// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"eatwise/internal/domain"

	"github.com/google/uuid"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	profiles []*domain.UserProfile
	ledger   []domain.LedgerEntry
	invites  []domain.UserProfileInvite
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.ProfileRepository = (*DB)(nil)
var _ domain.LedgerRepository = (*LedgerRepo)(nil)
var _ domain.InviteRepository = (*InviteRepo)(nil)

// --- ProfileRepository ---

// ExistsByEmail reports whether a profile uses email.
func (db *DB) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.profileWhere(func(p *domain.UserProfile) bool { return p.Email == email }) != nil, nil
}

// GetByEmail retrieves a profile by email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.profileWhere(func(p *domain.UserProfile) bool { return p.Email == email }), nil
}

// GetByID retrieves a profile by ID.
func (db *DB) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.profileWhere(func(p *domain.UserProfile) bool { return p.ID == id }), nil
}

// GetByAccessToken retrieves the profile holding token.
func (db *DB) GetByAccessToken(ctx context.Context, token string) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.profileWhere(func(p *domain.UserProfile) bool {
		return p.AccessToken != nil && *p.AccessToken == token
	}), nil
}

// profileWhere returns a copy of the first match. Callers hold db.mu.
func (db *DB) profileWhere(match func(*domain.UserProfile) bool) *domain.UserProfile {
	for _, p := range db.profiles {
		if match(p) {
			cp := *p
			return &cp
		}
	}
	return nil
}

// Create stores a new profile.
func (db *DB) Create(ctx context.Context, p domain.UserProfile) (*domain.UserProfile, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.profiles {
		if existing.Email == p.Email {
			return nil, fmt.Errorf("user profile %s: %w", p.Email, domain.ErrDuplicate)
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	stored := p
	db.profiles = append(db.profiles, &stored)
	return &p, nil
}

// SetAccessToken replaces the access token of the profile using email.
func (db *DB) SetAccessToken(ctx context.Context, email, token string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, p := range db.profiles {
		if p.Email == email {
			t := token
			p.AccessToken = &t
			return nil
		}
	}
	return nil
}

// Count returns the total number of profiles.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.profiles), nil
}

// --- LedgerRepository ---

// LedgerRepo implements ledger persistence on top of DB.
type LedgerRepo struct {
	db *DB
}

// Ledger returns the ledger repository.
func (db *DB) Ledger() *LedgerRepo {
	return &LedgerRepo{db: db}
}

// Save inserts e, or replaces the entry with the same ID.
func (r *LedgerRepo) Save(ctx context.Context, e domain.LedgerEntry) (*domain.LedgerEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	for i := range r.db.ledger {
		if r.db.ledger[i].ID == e.ID {
			r.db.ledger[i] = e
			return &e, nil
		}
	}
	r.db.ledger = append(r.db.ledger, e)
	return &e, nil
}

// FindByID retrieves an entry by ID.
func (r *LedgerRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, e := range r.db.ledger {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

// FindByUserID lists a user's entries, newest first.
func (r *LedgerRepo) FindByUserID(ctx context.Context, userID uuid.UUID) ([]domain.LedgerEntry, error) {
	return r.where(func(e domain.LedgerEntry) bool { return e.UserID == userID }), nil
}

// FindAll lists every entry, newest first.
func (r *LedgerRepo) FindAll(ctx context.Context) ([]domain.LedgerEntry, error) {
	return r.where(func(domain.LedgerEntry) bool { return true }), nil
}

// FindByDateRange lists entries registered within [from, to].
func (r *LedgerRepo) FindByDateRange(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error) {
	return r.where(func(e domain.LedgerEntry) bool {
		return !e.RegistrationDate.Before(from) && !e.RegistrationDate.After(to)
	}), nil
}

func (r *LedgerRepo) where(match func(domain.LedgerEntry) bool) []domain.LedgerEntry {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	result := []domain.LedgerEntry{}
	for _, e := range r.db.ledger {
		if match(e) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].RegistrationDate.After(result[j].RegistrationDate)
	})
	return result
}

// DeleteByID deletes an entry by ID.
func (r *LedgerRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i, e := range r.db.ledger {
		if e.ID == id {
			r.db.ledger = append(r.db.ledger[:i], r.db.ledger[i+1:]...)
			return nil
		}
	}
	return nil
}

// --- InviteRepository ---

// InviteRepo implements invite persistence on top of DB.
type InviteRepo struct {
	db *DB
}

// Invites returns the invite repository.
func (db *DB) Invites() *InviteRepo {
	return &InviteRepo{db: db}
}

// FindLatestBySourceAndTarget returns the newest invite from source to email.
func (r *InviteRepo) FindLatestBySourceAndTarget(ctx context.Context, sourceUserID uuid.UUID, targetEmail string) (*domain.UserProfileInvite, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var latest *domain.UserProfileInvite
	for i := range r.db.invites {
		inv := r.db.invites[i]
		if inv.SourceUserID != sourceUserID || inv.TargetUserEmail != targetEmail {
			continue
		}
		if latest == nil || inv.CreatedAt.After(latest.CreatedAt) {
			latest = &inv
		}
	}
	return latest, nil
}

// CountRecentBySource counts invites from source created after since.
func (r *InviteRepo) CountRecentBySource(ctx context.Context, sourceUserID uuid.UUID, since time.Time) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n := 0
	for _, inv := range r.db.invites {
		if inv.SourceUserID == sourceUserID && inv.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

// FindBySource lists the invites sent by source, oldest first.
func (r *InviteRepo) FindBySource(ctx context.Context, sourceUserID uuid.UUID) ([]domain.UserProfileInvite, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	result := []domain.UserProfileInvite{}
	for _, inv := range r.db.invites {
		if inv.SourceUserID == sourceUserID {
			result = append(result, inv)
		}
	}
	return result, nil
}

// Save stores a new invite.
func (r *InviteRepo) Save(ctx context.Context, inv domain.UserProfileInvite) (*domain.UserProfileInvite, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	r.db.invites = append(r.db.invites, inv)
	return &inv, nil
}

// FindAll lists every pending invite, oldest first.
func (r *InviteRepo) FindAll(ctx context.Context) ([]domain.UserProfileInvite, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	result := make([]domain.UserProfileInvite, len(r.db.invites))
	copy(result, r.db.invites)
	return result, nil
}

// DeleteAll removes the given invites by ID.
func (r *InviteRepo) DeleteAll(ctx context.Context, invites []domain.UserProfileInvite) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	drop := make(map[uuid.UUID]struct{}, len(invites))
	for _, inv := range invites {
		drop[inv.ID] = struct{}{}
	}
	kept := r.db.invites[:0]
	for _, inv := range r.db.invites {
		if _, ok := drop[inv.ID]; !ok {
			kept = append(kept, inv)
		}
	}
	r.db.invites = kept
	return nil
}
