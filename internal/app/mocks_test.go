package app_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"eatwise/internal/app"
	"eatwise/internal/domain"

	"github.com/google/uuid"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func clockAt(t time.Time) app.Clock { return func() time.Time { return t } }

// daysAgo returns noon UTC n days before fixedNow.
func daysAgo(n int) time.Time { return fixedNow.AddDate(0, 0, -n) }

// ledgerStub filters a fixed slice of entries; function fields override it.
type ledgerStub struct {
	entries []domain.LedgerEntry
	saved   []domain.LedgerEntry
	deleted []uuid.UUID

	rangeFn func(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error)
}

func (m *ledgerStub) Save(_ context.Context, e domain.LedgerEntry) (*domain.LedgerEntry, error) {
	m.saved = append(m.saved, e)
	for i := range m.entries {
		if m.entries[i].ID == e.ID {
			m.entries[i] = e
			return &e, nil
		}
	}
	m.entries = append(m.entries, e)
	return &e, nil
}

func (m *ledgerStub) FindByID(_ context.Context, id uuid.UUID) (*domain.LedgerEntry, error) {
	for _, e := range m.entries {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *ledgerStub) FindByUserID(_ context.Context, userID uuid.UUID) ([]domain.LedgerEntry, error) {
	var out []domain.LedgerEntry
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *ledgerStub) FindAll(_ context.Context) ([]domain.LedgerEntry, error) {
	return append([]domain.LedgerEntry(nil), m.entries...), nil
}

func (m *ledgerStub) FindByDateRange(ctx context.Context, from, to time.Time) ([]domain.LedgerEntry, error) {
	if m.rangeFn != nil {
		return m.rangeFn(ctx, from, to)
	}
	var out []domain.LedgerEntry
	for _, e := range m.entries {
		if !e.RegistrationDate.Before(from) && !e.RegistrationDate.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *ledgerStub) DeleteByID(_ context.Context, id uuid.UUID) error {
	m.deleted = append(m.deleted, id)
	for i, e := range m.entries {
		if e.ID == id {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			break
		}
	}
	return nil
}

// inviteStub is a slice-backed InviteRepository.
type inviteStub struct {
	mu      sync.Mutex
	invites []domain.UserProfileInvite
	deleted int

	saveFn    func(ctx context.Context, inv domain.UserProfileInvite) (*domain.UserProfileInvite, error)
	findAllFn func(ctx context.Context) ([]domain.UserProfileInvite, error)
}

func (m *inviteStub) FindLatestBySourceAndTarget(_ context.Context, src uuid.UUID, target string) (*domain.UserProfileInvite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.UserProfileInvite
	for i := range m.invites {
		inv := m.invites[i]
		if inv.SourceUserID == src && inv.TargetUserEmail == target {
			if latest == nil || inv.CreatedAt.After(latest.CreatedAt) {
				latest = &inv
			}
		}
	}
	return latest, nil
}

func (m *inviteStub) CountRecentBySource(_ context.Context, src uuid.UUID, since time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, inv := range m.invites {
		if inv.SourceUserID == src && inv.CreatedAt.After(since) {
			n++
		}
	}
	return n, nil
}

func (m *inviteStub) FindBySource(_ context.Context, src uuid.UUID) ([]domain.UserProfileInvite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.UserProfileInvite
	for _, inv := range m.invites {
		if inv.SourceUserID == src {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *inviteStub) Save(ctx context.Context, inv domain.UserProfileInvite) (*domain.UserProfileInvite, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, inv)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invites = append(m.invites, inv)
	return &inv, nil
}

func (m *inviteStub) FindAll(ctx context.Context) ([]domain.UserProfileInvite, error) {
	if m.findAllFn != nil {
		return m.findAllFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]domain.UserProfileInvite(nil), m.invites...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *inviteStub) DeleteAll(_ context.Context, invites []domain.UserProfileInvite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := make(map[uuid.UUID]bool, len(invites))
	for _, inv := range invites {
		drop[inv.ID] = true
	}
	kept := m.invites[:0]
	for _, inv := range m.invites {
		if !drop[inv.ID] {
			kept = append(kept, inv)
		}
	}
	m.deleted += len(m.invites) - len(kept)
	m.invites = kept
	return nil
}

// profileStub is a map-backed ProfileRepository.
type profileStub struct {
	byEmail map[string]*domain.UserProfile

	createFn func(ctx context.Context, p domain.UserProfile) (*domain.UserProfile, error)
}

func newProfileStub() *profileStub {
	return &profileStub{byEmail: map[string]*domain.UserProfile{}}
}

func (m *profileStub) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

func (m *profileStub) GetByEmail(_ context.Context, email string) (*domain.UserProfile, error) {
	p, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *profileStub) GetByID(_ context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	for _, p := range m.byEmail {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *profileStub) GetByAccessToken(_ context.Context, token string) (*domain.UserProfile, error) {
	for _, p := range m.byEmail {
		if p.AccessToken != nil && *p.AccessToken == token {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *profileStub) Create(ctx context.Context, p domain.UserProfile) (*domain.UserProfile, error) {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	cp := p
	m.byEmail[p.Email] = &cp
	return &p, nil
}

func (m *profileStub) SetAccessToken(_ context.Context, email, token string) error {
	p, ok := m.byEmail[email]
	if !ok {
		return nil
	}
	p.AccessToken = &token
	return nil
}

func (m *profileStub) Count(_ context.Context) (int, error) { return len(m.byEmail), nil }

type mailerStub struct {
	sent   []sentMail
	sendFn func(ctx context.Context, to, subject, html, from string) error
}

type sentMail struct {
	to, subject, html, from string
}

func (m *mailerStub) SendHTMLEmail(ctx context.Context, to, subject, html, from string) error {
	if m.sendFn != nil {
		if err := m.sendFn(ctx, to, subject, html, from); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, sentMail{to, subject, html, from})
	return nil
}
