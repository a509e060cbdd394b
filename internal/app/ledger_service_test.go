package app_test

import (
	"context"
	"testing"
	"time"

	"eatwise/internal/app"
	"eatwise/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEntry_Validation(t *testing.T) {
	svc := app.NewLedgerService(&ledgerStub{}).WithClock(clockAt(fixedNow))
	caller := &domain.UserProfile{ID: uuid.New()}

	tests := []struct {
		name  string
		req   app.LedgerEntryRequest
		field string
	}{
		{"zero calories", app.LedgerEntryRequest{Calories: 0, Subject: "apple", RegistrationDate: daysAgo(1)}, "calories"},
		{"negative calories", app.LedgerEntryRequest{Calories: -10, Subject: "apple", RegistrationDate: daysAgo(1)}, "calories"},
		{"blank subject", app.LedgerEntryRequest{Calories: 90, Subject: "   ", RegistrationDate: daysAgo(1)}, "subject"},
		{"missing date", app.LedgerEntryRequest{Calories: 90, Subject: "apple"}, "registrationDate"},
		{"future date", app.LedgerEntryRequest{Calories: 90, Subject: "apple", RegistrationDate: fixedNow.Add(time.Minute)}, "registrationDate"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateEntry(context.Background(), caller, tc.req, false)
			var verr *app.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestCreateEntry_Ownership(t *testing.T) {
	other := uuid.New()
	tests := []struct {
		name    string
		admin   bool
		asAdmin bool
		want    func(caller uuid.UUID) uuid.UUID
	}{
		{"regular user", false, false, func(c uuid.UUID) uuid.UUID { return c }},
		{"non-admin asking for admin scope", false, true, func(c uuid.UUID) uuid.UUID { return c }},
		{"admin without admin scope", true, false, func(c uuid.UUID) uuid.UUID { return c }},
		{"admin scope", true, true, func(uuid.UUID) uuid.UUID { return other }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := app.NewLedgerService(&ledgerStub{}).WithClock(clockAt(fixedNow))
			caller := &domain.UserProfile{ID: uuid.New(), IsAdmin: tc.admin}

			e, err := svc.CreateEntry(context.Background(), caller, app.LedgerEntryRequest{
				Calories: 250, Subject: " toast ", RegistrationDate: daysAgo(0), UserID: &other,
			}, tc.asAdmin)
			require.NoError(t, err)
			assert.Equal(t, tc.want(caller.ID), e.UserID)
			assert.Equal(t, "toast", e.Subject)
			assert.NotEqual(t, uuid.Nil, e.ID)
		})
	}
}

func TestListEntries_Scope(t *testing.T) {
	alice := &domain.UserProfile{ID: uuid.New()}
	admin := &domain.UserProfile{ID: uuid.New(), IsAdmin: true}
	repo := &ledgerStub{entries: []domain.LedgerEntry{
		entry(alice.ID, 100, daysAgo(1)),
		entry(admin.ID, 200, daysAgo(1)),
	}}
	svc := app.NewLedgerService(repo)

	mine, err := svc.ListEntries(context.Background(), alice, true)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListEntries(context.Background(), admin, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateEntry(t *testing.T) {
	alice := &domain.UserProfile{ID: uuid.New()}
	bob := &domain.UserProfile{ID: uuid.New()}
	admin := &domain.UserProfile{ID: uuid.New(), IsAdmin: true}
	e := entry(alice.ID, 100, daysAgo(2))
	repo := &ledgerStub{entries: []domain.LedgerEntry{e}}
	svc := app.NewLedgerService(repo).WithClock(clockAt(fixedNow))
	req := app.LedgerEntryRequest{Calories: 150, Subject: "soup", RegistrationDate: daysAgo(1), UserID: &bob.ID}

	_, err := svc.UpdateEntry(context.Background(), bob, e.ID, req, false)
	assert.ErrorIs(t, err, app.ErrEntryNotFound)

	_, err = svc.UpdateEntry(context.Background(), alice, uuid.New(), req, false)
	assert.ErrorIs(t, err, app.ErrEntryNotFound)

	got, err := svc.UpdateEntry(context.Background(), admin, e.ID, req, true)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.UserID, "owner never changes")
	assert.Equal(t, 150.0, got.Calories)
	assert.Equal(t, "soup", got.Subject)
}

func TestDeleteEntry(t *testing.T) {
	alice := &domain.UserProfile{ID: uuid.New()}
	bob := &domain.UserProfile{ID: uuid.New()}
	e := entry(alice.ID, 100, daysAgo(2))
	repo := &ledgerStub{entries: []domain.LedgerEntry{e}}
	svc := app.NewLedgerService(repo)

	err := svc.DeleteEntry(context.Background(), bob, e.ID, true)
	assert.ErrorIs(t, err, app.ErrEntryNotFound)
	assert.Empty(t, repo.deleted)

	require.NoError(t, svc.DeleteEntry(context.Background(), alice, e.ID, false))
	assert.Equal(t, []uuid.UUID{e.ID}, repo.deleted)
}
