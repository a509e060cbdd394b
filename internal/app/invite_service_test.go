package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"eatwise/internal/app"
	"eatwise/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inviteCfg = app.InviteConfig{From: "noreply@eatwise.app", RegisterURL: "https://eatwise.app/register"}

func inviter() *domain.UserProfile {
	return &domain.UserProfile{ID: uuid.New(), Name: "Alice", Email: "alice@example.com"}
}

func TestSendInvite_PersistsAndMails(t *testing.T) {
	repo := &inviteStub{}
	mailer := &mailerStub{}
	svc := app.NewInviteService(repo, mailer, inviteCfg).WithClock(clockAt(fixedNow))
	msg := "  join me  "
	src := inviter()

	inv, err := svc.SendInvite(context.Background(), src, app.InviteRequest{
		Name: "Bob", TargetUserEmail: "bob@example.com", Message: &msg,
	})
	require.NoError(t, err)
	assert.Equal(t, src.ID, inv.SourceUserID)
	assert.Equal(t, "Bob", inv.TargetName)
	assert.Equal(t, fixedNow, inv.CreatedAt)
	require.NotNil(t, inv.Message)
	assert.Equal(t, "join me", *inv.Message)
	require.Len(t, repo.invites, 1)

	require.Len(t, mailer.sent, 1)
	sent := mailer.sent[0]
	assert.Equal(t, "bob@example.com", sent.to)
	assert.Equal(t, "noreply@eatwise.app", sent.from)
	assert.Contains(t, sent.subject, "EatWise")
	assert.Contains(t, sent.html, "Hello Bob")
	assert.Contains(t, sent.html, "Alice")
	assert.Contains(t, sent.html, "join me")
	assert.Contains(t, sent.html, "refId="+inv.ID.String())
	assert.Contains(t, sent.html, "email=bob%40example.com")
}

func TestSendInvite_EscapesUserInput(t *testing.T) {
	mailer := &mailerStub{}
	svc := app.NewInviteService(&inviteStub{}, mailer, inviteCfg)
	msg := "<script>alert(1)</script>"

	_, err := svc.SendInvite(context.Background(), inviter(), app.InviteRequest{
		Name: "Bob", TargetUserEmail: "bob@example.com", Message: &msg,
	})
	require.NoError(t, err)
	assert.NotContains(t, mailer.sent[0].html, "<script>")
}

func TestSendInvite_Validation(t *testing.T) {
	svc := app.NewInviteService(&inviteStub{}, &mailerStub{}, inviteCfg)
	tests := []struct {
		name  string
		req   app.InviteRequest
		field string
	}{
		{"blank name", app.InviteRequest{Name: "  ", TargetUserEmail: "bob@example.com"}, "name"},
		{"bad email", app.InviteRequest{Name: "Bob", TargetUserEmail: "not-an-email"}, "targetEmail"},
		{"missing email", app.InviteRequest{Name: "Bob"}, "targetEmail"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SendInvite(context.Background(), inviter(), tc.req)
			var verr *app.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestSendInvite_Cooldown(t *testing.T) {
	src := inviter()
	tests := []struct {
		name    string
		age     time.Duration
		wantErr error
	}{
		{"30 minutes ago", 30 * time.Minute, app.ErrDuplicateInviteCooldown},
		{"just under an hour", time.Hour - time.Second, app.ErrDuplicateInviteCooldown},
		{"2 hours ago", 2 * time.Hour, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &inviteStub{invites: []domain.UserProfileInvite{{
				ID: uuid.New(), SourceUserID: src.ID, TargetName: "Bob",
				TargetUserEmail: "bob@example.com", CreatedAt: fixedNow.Add(-tc.age),
			}}}
			mailer := &mailerStub{}
			svc := app.NewInviteService(repo, mailer, inviteCfg).WithClock(clockAt(fixedNow))

			_, err := svc.SendInvite(context.Background(), src, app.InviteRequest{Name: "Bob", TargetUserEmail: "bob@example.com"})
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Len(t, repo.invites, 1, "no row written")
				assert.Empty(t, mailer.sent, "no email sent")
				return
			}
			require.NoError(t, err)
			assert.Len(t, repo.invites, 2)
		})
	}
}

func TestSendInvite_CooldownIsPerSource(t *testing.T) {
	other := inviter()
	repo := &inviteStub{invites: []domain.UserProfileInvite{{
		ID: uuid.New(), SourceUserID: other.ID, TargetUserEmail: "bob@example.com", CreatedAt: fixedNow.Add(-time.Minute),
	}}}
	svc := app.NewInviteService(repo, &mailerStub{}, inviteCfg).WithClock(clockAt(fixedNow))

	_, err := svc.SendInvite(context.Background(), inviter(), app.InviteRequest{Name: "Bob", TargetUserEmail: "bob@example.com"})
	assert.NoError(t, err)
}

func TestSendInvite_RateLimit(t *testing.T) {
	src := inviter()
	repo := &inviteStub{}
	for i := 0; i < app.MaxInvitesPerHour; i++ {
		repo.invites = append(repo.invites, domain.UserProfileInvite{
			ID: uuid.New(), SourceUserID: src.ID, TargetName: "friend",
			TargetUserEmail: "friend" + string(rune('a'+i)) + "@example.com",
			CreatedAt:       fixedNow.Add(-time.Duration(i+1) * 5 * time.Minute),
		})
	}
	mailer := &mailerStub{}
	svc := app.NewInviteService(repo, mailer, inviteCfg).WithClock(clockAt(fixedNow))

	_, err := svc.SendInvite(context.Background(), src, app.InviteRequest{Name: "Zed", TargetUserEmail: "zed@example.com"})
	assert.ErrorIs(t, err, app.ErrRateLimitExceeded)
	assert.Len(t, repo.invites, app.MaxInvitesPerHour)
	assert.Empty(t, mailer.sent)

	// An hour later the earlier invites are outside the window.
	svc.WithClock(clockAt(fixedNow.Add(time.Hour)))
	_, err = svc.SendInvite(context.Background(), src, app.InviteRequest{Name: "Zed", TargetUserEmail: "zed@example.com"})
	assert.NoError(t, err)
}

func TestSendInvite_NotificationFailureKeepsInvite(t *testing.T) {
	repo := &inviteStub{}
	smtpErr := errors.New("connection refused")
	mailer := &mailerStub{sendFn: func(context.Context, string, string, string, string) error { return smtpErr }}
	svc := app.NewInviteService(repo, mailer, inviteCfg).WithClock(clockAt(fixedNow))

	inv, err := svc.SendInvite(context.Background(), inviter(), app.InviteRequest{Name: "Bob", TargetUserEmail: "bob@example.com"})
	assert.Nil(t, inv)
	assert.ErrorIs(t, err, app.ErrNotificationDelivery)
	assert.ErrorIs(t, err, smtpErr)
	assert.Len(t, repo.invites, 1, "invite is not rolled back")
}

func TestSendInvite_SaveFailureSendsNothing(t *testing.T) {
	boom := errors.New("insert failed")
	mailer := &mailerStub{}
	svc := app.NewInviteService(&inviteStub{saveFn: func(context.Context, domain.UserProfileInvite) (*domain.UserProfileInvite, error) {
		return nil, boom
	}}, mailer, inviteCfg)

	_, err := svc.SendInvite(context.Background(), inviter(), app.InviteRequest{Name: "Bob", TargetUserEmail: "bob@example.com"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, mailer.sent)
}

func TestListInvites(t *testing.T) {
	src := inviter()
	repo := &inviteStub{invites: []domain.UserProfileInvite{
		{ID: uuid.New(), SourceUserID: src.ID, TargetUserEmail: "a@example.com"},
		{ID: uuid.New(), SourceUserID: uuid.New(), TargetUserEmail: "b@example.com"},
	}}
	svc := app.NewInviteService(repo, &mailerStub{}, inviteCfg)

	got, err := svc.ListInvites(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0].TargetUserEmail, "a@"))
}
