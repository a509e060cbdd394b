package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eatwise/internal/domain"
	"eatwise/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// MaxInvitesPerHour caps invites a single user may send in a trailing hour.
	MaxInvitesPerHour = 5
	// InviteCooldown is the minimum gap between two invites to the same email.
	InviteCooldown = time.Hour

	inviteSubject = "You've been invited to join EatWise!"
)

// Mailer delivers HTML email.
type Mailer interface {
	SendHTMLEmail(ctx context.Context, to, subject, html, from string) error
}

// InviteRequest is the payload of POST /profile/invite.
type InviteRequest struct {
	Name            string  `json:"name" validate:"required"`
	TargetUserEmail string  `json:"targetEmail" validate:"required,email"`
	Message         *string `json:"message,omitempty"`
}

// InviteConfig holds the sender address and the registration link base.
type InviteConfig struct {
	From        string
	RegisterURL string
}

// InviteService validates, stores and announces invites.
type InviteService struct {
	invites domain.InviteRepository
	mailer  Mailer
	cfg     InviteConfig
	now     Clock
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewInviteService creates an InviteService.
func NewInviteService(invites domain.InviteRepository, mailer Mailer, cfg InviteConfig) *InviteService {
	return &InviteService{
		invites: invites,
		mailer:  mailer,
		cfg:     cfg,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
}

// WithClock overrides the time source used for cooldown and rate limiting.
func (s *InviteService) WithClock(c Clock) *InviteService {
	s.now = c
	return s
}

// WithLogger sets the logger.
func (s *InviteService) WithLogger(l zerolog.Logger) *InviteService {
	s.log = l.With().Str("component", "invites").Logger()
	return s
}

// WithMetrics sets the metrics sink.
func (s *InviteService) WithMetrics(m *metrics.Metrics) *InviteService {
	s.metrics = m
	return s
}

// SendInvite persists an invite from source and emails the target.
//
// When the email cannot be delivered the invite stays persisted and the
// returned error wraps ErrNotificationDelivery.
func (s *InviteService) SendInvite(ctx context.Context, source *domain.UserProfile, req InviteRequest) (*domain.UserProfileInvite, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.TargetUserEmail = strings.TrimSpace(req.TargetUserEmail)
	if req.Message != nil {
		m := strings.TrimSpace(*req.Message)
		req.Message = &m
		if m == "" {
			req.Message = nil
		}
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.checkLimits(ctx, source.ID, req.TargetUserEmail, now); err != nil {
		return nil, err
	}

	inv, err := s.invites.Save(ctx, domain.UserProfileInvite{
		ID:              uuid.New(),
		SourceUserID:    source.ID,
		TargetName:      req.Name,
		TargetUserEmail: req.TargetUserEmail,
		Message:         req.Message,
		CreatedAt:       now,
	})
	if err != nil {
		return nil, err
	}

	html, err := renderInviteEmail(inviteEmail{
		TargetName:  inv.TargetName,
		SourceName:  source.Name,
		Message:     inv.Message,
		TargetEmail: inv.TargetUserEmail,
		RegisterURL: registerURL(s.cfg.RegisterURL, inv.TargetUserEmail, inv.ID),
	})
	if err == nil {
		err = s.mailer.SendHTMLEmail(ctx, inv.TargetUserEmail, inviteSubject, html, s.cfg.From)
	}
	if err != nil {
		s.metrics.NotificationFailed()
		s.log.Error().Err(err).
			Str("invite_id", inv.ID.String()).
			Str("target", inv.TargetUserEmail).
			Msg("failed to send invite email")
		return nil, fmt.Errorf("%w: %w", ErrNotificationDelivery, err)
	}

	s.metrics.InviteSent()
	s.log.Info().
		Str("source_user_id", source.ID.String()).
		Str("target", inv.TargetUserEmail).
		Msg("invite sent")
	return inv, nil
}

func (s *InviteService) checkLimits(ctx context.Context, sourceID uuid.UUID, target string, now time.Time) error {
	latest, err := s.invites.FindLatestBySourceAndTarget(ctx, sourceID, target)
	if err != nil {
		return err
	}
	if latest != nil && now.Sub(latest.CreatedAt) < InviteCooldown {
		s.metrics.InviteRejected("cooldown")
		return ErrDuplicateInviteCooldown
	}

	recent, err := s.invites.CountRecentBySource(ctx, sourceID, now.Add(-time.Hour))
	if err != nil {
		return err
	}
	if recent >= MaxInvitesPerHour {
		s.metrics.InviteRejected("rate_limit")
		return ErrRateLimitExceeded
	}
	return nil
}

// ListInvites returns the invites sent by source that are still pending.
func (s *InviteService) ListInvites(ctx context.Context, source *domain.UserProfile) ([]domain.UserProfileInvite, error) {
	return s.invites.FindBySource(ctx, source.ID)
}
