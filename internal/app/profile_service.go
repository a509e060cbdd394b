// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"eatwise/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ProfileRequest carries the fields needed to create a profile.
type ProfileRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Name          string `json:"name" validate:"required"`
	Password      string `json:"password" validate:"min=8"`
	KcalThreshold *int64 `json:"kcalThreshold,omitempty" validate:"omitempty,gte=0"`
}

// ProfileService handles profiles, credentials and access tokens.
type ProfileService struct {
	profiles domain.ProfileRepository
	hashCost int
	now      Clock
}

// NewProfileService creates a new profile service.
func NewProfileService(profiles domain.ProfileRepository) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// WithHashCost overrides the bcrypt cost.
func (s *ProfileService) WithHashCost(cost int) *ProfileService {
	s.hashCost = cost
	return s
}

// ExistsByEmail reports whether a profile is registered under email.
func (s *ProfileService) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.profiles.ExistsByEmail(ctx, email)
}

// GetByEmail returns the profile registered under email.
func (s *ProfileService) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	p, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

// CreateProfile creates a regular profile with a hashed password.
func (s *ProfileService) CreateProfile(ctx context.Context, req ProfileRequest) (*domain.UserProfile, error) {
	return s.create(ctx, req, false)
}

// CreateAdminProfile creates a profile with admin rights.
func (s *ProfileService) CreateAdminProfile(ctx context.Context, req ProfileRequest) (*domain.UserProfile, error) {
	return s.create(ctx, req, true)
}

func (s *ProfileService) create(ctx context.Context, req ProfileRequest, isAdmin bool) (*domain.UserProfile, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	exists, err := s.profiles.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrProfileExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, err
	}

	threshold := domain.DefaultKcalThreshold
	if req.KcalThreshold != nil {
		threshold = *req.KcalThreshold
	}

	p, err := s.profiles.Create(ctx, domain.UserProfile{
		ID:            uuid.New(),
		Name:          req.Name,
		Email:         req.Email,
		KcalThreshold: threshold,
		IsAdmin:       isAdmin,
		PasswordHash:  string(hash),
		CreatedAt:     s.now().UTC(),
	})
	if errors.Is(err, domain.ErrDuplicate) {
		return nil, ErrProfileExists
	}
	return p, err
}

// SetAccessToken stores token as the bearer credential of the profile
// registered under email.
func (s *ProfileService) SetAccessToken(ctx context.Context, email, token string) error {
	exists, err := s.profiles.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !exists {
		return ErrProfileNotFound
	}
	return s.profiles.SetAccessToken(ctx, email, token)
}

// Authenticate checks an email/password pair.
func (s *ProfileService) Authenticate(ctx context.Context, email, password string) (*domain.UserProfile, error) {
	p, err := s.profiles.GetByEmail(ctx, email)
	if err != nil || p == nil || p.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

// AuthenticateToken resolves a bearer access token to its profile.
func (s *ProfileService) AuthenticateToken(ctx context.Context, token string) (*domain.UserProfile, error) {
	if token == "" {
		return nil, ErrInvalidCredentials
	}
	p, err := s.profiles.GetByAccessToken(ctx, token)
	if err != nil || p == nil {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

// LoginWithEmail issues a fresh access token for a user already
// authenticated elsewhere (e.g. via SSO), creating the profile if missing.
func (s *ProfileService) LoginWithEmail(ctx context.Context, email, name string) (string, error) {
	exists, err := s.profiles.ExistsByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !exists {
		// SSO users never log in with a password; give them an unknown one.
		password, err := RandomToken(passwordBytes)
		if err != nil {
			return "", err
		}
		if name == "" {
			name = email
		}
		_, err = s.CreateProfile(ctx, ProfileRequest{Email: email, Name: name, Password: password})
		if err != nil && !errors.Is(err, ErrProfileExists) {
			return "", err
		}
	}

	token, err := RandomToken(accessTokenBytes)
	if err != nil {
		return "", err
	}
	if err := s.SetAccessToken(ctx, email, token); err != nil {
		return "", err
	}
	return token, nil
}

// BootstrapAdmin creates the configured administrator unless a profile with
// that email already exists. It reports whether a profile was created.
func (s *ProfileService) BootstrapAdmin(ctx context.Context, req ProfileRequest) (bool, error) {
	exists, err := s.profiles.ExistsByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if _, err := s.CreateAdminProfile(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}
