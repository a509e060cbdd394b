package app

import (
	"context"
	"time"

	"eatwise/internal/domain"
	"eatwise/internal/metrics"

	"github.com/rs/zerolog"
)

// AccountProvisioner creates accounts for accepted invites.
// *ProfileService satisfies it.
type AccountProvisioner interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CreateProfile(ctx context.Context, req ProfileRequest) (*domain.UserProfile, error)
	SetAccessToken(ctx context.Context, email, token string) error
}

// ProvisioningResult summarises one sweep.
type ProvisioningResult struct {
	Processed   int `json:"processed"`
	Provisioned int `json:"provisioned"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
}

// ProvisioningJob turns pending invites into accounts.
type ProvisioningJob struct {
	invites     domain.InviteRepository
	provisioner AccountProvisioner
	log         zerolog.Logger
	metrics     *metrics.Metrics
}

// NewProvisioningJob creates a ProvisioningJob.
func NewProvisioningJob(invites domain.InviteRepository, provisioner AccountProvisioner) *ProvisioningJob {
	return &ProvisioningJob{invites: invites, provisioner: provisioner, log: zerolog.Nop()}
}

// WithLogger sets the logger.
func (j *ProvisioningJob) WithLogger(l zerolog.Logger) *ProvisioningJob {
	j.log = l.With().Str("component", "provisioning").Logger()
	return j
}

// WithMetrics sets the metrics sink.
func (j *ProvisioningJob) WithMetrics(m *metrics.Metrics) *ProvisioningJob {
	j.metrics = m
	return j
}

// Name implements Job.
func (j *ProvisioningJob) Name() string { return "invite-provisioning" }

// Run implements Job.
func (j *ProvisioningJob) Run(ctx context.Context) error {
	_, err := j.RunOnce(ctx)
	return err
}

// RunOnce processes every pending invite in order and then deletes all of
// them, whatever the per-invite outcome. A failing invite does not stop the
// sweep.
func (j *ProvisioningJob) RunOnce(ctx context.Context) (ProvisioningResult, error) {
	var res ProvisioningResult
	start := time.Now()

	pending, err := j.invites.FindAll(ctx)
	if err != nil {
		return res, err
	}
	if len(pending) == 0 {
		j.metrics.ProvisioningRun(0, 0, 0)
		return res, nil
	}

	for _, inv := range pending {
		res.Processed++
		created, err := j.provision(ctx, inv)
		switch {
		case err != nil:
			res.Failed++
			j.log.Error().Err(err).
				Str("invite_id", inv.ID.String()).
				Str("email", inv.TargetUserEmail).
				Msg("failed to provision invited user")
		case created:
			res.Provisioned++
		default:
			res.Skipped++
			j.log.Info().
				Str("invite_id", inv.ID.String()).
				Str("email", inv.TargetUserEmail).
				Msg("account already exists, skipping invite")
		}
	}

	if err := j.invites.DeleteAll(ctx, pending); err != nil {
		return res, err
	}

	j.metrics.ProvisioningRun(res.Provisioned, res.Skipped, res.Failed)
	j.log.Info().
		Int("processed", res.Processed).
		Int("provisioned", res.Provisioned).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Dur("took", time.Since(start)).
		Msg("provisioning sweep finished")
	return res, nil
}

func (j *ProvisioningJob) provision(ctx context.Context, inv domain.UserProfileInvite) (bool, error) {
	exists, err := j.provisioner.ExistsByEmail(ctx, inv.TargetUserEmail)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	password, err := RandomToken(passwordBytes)
	if err != nil {
		return false, err
	}
	token, err := RandomToken(accessTokenBytes)
	if err != nil {
		return false, err
	}

	if _, err := j.provisioner.CreateProfile(ctx, ProfileRequest{
		Email:    inv.TargetUserEmail,
		Name:     inv.TargetName,
		Password: password,
	}); err != nil {
		return false, err
	}
	if err := j.provisioner.SetAccessToken(ctx, inv.TargetUserEmail, token); err != nil {
		return false, err
	}

	// Credentials are not mailed to the user yet.
	j.log.Debug().
		Str("email", inv.TargetUserEmail).
		Str("password", password).
		Str("access_token", token).
		Msg("provisioned invited user")
	return true, nil
}
