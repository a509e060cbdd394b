package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"eatwise/internal/adapter/mail"
	"eatwise/internal/adapter/memory"
	"eatwise/internal/adapter/postgres"
	"eatwise/internal/app"
	"eatwise/internal/config"
	"eatwise/internal/domain"
	"eatwise/internal/logger"
	"eatwise/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

// stores bundles the repositories of one backend.
type stores struct {
	profiles domain.ProfileRepository
	ledger   domain.LedgerRepository
	invites  domain.InviteRepository
	closer   io.Closer
}

func openStores(cfg *config.Config, log zerolog.Logger) (*stores, error) {
	if cfg.DatabaseURL == "" {
		log.Warn().Msg("EATWISE_DATABASE_URL not set, using in-memory store")
		db := memory.New()
		return &stores{profiles: db, ledger: db.Ledger(), invites: db.Invites(), closer: io.NopCloser(nil)}, nil
	}
	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	return &stores{
		profiles: db,
		ledger:   postgres.NewLedgerRepo(db),
		invites:  postgres.NewInviteRepo(db),
		closer:   db,
	}, nil
}

// services is the fully wired application.
type services struct {
	cfg      *config.Config
	log      zerolog.Logger
	registry *prometheus.Registry
	stores   *stores

	profiles     *app.ProfileService
	ledger       *app.LedgerService
	reports      *app.ReportService
	admin        *app.AdminReportService
	invites      *app.InviteService
	provisioning *app.ProvisioningJob
}

func setup() (*services, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New("eatwise", cfg.LogLevel, cfg.LogFormat)
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	st, err := openStores(cfg, log)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var mailer app.Mailer = mail.NewLogMailer(log)
	if cfg.MailAPIURL != "" {
		mailer = mail.NewHTTPMailer(cfg.MailAPIURL, cfg.MailAPIKey)
	}

	profiles := app.NewProfileService(st.profiles)
	reports := app.NewReportService(st.ledger, loc)
	return &services{
		cfg:      cfg,
		log:      log,
		registry: reg,
		stores:   st,
		profiles: profiles,
		ledger:   app.NewLedgerService(st.ledger),
		reports:  reports,
		admin:    app.NewAdminReportService(reports).WithMetrics(m),
		invites: app.NewInviteService(st.invites, mailer, app.InviteConfig{
			From:        cfg.MailFrom,
			RegisterURL: cfg.InviteBaseURL,
		}).WithLogger(log).WithMetrics(m),
		provisioning: app.NewProvisioningJob(st.invites, profiles).WithLogger(log).WithMetrics(m),
	}, nil
}

func (s *services) Close() {
	if err := s.stores.closer.Close(); err != nil {
		s.log.Error().Err(err).Msg("close store")
	}
}

func (s *services) bootstrapAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	created, err := s.profiles.BootstrapAdmin(ctx, app.ProfileRequest{
		Email:    s.cfg.AdminEmail,
		Name:     s.cfg.AdminName,
		Password: s.cfg.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		s.log.Info().Str("email", s.cfg.AdminEmail).Msg("admin profile created")
	}
	return nil
}
