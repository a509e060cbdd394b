package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	adapthttp "eatwise/internal/adapter/http"
	"eatwise/internal/app"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the invite provisioning scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := setup()
	if err != nil {
		return err
	}
	defer svc.Close()
	log := svc.log

	if err := svc.bootstrapAdmin(ctx); err != nil {
		return err
	}

	srv := adapthttp.New(adapthttp.Services{
		Profiles: svc.profiles,
		Ledger:   svc.ledger,
		Reports:  svc.reports,
		Admin:    svc.admin,
		Invites:  svc.invites,
	}).
		WithLogger(log).
		WithMetrics(svc.registry).
		WithRateLimit(svc.cfg.RateLimitRPS, svc.cfg.RateLimitBurst)

	if svc.cfg.SSOEnabled() {
		oidcCfg, err := adapthttp.NewOIDCConfig(ctx, svc.cfg.OIDCIssuer, svc.cfg.OIDCClientID, svc.cfg.OIDCClientSecret, svc.cfg.OIDCRedirectURL)
		if err != nil {
			return err
		}
		srv.WithOIDC(oidcCfg)
	}

	var wg sync.WaitGroup
	if svc.cfg.ProvisioningEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.FixedDelay{Job: svc.provisioning, Interval: svc.cfg.ProvisioningInterval, Log: log}.Run(ctx)
		}()
	}

	httpServer := &http.Server{
		Addr:              svc.cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", svc.cfg.Addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		stop()
		wg.Wait()
		return err
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	wg.Wait()
	return nil
}
