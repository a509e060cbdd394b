package adapthttp

import (
	"net/http"

	"eatwise/internal/app"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Services groups the application services the HTTP adapter drives.
type Services struct {
	Profiles *app.ProfileService
	Ledger   *app.LedgerService
	Reports  *app.ReportService
	Admin    *app.AdminReportService
	Invites  *app.InviteService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	profiles *app.ProfileService
	ledger   *app.LedgerService
	reports  *app.ReportService
	admin    *app.AdminReportService
	invites  *app.InviteService

	log      zerolog.Logger
	gatherer prometheus.Gatherer
	limiter  *clientLimiter
	oidc     *OIDCConfig
	newState func() (string, error)
}

// New creates a Server wired to the given application services.
func New(svc Services) *Server {
	return &Server{
		profiles: svc.Profiles,
		ledger:   svc.Ledger,
		reports:  svc.Reports,
		admin:    svc.Admin,
		invites:  svc.Invites,
		log:      zerolog.Nop(),
		newState: func() (string, error) { return app.RandomToken(stateBytes) },
	}
}

// WithLogger sets the request logger.
func (s *Server) WithLogger(l zerolog.Logger) *Server {
	s.log = l.With().Str("component", "http").Logger()
	return s
}

// WithMetrics exposes g on /metrics.
func (s *Server) WithMetrics(g prometheus.Gatherer) *Server {
	s.gatherer = g
	return s
}

// WithRateLimit throttles each client to rps requests per second with the
// given burst. rps <= 0 disables throttling.
func (s *Server) WithRateLimit(rps float64, burst int) *Server {
	if rps > 0 {
		s.limiter = newClientLimiter(rps, burst)
	}
	return s
}

// WithOIDC enables the SSO login endpoints.
func (s *Server) WithOIDC(cfg *OIDCConfig) *Server {
	s.oidc = cfg
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("GET /auth/config", s.handleAuthConfig)
	mux.HandleFunc("GET /auth/sso/login", s.handleSSOLogin)
	mux.HandleFunc("GET /auth/sso/callback", s.handleSSOCallback)

	user := func(h http.HandlerFunc) http.Handler { return s.authMiddleware(h) }
	admin := func(h http.HandlerFunc) http.Handler { return s.authMiddleware(requireAdmin(h)) }

	mux.Handle("GET /profile/me", user(s.handleProfileMe))
	mux.Handle("POST /profile/invite", user(s.handleSendInvite))
	mux.Handle("GET /profile/invites", user(s.handleListInvites))

	mux.Handle("GET /ledger/entries", user(s.handleListEntries(false)))
	mux.Handle("POST /ledger/entries", user(s.handleCreateEntry(false)))
	mux.Handle("PUT /ledger/entries/{id}", user(s.handleUpdateEntry(false)))
	mux.Handle("DELETE /ledger/entries/{id}", user(s.handleDeleteEntry(false)))
	mux.Handle("GET /ledger/entries/by-day", user(s.handleEntriesByDay(false)))
	mux.Handle("GET /ledger/totals/by-day", user(s.handleTotalsByDay(false)))

	mux.Handle("GET /admin/ledger/entries", admin(s.handleListEntries(true)))
	mux.Handle("POST /admin/ledger/entries", admin(s.handleCreateEntry(true)))
	mux.Handle("PUT /admin/ledger/entries/{id}", admin(s.handleUpdateEntry(true)))
	mux.Handle("DELETE /admin/ledger/entries/{id}", admin(s.handleDeleteEntry(true)))
	mux.Handle("GET /admin/ledger/entries/by-day", admin(s.handleEntriesByDay(true)))
	mux.Handle("GET /admin/ledger/totals/by-day", admin(s.handleTotalsByDay(true)))

	mux.Handle("GET /admin/report", admin(s.handleAdminReport))
	mux.Handle("GET /admin/report/weekly-comparison", admin(s.handleWeeklyComparison))
	mux.Handle("GET /admin/report/user-averages", admin(s.handleUserAverages))
	mux.Handle("GET /admin/report/moving-average", admin(s.handleMovingAverage))

	var h http.Handler = mux
	if s.limiter != nil {
		h = s.limiter.middleware(h)
	}
	return withNoCache(s.loggingMiddleware(h))
}
