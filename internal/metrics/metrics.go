// Package metrics exposes Prometheus collectors for invites, provisioning and
// report traffic. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eatwise"

// Metrics groups the application collectors.
type Metrics struct {
	invitesSent         prometheus.Counter
	invitesRejected     *prometheus.CounterVec
	notificationFailed  prometheus.Counter
	provisioningRuns    prometheus.Counter
	provisioningResults *prometheus.CounterVec
	reportsServed       *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		invitesSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invites_sent_total",
			Help:      "Invites persisted and emailed.",
		}),
		invitesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invites_rejected_total",
			Help:      "Invites rejected before being persisted.",
		}, []string{"reason"}),
		notificationFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invite_notification_failures_total",
			Help:      "Invites persisted whose email could not be delivered.",
		}),
		provisioningRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisioning_runs_total",
			Help:      "Completed provisioning sweeps.",
		}),
		provisioningResults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provisioning_invites_total",
			Help:      "Invites handled by the provisioning sweep, by outcome.",
		}, []string{"outcome"}),
		reportsServed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_reports_total",
			Help:      "Admin reports computed, by report name.",
		}, []string{"report"}),
	}
}

// InviteSent records a persisted and delivered invite.
func (m *Metrics) InviteSent() {
	if m == nil {
		return
	}
	m.invitesSent.Inc()
}

// InviteRejected records an invite refused for reason.
func (m *Metrics) InviteRejected(reason string) {
	if m == nil {
		return
	}
	m.invitesRejected.WithLabelValues(reason).Inc()
}

// NotificationFailed records an invite email that could not be sent.
func (m *Metrics) NotificationFailed() {
	if m == nil {
		return
	}
	m.notificationFailed.Inc()
}

// ProvisioningRun records one finished sweep and its per-invite outcomes.
func (m *Metrics) ProvisioningRun(provisioned, skipped, failed int) {
	if m == nil {
		return
	}
	m.provisioningRuns.Inc()
	m.provisioningResults.WithLabelValues("provisioned").Add(float64(provisioned))
	m.provisioningResults.WithLabelValues("skipped").Add(float64(skipped))
	m.provisioningResults.WithLabelValues("failed").Add(float64(failed))
}

// ReportServed records one computed admin report.
func (m *Metrics) ReportServed(report string) {
	if m == nil {
		return
	}
	m.reportsServed.WithLabelValues(report).Inc()
}
