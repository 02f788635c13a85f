package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	loginsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "togglekeep_logins_total",
		Help: "Total number of successful logins",
	})
	loginFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "togglekeep_login_failures_total",
		Help: "Total number of rejected login attempts",
	})
	auditRecordsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "togglekeep_audit_records_total",
		Help: "Total number of audit records written",
	})
	togglesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "togglekeep_flag_toggles_total",
		Help: "Total number of feature flag toggle operations",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(loginsTotal, loginFailuresTotal, auditRecordsTotal, togglesTotal)
}

// IncLogin increments the successful logins counter.
func IncLogin() { loginsTotal.Inc() }

// IncLoginFailure increments the rejected logins counter.
func IncLoginFailure() { loginFailuresTotal.Inc() }

// IncAuditRecord increments the written audit records counter.
func IncAuditRecord() { auditRecordsTotal.Inc() }

// IncToggle increments the toggle operations counter.
func IncToggle() { togglesTotal.Inc() }
