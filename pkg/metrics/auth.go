package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// AuthMetrics records login traffic and live session counts.
type AuthMetrics struct {
	loginAttempts *prometheus.CounterVec
	sessionEvents *prometheus.CounterVec
	activeUsers   prometheus.Gauge
}

// NewAuthMetrics registers the auth metrics on the provided registerer.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	loginAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_login_attempts",
		Help: "Login attempts partitioned by outcome.",
	}, []string{"outcome"})
	sessionEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_session_events",
		Help: "Session lifecycle events partitioned by kind.",
	}, []string{"kind"})
	activeUsers := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "auth_active_sessions",
		Help: "Sessions currently authenticated against this instance.",
	})
	reg.MustRegister(loginAttempts, sessionEvents, activeUsers)
	return &AuthMetrics{
		loginAttempts: loginAttempts,
		sessionEvents: sessionEvents,
		activeUsers:   activeUsers,
	}
}

// ObserveLogin counts a login attempt with the given outcome ("success"/"failure").
func (a *AuthMetrics) ObserveLogin(outcome string) {
	if a == nil || a.loginAttempts == nil {
		return
	}
	a.loginAttempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveSessionEvent counts a session lifecycle event ("signed_in"/"signed_out").
func (a *AuthMetrics) ObserveSessionEvent(kind string) {
	if a == nil || a.sessionEvents == nil {
		return
	}
	a.sessionEvents.WithLabelValues(normalizeLabel(kind)).Inc()
}

// SessionOpened bumps the active session gauge.
func (a *AuthMetrics) SessionOpened() {
	if a == nil || a.activeUsers == nil {
		return
	}
	a.activeUsers.Inc()
}

// SessionClosed drops the active session gauge.
func (a *AuthMetrics) SessionClosed() {
	if a == nil || a.activeUsers == nil {
		return
	}
	a.activeUsers.Dec()
}

func normalizeLabel(value string) string {
	trimmed := strings.TrimSpace(strings.ToLower(value))
	if trimmed == "" {
		return "unknown"
	}
	return strings.ReplaceAll(trimmed, " ", "_")
}
