package metrics

import "github.com/prometheus/client_golang/prometheus"

// Login outcomes.
const (
	LoginSuccess        = "success"
	LoginInvalid        = "invalid_credentials"
	LoginError          = "error"
	LoginLegacyUpgraded = "legacy_upgraded"
)

// AuthMetrics counts login attempts and throttled requests.
type AuthMetrics struct {
	logins      *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
}

// NewAuthMetrics registers the auth metrics on reg. A nil registerer yields
// a no-op recorder.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Login attempts by outcome.",
	}, []string{"outcome"})
	rateLimited := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the login rate limiter.",
	}, []string{"scope"})
	reg.MustRegister(logins, rateLimited)
	return &AuthMetrics{logins: logins, rateLimited: rateLimited}
}

// IncLogin counts one login attempt with the given outcome.
func (a *AuthMetrics) IncLogin(outcome string) {
	if a == nil || a.logins == nil {
		return
	}
	a.logins.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncRateLimited counts one throttled request for scope ("ip" or "identifier").
func (a *AuthMetrics) IncRateLimited(scope string) {
	if a == nil || a.rateLimited == nil {
		return
	}
	a.rateLimited.WithLabelValues(normalizeLabel(scope)).Inc()
}
