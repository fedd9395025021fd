package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	securityEvaluatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "websap_security_requests_total",
		Help: "Total number of requests evaluated by the security gatekeeper",
	})
	securityBlockedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "websap_security_blocked_total",
		Help: "Total number of requests denied by the security gatekeeper",
	}, []string{"reason"})
	securityRedirectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "websap_security_redirected_total",
		Help: "Total number of requests redirected by a security rule",
	})
	securityChallengedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "websap_security_challenged_total",
		Help: "Total number of requests marked for a challenge by a security rule",
	})
	securityFlaggedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "websap_security_flagged_total",
		Help: "Total number of requests logged as suspicious without being blocked",
	}, []string{"source"})
	securityStepFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "websap_security_step_failures_total",
		Help: "Total number of security check steps that failed (store errors, timeouts, panics)",
	}, []string{"step"})
	ipBlocksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "websap_ip_blocks_total",
		Help: "Total number of IP block records created or refreshed by administrators",
	})
	rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "websap_rate_limited_total",
		Help: "Total number of requests rejected by the rate limiter",
	}, []string{"scope"})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		securityEvaluatedTotal,
		securityBlockedTotal,
		securityRedirectedTotal,
		securityChallengedTotal,
		securityFlaggedTotal,
		securityStepFailuresTotal,
		ipBlocksTotal,
		rateLimitedTotal,
	)
}

// IncSecurityEvaluated increments the evaluated requests counter.
func IncSecurityEvaluated() { securityEvaluatedTotal.Inc() }

// IncSecurityBlocked increments the denied requests counter for reason.
func IncSecurityBlocked(reason string) { securityBlockedTotal.WithLabelValues(reason).Inc() }

// IncSecurityRedirected increments the redirected requests counter.
func IncSecurityRedirected() { securityRedirectedTotal.Inc() }

// IncSecurityChallenged increments the challenged requests counter.
func IncSecurityChallenged() { securityChallengedTotal.Inc() }

// IncSecurityFlagged increments the flagged requests counter for source.
func IncSecurityFlagged(source string) { securityFlaggedTotal.WithLabelValues(source).Inc() }

// IncSecurityStepFailure increments the failure counter for a gatekeeper step.
func IncSecurityStepFailure(step string) { securityStepFailuresTotal.WithLabelValues(step).Inc() }

// IncIPBlocks increments the administrative IP block counter.
func IncIPBlocks() { ipBlocksTotal.Inc() }

// IncRateLimited increments the rate limiter rejection counter for scope.
func IncRateLimited(scope string) { rateLimitedTotal.WithLabelValues(scope).Inc() }
