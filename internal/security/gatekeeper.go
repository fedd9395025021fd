package security

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/websap/backend/internal/logger"
	"github.com/websap/backend/internal/metrics"
	"github.com/websap/backend/internal/models"
	"github.com/websap/backend/internal/util"
)

var (
	// ErrStepTimeout is returned when a store call exceeds the step timeout.
	ErrStepTimeout = errors.New("security step timed out")
	// ErrStepPanic is returned when a store call panics.
	ErrStepPanic = errors.New("security step panicked")
)

const (
	// ChallengeHeader is set on responses to requests that matched a challenge rule.
	ChallengeHeader = "X-Security-Challenge"
	// DecisionKey holds the Decision in the gin context for downstream handlers.
	DecisionKey = "securityDecision"

	defaultStepTimeout = 2 * time.Second
)

// Gatekeeper checks every inbound request against the blocklist, the
// configured rules and the static attack patterns, in that order.
type Gatekeeper struct {
	rules     RuleStore
	blocklist Blocklist
	log       RequestLog
	matcher   *Matcher
	policy    Policy
	timeout   time.Duration
}

// Option configures a Gatekeeper.
type Option func(*Gatekeeper)

// WithPolicy overrides the per-step failure policy.
func WithPolicy(p Policy) Option {
	return func(g *Gatekeeper) { g.policy = p }
}

// WithStoreTimeout bounds every store call made while evaluating a request.
func WithStoreTimeout(d time.Duration) Option {
	return func(g *Gatekeeper) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// New builds a Gatekeeper. Any store may be nil, in which case its step is skipped.
func New(rules RuleStore, blocklist Blocklist, log RequestLog, opts ...Option) *Gatekeeper {
	g := &Gatekeeper{
		rules:     rules,
		blocklist: blocklist,
		log:       log,
		matcher:   NewMatcher(),
		policy:    DefaultPolicy,
		timeout:   defaultStepTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Evaluate decides what happens to req and records suspicious matches.
func (g *Gatekeeper) Evaluate(ctx context.Context, req Request) Decision {
	metrics.IncSecurityEvaluated()

	d := g.decide(ctx, req)
	switch d.Action {
	case Block:
		metrics.IncSecurityBlocked(d.Reason)
	case Redirect:
		metrics.IncSecurityRedirected()
	case Challenge:
		metrics.IncSecurityChallenged()
	case Flag:
		metrics.IncSecurityFlagged(d.Reason)
	}

	// Blocklist denials and redirects are not suspicious-request entries.
	if (d.Reason == ReasonRule && d.Action != Redirect) || d.Reason == ReasonAttackPattern {
		g.record(ctx, req, d)
	}
	return d
}

func (g *Gatekeeper) decide(ctx context.Context, req Request) Decision {
	if g.blocklist != nil {
		blocked, err := runStep(ctx, g.timeout, func(ctx context.Context) (bool, error) {
			return g.blocklist.IsBlocked(ctx, req.IP)
		})
		if err != nil {
			if d, stop := g.stepFailed("blocklist", g.policy.Blocklist, req, err); stop {
				return d
			}
		} else if blocked {
			logger.Component("security").WithFields(logrus.Fields{
				"ip":   req.IP,
				"path": util.SanitizePath(req.URL),
			}).Info("blocked IP rejected")
			return Decision{Action: Block, Reason: ReasonBlocklist}
		}
	}

	if g.rules != nil {
		rules, err := runStep(ctx, g.timeout, g.rules.ActiveRules)
		if err != nil {
			if d, stop := g.stepFailed("rules", g.policy.Rules, req, err); stop {
				return d
			}
		} else if rule, ok := g.matcher.FirstMatch(rules, req); ok {
			d := ruleDecision(rule)
			logger.Component("security").WithFields(logrus.Fields{
				"ip":     req.IP,
				"path":   util.SanitizePath(req.URL),
				"rule":   rule.Name,
				"action": d.Action.String(),
			}).Info("security rule matched")
			return d
		}
	}

	if pattern, ok := DetectAttackPattern(req.URL); ok {
		return Decision{Action: Flag, Reason: ReasonAttackPattern, Pattern: pattern, RiskScore: PatternRiskScore(pattern)}
	}
	return allow()
}

func (g *Gatekeeper) stepFailed(step string, policy FailurePolicy, req Request, err error) (Decision, bool) {
	metrics.IncSecurityStepFailure(step)
	logger.Component("security").WithError(err).WithFields(logrus.Fields{
		"step":   step,
		"policy": policy.String(),
		"ip":     req.IP,
	}).Error("security check failed")
	if policy == FailClosed {
		return Decision{Action: Block, Reason: ReasonStepFailure}, true
	}
	return Decision{}, false
}

func (g *Gatekeeper) record(ctx context.Context, req Request, d Decision) {
	if g.log == nil {
		return
	}
	entry := &models.SuspiciousRequest{
		URL:        util.Truncate(req.URL, 2048),
		IP:         req.IP,
		UserAgent:  util.Truncate(req.UserAgent, 512),
		Method:     req.Method,
		Headers:    EncodeHeaders(req.Header),
		RiskScore:  PatternRiskScore(d.Pattern),
		WasBlocked: d.Action == Block,
	}
	if d.Pattern != "" {
		p := d.Pattern
		entry.Pattern = &p
	}
	_, err := runStep(ctx, g.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.log.LogSuspicious(ctx, entry)
	})
	if err != nil {
		metrics.IncSecurityStepFailure("log")
		logger.Component("security").WithError(err).WithField("ip", req.IP).Warn("failed to record suspicious request")
	}
}

// Middleware adapts the Gatekeeper to gin.
func (g *Gatekeeper) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		d := g.Evaluate(c.Request.Context(), NewRequest(c.Request, c.ClientIP()))
		c.Set(DecisionKey, d)

		switch d.Action {
		case Block:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Acceso denegado"})
			return
		case Redirect:
			c.Redirect(http.StatusFound, d.RedirectTo)
			c.Abort()
			return
		case Challenge:
			c.Header(ChallengeHeader, "required")
		}
		c.Next()
	}
}

// runStep calls fn with a deadline and converts panics into errors. fn keeps
// running in the background if it ignores ctx, but the caller is released.
func runStep[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: %v", ErrStepPanic, r)}
			}
		}()
		v, err := fn(ctx)
		done <- result{val: v, err: err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrStepTimeout, ctx.Err())
	}
}

// EncodeHeaders serializes h as JSON with sensitive values redacted.
func EncodeHeaders(h http.Header) string {
	if len(h) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(util.SanitizeHeaders(h)); err != nil {
		return "{}"
	}
	return strings.TrimSpace(buf.String())
}
