package security

import "github.com/websap/backend/internal/models"

// Action is the gatekeeper's verdict for a request.
type Action int

const (
	Allow Action = iota
	Block
	Redirect
	Challenge
	Flag
)

func (a Action) String() string {
	switch a {
	case Allow:
		return "allow"
	case Block:
		return "block"
	case Redirect:
		return "redirect"
	case Challenge:
		return "challenge"
	case Flag:
		return "flag"
	}
	return "unknown"
}

// Terminal reports whether the request must not reach the route handler.
func (a Action) Terminal() bool {
	return a == Block || a == Redirect
}

// Reason labels which step produced a Decision.
const (
	ReasonBlocklist     = "blocklist"
	ReasonRule          = "rule"
	ReasonAttackPattern = "attack_pattern"
	ReasonStepFailure   = "step_failure"
)

// Decision is the result of evaluating one request.
type Decision struct {
	Action     Action
	Reason     string
	Rule       *models.SecurityRule
	Pattern    string
	RiskScore  int
	RedirectTo string
}

func allow() Decision { return Decision{Action: Allow} }

// FailurePolicy decides what a failed step means for the request.
type FailurePolicy int

const (
	// FailOpen treats a failed step as having found nothing.
	FailOpen FailurePolicy = iota
	// FailClosed denies the request when the step fails.
	FailClosed
)

func (p FailurePolicy) String() string {
	if p == FailClosed {
		return "fail-closed"
	}
	return "fail-open"
}

// Policy holds the failure policy of each step.
type Policy struct {
	Blocklist FailurePolicy
	Rules     FailurePolicy
}

// DefaultPolicy keeps the service available when a store misbehaves.
var DefaultPolicy = Policy{Blocklist: FailOpen, Rules: FailOpen}

// ruleDecision maps a matched rule to the gatekeeper action.
func ruleDecision(rule models.SecurityRule) Decision {
	r := rule
	d := Decision{Reason: ReasonRule, Rule: &r, Pattern: rule.Pattern, RiskScore: rule.RiskScore}
	switch rule.Action {
	case models.ActionBlock:
		d.Action = Block
	case models.ActionRedirect:
		d.Action = Redirect
		d.RedirectTo = rule.RedirectTo
		if d.RedirectTo == "" {
			d.RedirectTo = "/"
		}
	case models.ActionChallenge:
		d.Action = Challenge
	default:
		d.Action = Flag
	}
	return d
}
