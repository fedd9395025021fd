package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/websap/backend/internal/util"
)

// ErrInvalidRule is wrapped by every SecurityRule validation failure.
var ErrInvalidRule = errors.New("regla inválida")

// RuleTarget selects which part of a request a rule inspects.
type RuleTarget string

const (
	TargetURL        RuleTarget = "url"
	TargetUserAgent  RuleTarget = "userAgent"
	TargetIP         RuleTarget = "ip"
	TargetHeader     RuleTarget = "header"
	TargetQueryParam RuleTarget = "queryParam"
)

// ValidTarget reports whether t is a known rule target.
func ValidTarget(t RuleTarget) bool {
	switch t {
	case TargetURL, TargetUserAgent, TargetIP, TargetHeader, TargetQueryParam:
		return true
	}
	return false
}

// RuleAction is what the gatekeeper does with a request that matches.
type RuleAction string

const (
	ActionBlock     RuleAction = "block"
	ActionChallenge RuleAction = "challenge"
	ActionLog       RuleAction = "log"
	ActionRedirect  RuleAction = "redirect"
)

// ValidAction reports whether a is a known rule action.
func ValidAction(a RuleAction) bool {
	switch a {
	case ActionBlock, ActionChallenge, ActionLog, ActionRedirect:
		return true
	}
	return false
}

// SecurityRule is a configurable request pattern evaluated by the gatekeeper
// on every inbound request while IsActive.
//
// Header and query-param rules name the inspected field in TargetName; the
// Pattern only ever holds the value to match.
type SecurityRule struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"uniqueIndex;size:191;not null"`
	Pattern     string     `json:"pattern" gorm:"size:512;not null"`
	PatternType RuleTarget `json:"patternType" gorm:"size:16;index;not null"`
	TargetName  string     `json:"targetName,omitempty" gorm:"size:191"`
	Action      RuleAction `json:"action" gorm:"size:16;index;not null"`
	RedirectTo  string     `json:"redirectTo,omitempty" gorm:"size:512"`
	RiskScore   int        `json:"riskScore"`
	IsRegex     bool       `json:"isRegex"`
	IsActive    bool       `json:"isActive" gorm:"index"`
	Description string     `json:"description" gorm:"type:text"`
	UpdatedBy   *uint      `json:"updatedBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Normalize fills defaults and converts legacy "name:value" header/query
// patterns into the explicit TargetName/Pattern pair.
func (r *SecurityRule) Normalize() {
	if r.PatternType == "" {
		r.PatternType = TargetURL
	}
	if (r.PatternType == TargetHeader || r.PatternType == TargetQueryParam) && r.TargetName == "" {
		if name, value, ok := strings.Cut(r.Pattern, ":"); ok {
			r.TargetName = strings.TrimSpace(name)
			r.Pattern = value
		}
	}
	if r.Action == ActionRedirect && r.RedirectTo == "" {
		r.RedirectTo = "/"
	}
	if r.Name == "" {
		name := fmt.Sprintf("%s:%s:%s", r.Action, r.PatternType, r.Pattern)
		if r.TargetName != "" {
			name = fmt.Sprintf("%s:%s[%s]:%s", r.Action, r.PatternType, r.TargetName, r.Pattern)
		}
		r.Name = util.Truncate(name, 191)
	}
}

// Validate checks the rule invariants. Call Normalize first.
func (r *SecurityRule) Validate() error {
	if r.Pattern == "" || r.Action == "" {
		return fmt.Errorf("%w: debe contener pattern y action", ErrInvalidRule)
	}
	if !ValidAction(r.Action) {
		return fmt.Errorf("%w: acción desconocida %q", ErrInvalidRule, r.Action)
	}
	if !ValidTarget(r.PatternType) {
		return fmt.Errorf("%w: patternType desconocido %q", ErrInvalidRule, r.PatternType)
	}
	if (r.PatternType == TargetHeader || r.PatternType == TargetQueryParam) && r.TargetName == "" {
		return fmt.Errorf("%w: las reglas %s requieren targetName", ErrInvalidRule, r.PatternType)
	}
	if r.RiskScore < 0 || r.RiskScore > 100 {
		return fmt.Errorf("%w: riskScore debe estar entre 0 y 100", ErrInvalidRule)
	}
	if r.IsRegex {
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return fmt.Errorf("%w: expresión regular inválida: %v", ErrInvalidRule, err)
		}
	}
	return nil
}
