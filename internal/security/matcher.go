package security

import (
	"regexp"
	"strings"
	"sync"

	"github.com/websap/backend/internal/logger"
	"github.com/websap/backend/internal/models"
)

const maxCachedPatterns = 512

// Matcher tests rules against requests. Compiled regular expressions are
// cached by source; a pattern that fails to compile is cached as a miss and
// never matches.
type Matcher struct {
	mu    sync.RWMutex
	cache map[string]*regexp.Regexp
}

// NewMatcher returns an empty Matcher. The zero value is not usable.
func NewMatcher() *Matcher {
	return &Matcher{cache: make(map[string]*regexp.Regexp)}
}

// Content returns the part of req the rule inspects.
func Content(rule models.SecurityRule, req Request) string {
	switch rule.PatternType {
	case models.TargetURL, "":
		return req.URL
	case models.TargetUserAgent:
		return req.UserAgent
	case models.TargetIP:
		return req.IP
	case models.TargetHeader:
		if req.Header == nil || rule.TargetName == "" {
			return ""
		}
		return req.Header.Get(rule.TargetName)
	case models.TargetQueryParam:
		if req.Query == nil || rule.TargetName == "" {
			return ""
		}
		return req.Query.Get(rule.TargetName)
	}
	return ""
}

// Match reports whether rule matches req.
func (m *Matcher) Match(rule models.SecurityRule, req Request) bool {
	content := Content(rule, req)
	if content == "" || rule.Pattern == "" {
		return false
	}
	if !rule.IsRegex {
		return strings.Contains(content, rule.Pattern)
	}
	re := m.compile(rule.Pattern)
	if re == nil {
		return false
	}
	return re.MatchString(content)
}

// FirstMatch returns the first active rule, in slice order, that matches req.
func (m *Matcher) FirstMatch(rules []models.SecurityRule, req Request) (models.SecurityRule, bool) {
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		if m.Match(r, req) {
			return r, true
		}
	}
	return models.SecurityRule{}, false
}

func (m *Matcher) compile(pattern string) *regexp.Regexp {
	m.mu.RLock()
	re, ok := m.cache[pattern]
	m.mu.RUnlock()
	if ok {
		return re
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		logger.Component("security").WithError(err).WithField("pattern", pattern).Warn("invalid rule regex, treating as non-matching")
		re = nil
	}

	m.mu.Lock()
	if len(m.cache) >= maxCachedPatterns {
		m.cache = make(map[string]*regexp.Regexp)
	}
	m.cache[pattern] = re
	m.mu.Unlock()
	return re
}
