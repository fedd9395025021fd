package security

import "strings"

// ChallengeThreshold is the score at which a client should be challenged.
const ChallengeThreshold = 30

const (
	urlRiskWeight       = 20
	userAgentRiskWeight = 15
)

var suspiciousURLPatterns = []string{
	"wp-",
	"wordpress",
	"setup-config",
	"admin",
	"login",
	".env",
	"config",
	"install",
	"phpMyAdmin",
	"phpmyadmin",
	"myadmin",
	"mysql",
	"sql",
	"database",
	"console",
	"shell",
	"cmd",
	"xmlrpc",
}

var scannerUserAgents = []string{
	"zgrab",
	"bot",
	"crawler",
	"scanner",
	"nikto",
	"nmap",
	"masscan",
	"nuclei",
	"dirbuster",
	"gobuster",
	"wpscan",
	"sqlmap",
	"burp",
}

// ChallengeInput is what a client reports about a request it wants scored.
type ChallengeInput struct {
	IP        string `json:"ip"`
	UserAgent string `json:"userAgent"`
	URL       string `json:"url"`
}

// Assessment is the outcome of Score.
type Assessment struct {
	RiskScore       int  `json:"riskScore"`
	ShouldChallenge bool `json:"shouldChallenge"`
}

// Score rates a request by its URL and user agent. Each list contributes at
// most once. The IP does not influence the score.
func Score(in ChallengeInput) Assessment {
	score := 0
	if containsAny(in.URL, suspiciousURLPatterns) {
		score += urlRiskWeight
	}
	if containsAny(strings.ToLower(in.UserAgent), scannerUserAgents) {
		score += userAgentRiskWeight
	}
	return Assessment{RiskScore: score, ShouldChallenge: score >= ChallengeThreshold}
}

func containsAny(s string, patterns []string) bool {
	if s == "" {
		return false
	}
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
