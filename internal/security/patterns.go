package security

import "strings"

// attackPatterns are URL fragments that only show up when somebody scans for
// software this server does not run. Checked in order when no rule matched.
var attackPatterns = []string{
	"wp-admin",
	"setup-config.php",
	"wordpress",
	"phpmyadmin",
	".env",
	"xmlrpc.php",
	"wp-login",
	"admin/login",
	"administrator",
	"admin.php",
	"myadmin",
	"mysql",
	"sql",
	"database",
	"console",
	"shell",
	"cmd",
	"config",
}

var highSeverityPatterns = map[string]struct{}{
	"wp-admin":         {},
	"setup-config.php": {},
	".env":             {},
}

// knownScans are the patterns of automated scans for well-known software.
// Reports matching them raise an alert.
var knownScans = map[string]struct{}{
	"wp-admin":         {},
	"setup-config.php": {},
	"wordpress":        {},
	"phpmyadmin":       {},
	".env":             {},
	"xmlrpc.php":       {},
	"wp-login":         {},
}

// IsKnownScan reports whether pattern belongs to a well-known scanner.
func IsKnownScan(pattern string) bool {
	_, ok := knownScans[pattern]
	return ok
}

// DetectAttackPattern returns the first known attack pattern contained in url.
func DetectAttackPattern(url string) (string, bool) {
	for _, p := range attackPatterns {
		if strings.Contains(url, p) {
			return p, true
		}
	}
	return "", false
}

// PatternRiskScore is the score stored with a suspicious request: 60 for the
// high severity scans, 40 for any other pattern and 0 when nothing matched.
func PatternRiskScore(pattern string) int {
	if pattern == "" {
		return 0
	}
	if _, ok := highSeverityPatterns[pattern]; ok {
		return 60
	}
	return 40
}
