package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectAttackPattern(t *testing.T) {
	p, ok := DetectAttackPattern("/wp-admin/setup-config.php")
	assert.True(t, ok)
	assert.Equal(t, "wp-admin", p, "first pattern in list order wins")

	p, ok = DetectAttackPattern("/.env")
	assert.True(t, ok)
	assert.Equal(t, ".env", p)

	p, ok = DetectAttackPattern("/xmlrpc.php")
	assert.True(t, ok)
	assert.Equal(t, "xmlrpc.php", p)

	_, ok = DetectAttackPattern("/api/platos")
	assert.False(t, ok)
}

func TestPatternRiskScore(t *testing.T) {
	assert.Equal(t, 60, PatternRiskScore("wp-admin"))
	assert.Equal(t, 60, PatternRiskScore("setup-config.php"))
	assert.Equal(t, 60, PatternRiskScore(".env"))
	assert.Equal(t, 40, PatternRiskScore("phpmyadmin"))
	assert.Equal(t, 40, PatternRiskScore(`<script[^>]*>`))
	assert.Equal(t, 0, PatternRiskScore(""))
}

func TestIsKnownScan(t *testing.T) {
	assert.True(t, IsKnownScan("wp-login"))
	assert.True(t, IsKnownScan(".env"))
	assert.False(t, IsKnownScan("sql"))
	assert.False(t, IsKnownScan(""))
}
