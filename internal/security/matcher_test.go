package security

import (
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/websap/backend/internal/models"
)

func testRequest() Request {
	h := http.Header{}
	h.Set("X-Debug", "enabled-by-attacker")
	return Request{
		IP:        "10.0.0.7",
		URL:       "/api/platos?id=1' or 1=1",
		Path:      "/api/platos",
		Method:    http.MethodGet,
		UserAgent: "Mozilla/5.0 (zgrab)",
		Header:    h,
		Query:     url.Values{"debug": []string{"true"}},
	}
}

func TestMatcher_Targets(t *testing.T) {
	m := NewMatcher()
	req := testRequest()

	tests := []struct {
		name string
		rule models.SecurityRule
		want bool
	}{
		{"url literal", models.SecurityRule{PatternType: models.TargetURL, Pattern: "/api/platos"}, true},
		{"url regex sqli", models.SecurityRule{PatternType: models.TargetURL, IsRegex: true, Pattern: `['"][\s]*or[\s]*['"]?[\s]*\d+[\s]*=[\s]*\d+`}, true},
		{"user agent regex", models.SecurityRule{PatternType: models.TargetUserAgent, IsRegex: true, Pattern: "zgrab|nikto"}, true},
		{"user agent miss", models.SecurityRule{PatternType: models.TargetUserAgent, Pattern: "sqlmap"}, false},
		{"ip literal", models.SecurityRule{PatternType: models.TargetIP, Pattern: "10.0.0."}, true},
		{"header by name", models.SecurityRule{PatternType: models.TargetHeader, TargetName: "x-debug", Pattern: "attacker"}, true},
		{"header missing", models.SecurityRule{PatternType: models.TargetHeader, TargetName: "X-Other", Pattern: "attacker"}, false},
		{"query param", models.SecurityRule{PatternType: models.TargetQueryParam, TargetName: "debug", Pattern: "true"}, true},
		{"query param without name", models.SecurityRule{PatternType: models.TargetQueryParam, Pattern: "true"}, false},
		{"empty target defaults to url", models.SecurityRule{Pattern: "platos"}, true},
		{"invalid regex never matches", models.SecurityRule{PatternType: models.TargetURL, IsRegex: true, Pattern: "(["}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.rule, req))
		})
	}
}

func TestMatcher_FirstMatchOrderAndActive(t *testing.T) {
	m := NewMatcher()
	req := testRequest()
	rules := []models.SecurityRule{
		{Name: "inactive", PatternType: models.TargetURL, Pattern: "platos", IsActive: false},
		{Name: "first", PatternType: models.TargetURL, Pattern: "platos", IsActive: true},
		{Name: "second", PatternType: models.TargetURL, Pattern: "api", IsActive: true},
	}
	got, ok := m.FirstMatch(rules, req)
	assert.True(t, ok)
	assert.Equal(t, "first", got.Name)

	_, ok = m.FirstMatch(rules[:1], req)
	assert.False(t, ok)
}

func TestMatcher_ConcurrentRegexCache(t *testing.T) {
	m := NewMatcher()
	req := testRequest()
	rule := models.SecurityRule{PatternType: models.TargetUserAgent, IsRegex: true, Pattern: "zgrab"}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.True(t, m.Match(rule, req))
		}()
	}
	wg.Wait()
}
