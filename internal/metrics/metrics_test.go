package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { Register(reg) })

	before := testutil.ToFloat64(securityBlockedTotal.WithLabelValues("rule"))
	IncSecurityBlocked("rule")
	assert.Equal(t, before+1, testutil.ToFloat64(securityBlockedTotal.WithLabelValues("rule")))

	before = testutil.ToFloat64(securityEvaluatedTotal)
	IncSecurityEvaluated()
	assert.Equal(t, before+1, testutil.ToFloat64(securityEvaluatedTotal))

	before = testutil.ToFloat64(securityStepFailuresTotal.WithLabelValues("blocklist"))
	IncSecurityStepFailure("blocklist")
	assert.Equal(t, before+1, testutil.ToFloat64(securityStepFailuresTotal.WithLabelValues("blocklist")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
