package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservations(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.LookupObserved("name", "resolved")
	m.LookupObserved("name", "resolved")
	m.LookupObserved("smiles", "error")
	m.RetryObserved()
	m.VerdictObserved("validated")
	m.RunObserved(1.5)

	expected := `
# HELP chemreconcile_lookups_total External database lookups by namespace and outcome.
# TYPE chemreconcile_lookups_total counter
chemreconcile_lookups_total{namespace="name",outcome="resolved"} 2
chemreconcile_lookups_total{namespace="smiles",outcome="error"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "chemreconcile_lookups_total"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.lookupRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal))
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.LookupObserved("name", "resolved")
	m.RetryObserved()
	m.VerdictObserved("validated")
	m.RunObserved(0.1)
}
