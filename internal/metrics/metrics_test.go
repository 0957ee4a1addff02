package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ProgramLoaded(false, SourceHost)
	m.ProgramLoaded(false, SourceHost)
	m.ProgramLoaded(true, SourceGuest)
	m.ProgramFailed(true)
	m.HostFallback()
	m.Rebuild()
	m.ProgramSaved()
	m.WriteError()

	assert.InDelta(t, 2, promtest.ToFloat64(m.programsLoaded.WithLabelValues("graphics", SourceHost)), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(m.programsLoaded.WithLabelValues("compute", SourceGuest)), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(m.programsFailed.WithLabelValues("compute")), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(m.hostFallbacks), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(m.rebuilds), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(m.programsSaved), 0)
	assert.InDelta(t, 1, promtest.ToFloat64(m.writeErrors), 0)

	n, err := promtest.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *Metrics
	assert.NotPanics(t, func() {
		m.ProgramLoaded(true, SourceHost)
		m.ProgramFailed(false)
		m.HostFallback()
		m.Rebuild()
		m.ProgramSaved()
		m.WriteError()
	})
}
