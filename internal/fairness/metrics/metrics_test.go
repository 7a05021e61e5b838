package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"fairdash/internal/fairness/models"
)

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveQuery(models.PanelMeasures, 3, time.Millisecond)
		m.IncrementQueryErrors(models.PanelMeasures)
		m.ObserveRender(models.PanelStates, OutcomeOK, time.Millisecond)
		m.IncrementCacheHits()
		m.IncrementCacheMisses()
		m.IncrementCacheErrors()
		m.IncrementCacheBypassed()
		m.IncrementFilterRejections(models.PanelStates, "year")
		m.SetActiveSessions(2)
	})
}

func TestCountersUseOwnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRender(models.PanelDemographics, OutcomeNoData, 5*time.Millisecond)
	m.ObserveRender(models.PanelDemographics, OutcomeNoData, 5*time.Millisecond)
	m.IncrementCacheHits()
	m.SetActiveSessions(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Renders.WithLabelValues("demographics", OutcomeNoData)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.ActiveSessions))

	// a second registry accepts the same names
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}
