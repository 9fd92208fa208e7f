package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveStats("ok")
	m.ObserveSource("structured")
	m.ObserveLeaderboard(0.5, 2)
}

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveStats("ok")
	m.ObserveStats("ok")
	m.ObserveStats("unavailable")
	m.ObserveSource("legacy_single")
	m.ObserveLeaderboard(0.1, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StatsComputations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatsComputations.WithLabelValues("unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnswerSources.WithLabelValues("legacy_single")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LeaderboardSkipped))
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	New(reg)
	families, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
