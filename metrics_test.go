package main

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	c, err := vec.GetMetricWithLabelValues(labels...)
	require.NoError(t, err)
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestMetrics_Register(t *testing.T) {
	t.Parallel()

	m := NewMetrics(time.Now(), "v", "c", "d")
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	m.ObservePlan(SourceCLI, 5, time.Millisecond, nil)

	families, err := reg.Gather()
	require.NoError(t, err)
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	assert.True(t, found[MetricRankPlansTotal])
	assert.True(t, found[MetricRankItemsTotal])
	assert.True(t, found[MetricRankPlanDuration])

	assert.Error(t, NewMetrics(time.Now(), "", "", "").Register(reg), "duplicate registration fails")
}

func TestMetrics_ObservePlan(t *testing.T) {
	t.Parallel()

	m := NewMetrics(time.Now(), "v", "c", "d")
	m.ObservePlan(SourceRequest, 10, 2*time.Millisecond, nil)
	m.ObservePlan(SourceRequest, 4, time.Millisecond, nil)
	m.ObservePlan(SourceDataset, 7, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, counterValue(t, m.plans, SourceRequest, StatusSuccess))
	assert.Equal(t, 1.0, counterValue(t, m.plans, SourceDataset, StatusFailure))
	assert.Equal(t, 14.0, counterValue(t, m.items, SourceRequest))

	snap := m.Snapshot()
	r := snap["ranking"].(map[string]any)
	assert.EqualValues(t, 2, r["plans_ok_total"])
	assert.EqualValues(t, 1, r["plans_failed_total"])
	assert.EqualValues(t, 14, r["items_ranked_total"])
	assert.EqualValues(t, 4, r["last_items"])

	build := snap["build"].(map[string]any)
	assert.Equal(t, "v", build["version"])
}

func TestMetrics_ObserveRejected(t *testing.T) {
	t.Parallel()

	m := NewMetrics(time.Now(), "v", "c", "d")
	m.ObservePlan(SourceRequest, 3, time.Millisecond, nil)
	m.ObservePlan(SourceRequest, 3, time.Millisecond, errors.New("boom"))
	m.ObserveRejected(SourceRequest)

	assert.Equal(t, 1.0, counterValue(t, m.plans, SourceRequest, StatusSuccess))
	assert.Equal(t, 2.0, counterValue(t, m.plans, SourceRequest, StatusFailure))
	assert.EqualValues(t, 2, m.plansFailed.Load())
	assert.EqualValues(t, 3, m.itemsRanked.Load(), "failures rank nothing")
}
