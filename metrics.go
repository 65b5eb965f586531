package main

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricRankPlansTotal   = "rank_plans_total"
	MetricRankItemsTotal   = "rank_items_total"
	MetricRankPlanDuration = "rank_plan_duration_seconds"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics counts ranking plans per source. The atomics back /health, the
// Prometheus collectors back /metrics.
type Metrics struct {
	start time.Time

	version   string
	commit    string
	buildDate string

	plansOK     atomic.Int64
	plansFailed atomic.Int64
	itemsRanked atomic.Int64

	lastItems     atomic.Int64
	lastLatencyUs atomic.Int64
	lastAtMs      atomic.Int64

	plans    *prometheus.CounterVec
	items    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(start time.Time, version, commit, buildDate string) *Metrics {
	return &Metrics{
		start:     start,
		version:   version,
		commit:    commit,
		buildDate: buildDate,
		plans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankPlansTotal,
				Help: "Total number of ranking plans by source and status",
			},
			[]string{"source", "status"},
		),
		items: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRankItemsTotal,
				Help: "Total number of items ranked by source",
			},
			[]string{"source"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricRankPlanDuration,
				Help:    "Histogram of full ranking plan duration in seconds by source",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"source"},
		),
	}
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.plans, m.items, m.duration}
}

// Register registers all collectors with reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObservePlan records one ranking plan run over n items. Every plan counts
// once, whether it succeeded or not.
func (m *Metrics) ObservePlan(source string, n int, took time.Duration, err error) {
	m.duration.WithLabelValues(source).Observe(took.Seconds())
	if err != nil {
		m.ObserveRejected(source)
		return
	}
	m.plansOK.Add(1)
	m.itemsRanked.Add(int64(n))
	m.plans.WithLabelValues(source, StatusSuccess).Inc()
	m.items.WithLabelValues(source).Add(float64(n))

	m.lastItems.Store(int64(n))
	m.lastLatencyUs.Store(took.Microseconds())
	m.lastAtMs.Store(time.Now().UnixMilli())
}

// ObserveRejected records a failed plan, including requests refused before
// any ranking ran.
func (m *Metrics) ObserveRejected(source string) {
	m.plansFailed.Add(1)
	m.plans.WithLabelValues(source, StatusFailure).Inc()
}

func (m *Metrics) Snapshot() map[string]any {
	uptime := time.Since(m.start)

	return map[string]any{
		"ok": true,

		"uptime_ms": uptime.Milliseconds(),
		"uptime":    uptime.String(),

		"build": map[string]any{
			"version":    m.version,
			"commit":     m.commit,
			"build_date": m.buildDate,
		},

		"ranking": map[string]any{
			"plans_ok_total":     m.plansOK.Load(),
			"plans_failed_total": m.plansFailed.Load(),
			"items_ranked_total": m.itemsRanked.Load(),
			"last_items":         m.lastItems.Load(),
			"last_latency_us":    m.lastLatencyUs.Load(),
			"last_at_unix_ms":    m.lastAtMs.Load(),
		},
	}
}
