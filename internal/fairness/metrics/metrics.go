package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fairdash/internal/fairness/models"
)

// Render outcomes, also used as the status field of render payloads.
const (
	OutcomeOK             = "ok"
	OutcomeNoData         = "no_data"
	OutcomeEmptySelection = "empty_selection"
	OutcomeError          = "error"
	OutcomeSuperseded     = "superseded"
)

type Metrics struct {
	QueryDuration    *prometheus.HistogramVec
	QueryRows        *prometheus.HistogramVec
	QueryErrors      *prometheus.CounterVec
	Renders          *prometheus.CounterVec
	RenderDuration   *prometheus.HistogramVec
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	CacheErrors      prometheus.Counter
	CacheBypassed    prometheus.Counter
	FilterRejections *prometheus.CounterVec
	ActiveSessions   prometheus.Gauge
}

// New creates and registers the fairness metrics on reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		QueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fairdash_query_duration_seconds",
			Help:    "Engine query latency by panel",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"panel"}),
		QueryRows: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fairdash_query_rows",
			Help:    "Rows returned per engine query by panel",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"panel"}),
		QueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fairdash_query_errors_total",
			Help: "Engine query failures by panel",
		}, []string{"panel"}),
		Renders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fairdash_renders_total",
			Help: "Panel renders by panel and outcome",
		}, []string{"panel", "outcome"}),
		RenderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fairdash_render_duration_seconds",
			Help:    "End-to-end panel render latency",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"panel"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "fairdash_query_cache_hits_total",
			Help: "Query results served from Redis",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "fairdash_query_cache_misses_total",
			Help: "Query results not found in Redis",
		}),
		CacheErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "fairdash_query_cache_errors_total",
			Help: "Redis errors while reading or writing query results",
		}),
		CacheBypassed: factory.NewCounter(prometheus.CounterOpts{
			Name: "fairdash_query_cache_bypassed_total",
			Help: "Queries sent straight to the engine while the cache breaker is open",
		}),
		FilterRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "fairdash_filter_rejections_total",
			Help: "Filter changes rejected because the value is not a valid option",
		}, []string{"panel", "field"}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fairdash_view_sessions",
			Help: "Current number of live view sessions",
		}),
	}
}

func (m *Metrics) ObserveQuery(panel models.PanelID, rows int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.QueryDuration.WithLabelValues(string(panel)).Observe(elapsed.Seconds())
	m.QueryRows.WithLabelValues(string(panel)).Observe(float64(rows))
}

func (m *Metrics) IncrementQueryErrors(panel models.PanelID) {
	if m == nil {
		return
	}
	m.QueryErrors.WithLabelValues(string(panel)).Inc()
}

func (m *Metrics) ObserveRender(panel models.PanelID, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Renders.WithLabelValues(string(panel), outcome).Inc()
	m.RenderDuration.WithLabelValues(string(panel)).Observe(elapsed.Seconds())
}

func (m *Metrics) IncrementCacheHits() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

func (m *Metrics) IncrementCacheMisses() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

func (m *Metrics) IncrementCacheErrors() {
	if m == nil {
		return
	}
	m.CacheErrors.Inc()
}

func (m *Metrics) IncrementCacheBypassed() {
	if m == nil {
		return
	}
	m.CacheBypassed.Inc()
}

func (m *Metrics) IncrementFilterRejections(panel models.PanelID, field string) {
	if m == nil {
		return
	}
	m.FilterRejections.WithLabelValues(string(panel), field).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
