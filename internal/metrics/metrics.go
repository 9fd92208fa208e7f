// Package metrics defines the Prometheus collectors exported by the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing,
// which keeps the engine usable from the CLI and from tests.
type Metrics struct {
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
	AuthRejections     *prometheus.CounterVec
	RateLimited        prometheus.Counter
	StatsComputations  *prometheus.CounterVec
	AnswerSources      *prometheus.CounterVec
	LeaderboardBuild   prometheus.Histogram
	LeaderboardSkipped prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		AuthRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_rejections_total",
				Help: "Total number of unauthorized or forbidden requests",
			},
			[]string{"reason"},
		),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		}),
		StatsComputations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "user_stats_computations_total",
				Help: "User stats computations by outcome",
			},
			[]string{"outcome"},
		),
		AnswerSources: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "completion_answer_sources_total",
				Help: "Completion records counted per answer source",
			},
			[]string{"source"},
		),
		LeaderboardBuild: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "leaderboard_build_duration_seconds",
			Help:    "Time spent computing the leaderboard",
			Buckets: prometheus.DefBuckets,
		}),
		LeaderboardSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_skipped_users_total",
			Help: "Users left off the leaderboard because their stats were unavailable",
		}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.AuthRejections,
		m.RateLimited,
		m.StatsComputations,
		m.AnswerSources,
		m.LeaderboardBuild,
		m.LeaderboardSkipped,
	)
	return m
}

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ObserveStats counts one stats computation.
func (m *Metrics) ObserveStats(outcome string) {
	if m == nil {
		return
	}
	m.StatsComputations.WithLabelValues(outcome).Inc()
}

// ObserveSource counts one classified completion record.
func (m *Metrics) ObserveSource(source string) {
	if m == nil {
		return
	}
	m.AnswerSources.WithLabelValues(source).Inc()
}

// ObserveLeaderboard records one leaderboard build.
func (m *Metrics) ObserveLeaderboard(seconds float64, skipped int) {
	if m == nil {
		return
	}
	m.LeaderboardBuild.Observe(seconds)
	m.LeaderboardSkipped.Add(float64(skipped))
}
