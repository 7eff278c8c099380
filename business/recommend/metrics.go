package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RecommendLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reco_recommend_latency_seconds",
		Help:    "Latency of recommendation requests end to end.",
		Buckets: prometheus.DefBuckets,
	})

	StrategyServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_candidates_served_total",
			Help: "Candidates returned to callers by strategy.",
		},
		[]string{"strategy"},
	)

	StrategyErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_strategy_errors_total",
			Help: "Strategy runs degraded to empty because the store failed.",
		},
		[]string{"strategy"},
	)

	StrategyFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_strategy_fallbacks_total",
			Help: "Cold-start fallbacks taken, by strategy and fallback kind.",
		},
		[]string{"strategy", "fallback"},
	)

	FeedbackEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reco_feedback_events_total",
			Help: "Feedback updates applied to stored recommendations.",
		},
		[]string{"event_type"},
	)

	EventRecordFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reco_event_record_failures_total",
		Help: "Interaction events dropped because the store write failed.",
	})
)

func init() {
	prometheus.MustRegister(
		RecommendLatency,
		StrategyServedTotal,
		StrategyErrorsTotal,
		StrategyFallbacksTotal,
		FeedbackEventsTotal,
		EventRecordFailuresTotal,
	)
}
