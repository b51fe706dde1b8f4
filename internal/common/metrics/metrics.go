// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes recorded by the scoring client.
const (
	OutcomeSuccess     = "success"
	OutcomeRejected    = "rejected"
	OutcomeUnreachable = "unreachable"
	OutcomeBadStatus   = "bad_status"
	OutcomeMalformed   = "malformed"
)

var (
	ScoringRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_scoring_requests_total",
			Help: "Total number of requests sent to the scoring service",
		},
		[]string{"endpoint", "outcome"},
	)

	ScoringRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loan_scoring_request_duration_seconds",
			Help:    "Duration of scoring service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ScoringRequestsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "loan_scoring_requests_active",
			Help: "Number of in-flight scoring service requests",
		},
		[]string{"endpoint"},
	)

	SessionTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_session_transitions_total",
			Help: "Total number of application session state transitions",
		},
		[]string{"from", "to"},
	)

	StaleResponsesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_session_stale_responses_total",
			Help: "Scoring responses discarded because the session was reset",
		},
	)

	ChatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_chat_messages_total",
			Help: "Total number of chat transcript entries appended",
		},
		[]string{"sender"},
	)

	TranslationCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_translation_cache_lookups_total",
			Help: "Translation cache lookups by result",
		},
		[]string{"result"},
	)
)
