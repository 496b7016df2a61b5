package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SourceRequestDuration 資料源請求耗時
	SourceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_source_request_duration_seconds",
			Help:    "Duration of recipe source requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// SourceRequests 資料源請求結果，outcome: ok, empty, not_found, error, rejected
	SourceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_source_requests_total",
			Help: "Total number of recipe source requests by outcome",
		},
		[]string{"op", "outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recipe_source_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_source_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// SearchDuration 搜尋耗時，mode: ingredients, default, lookup
	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_search_duration_seconds",
			Help:    "Duration of recipe searches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	SearchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_search_errors_total",
			Help: "Total number of searches that failed with a search error",
		},
		[]string{"mode"},
	)

	// SearchOmitted 被略過的候選，reason: not_found, malformed, unavailable
	SearchOmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_search_omitted_candidates_total",
			Help: "Total number of candidates omitted from results",
		},
		[]string{"reason"},
	)

	SearchFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_search_fallbacks_total",
			Help: "Total number of searches whose candidates came from a fallback ingredient",
		},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_cache_hits_total",
			Help: "Total number of response cache hits",
		},
		[]string{"backend"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_cache_misses_total",
			Help: "Total number of response cache misses",
		},
		[]string{"backend"},
	)

	SupersededSearches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipe_search_superseded_total",
			Help: "Total number of search results dropped because a newer search was submitted",
		},
	)
)
