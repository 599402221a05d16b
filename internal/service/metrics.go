package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of search requests by outcome",
		},
		[]string{"outcome"},
	)

	searchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Search execution time in seconds, cache misses only",
			Buckets: prometheus.DefBuckets,
		},
	)

	searchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_results_per_query",
			Help:    "Matching products per search before pagination",
			Buckets: []float64{0, 1, 3, 10, 30, 100, 300, 1000},
		},
	)

	searchCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_cache_hits_total",
			Help: "Result pages served from the cache",
		},
	)

	searchCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_cache_misses_total",
			Help: "Searches that had to hit the engine",
		},
	)
)

const (
	outcomeSuccess = "success"
	outcomeInvalid = "invalid_input"
	outcomeError   = "error"
)
