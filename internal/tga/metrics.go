package tga

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tga_sync_runs_total",
			Help: "Completed sync runs by outcome",
		},
		[]string{"outcome"},
	)

	syncedProductsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tga_sync_products_total",
			Help: "Products upserted by sync runs",
		},
	)

	syncedGroupsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tga_sync_groups_total",
			Help: "Product groups upserted by sync runs",
		},
	)

	syncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tga_sync_duration_seconds",
			Help:    "Wall time of sync runs",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)

	syncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tga_sync_last_success_timestamp_seconds",
			Help: "Unix time of the last fully successful sync run",
		},
	)
)
