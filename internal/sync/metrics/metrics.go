package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsProcessed tracks records loaded per entity type and outcome
	RecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keapsync_records_processed_total",
			Help: "Total number of records processed",
		},
		[]string{"entity_type", "outcome"},
	)

	// APICallsTotal tracks upstream API calls per endpoint
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keapsync_api_calls_total",
			Help: "Total number of upstream API calls",
		},
		[]string{"entity_type"},
	)

	// APIErrorsTotal tracks upstream API errors per entity type and class
	APIErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keapsync_api_errors_total",
			Help: "Total number of upstream API errors",
		},
		[]string{"entity_type", "error_type"},
	)

	// RetriesTotal counts retry attempts across all upstream calls
	RetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "keapsync_retries_total",
			Help: "Total number of retried API calls",
		},
	)

	// PageLatency tracks time spent fetching and persisting one page
	PageLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keapsync_page_latency_seconds",
			Help:    "Latency of one page fetch-and-persist cycle in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"entity_type"},
	)

	// CheckpointOffset tracks the latest persisted pagination offset
	CheckpointOffset = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "keapsync_checkpoint_offset",
			Help: "Latest persisted pagination offset per entity type",
		},
		[]string{"entity_type"},
	)

	// ReprocessedTotal tracks ledger records replayed by the reprocessor
	ReprocessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keapsync_reprocessed_total",
			Help: "Total number of ledger records replayed",
		},
		[]string{"entity_type", "outcome"},
	)
)
