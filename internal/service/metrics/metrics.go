// Package metrics registers the worker's Prometheus instruments.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extract_messages_processed_total",
			Help: "Queue messages processed by outcome",
		},
		[]string{"status"}, // success, failure
	)

	FailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extract_failures_total",
			Help: "Processing failures by error kind",
		},
		[]string{"kind"},
	)

	RowsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "extract_rows_total",
			Help: "Patient rows extracted from bundles",
		},
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extract_pipeline_duration_seconds",
			Help:    "Per-item pipeline duration",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~163s
		},
	)

	InFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "extract_inflight_items",
			Help: "Items currently being processed",
		},
	)

	ReceiveBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extract_receive_batch_size",
			Help:    "Items returned per queue receive",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		},
	)
)
