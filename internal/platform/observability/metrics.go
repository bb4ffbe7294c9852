package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReviewsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "miner_reviews_ingested_total",
		Help: "The total number of reviews accepted into the raw store",
	}, []string{"source"})

	ItemsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "miner_items_rejected_total",
		Help: "Total number of feed items rejected before storage, by reason",
	}, []string{"reason"})

	FetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "miner_fetch_errors_total",
		Help: "Total number of transient feed fetch errors",
	}, []string{"source"})

	TriggerRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "miner_enrichment_trigger_runs_total",
		Help: "The total number of enrichment trigger invocations",
	}, []string{"status"})

	ReviewsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "miner_reviews_processed_total",
		Help: "The total number of reviews enriched by the pipeline",
	}, []string{"status"})

	EnrichmentBacklog = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "miner_enrichment_backlog_size",
		Help: "Number of raw reviews without a processed row",
	})

	EnrichmentBatchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "miner_enrichment_batch_duration_seconds",
		Help:    "Duration in seconds to process an enrichment batch",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	})

	TopicModelTrainingSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "miner_topic_model_training_seconds",
		Help:    "Duration in seconds of topic model training runs",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300},
	})
)
