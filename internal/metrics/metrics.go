// Package metrics holds the Prometheus collectors of the submission pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "churn_submissions_total",
			Help: "Total number of form submissions by outcome",
		},
		[]string{"outcome"},
	)

	PredictDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "churn_predict_duration_seconds",
			Help:    "Duration of prediction backend calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SubmissionsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "churn_submissions_in_flight",
			Help: "Number of submissions waiting on the prediction backend",
		},
	)

	DiscountMismatch = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "churn_discount_mismatch_total",
			Help: "Predictions whose suggested discount disagrees with the probability tier",
		},
	)
)
