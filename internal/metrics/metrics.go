// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InferenceSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "campuscycle_inference_seconds",
		Help:    "Wall time of one classify call, preprocessing included.",
		Buckets: prometheus.DefBuckets,
	})

	ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campuscycle_classifications_total",
		Help: "Decoded classifications by winning label.",
	}, []string{"label"})

	ComplaintsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "campuscycle_complaints_submitted_total",
		Help: "Complaints accepted by the record manager.",
	})
)
