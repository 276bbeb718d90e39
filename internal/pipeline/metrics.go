package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// assembliesTotal counts Assemble calls by outcome: ok or the error kind.
	assembliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pmtrain_pipeline_assemblies_total",
		Help: "Pipeline assemblies by outcome",
	}, []string{"outcome"})

	stagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pmtrain_pipeline_stages_total",
		Help: "Stages constructed by task family",
	}, []string{"family"})

	assemblyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pmtrain_pipeline_assembly_duration_seconds",
		Help:    "Pipeline assembly duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10us to ~2.6s
	})
)
