package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics implements the answer pipeline's metrics sink.
type PipelineMetrics struct {
	stageDuration           *prometheus.HistogramVec
	rerankFallbackTotal     prometheus.Counter
	noContextTotal          prometheus.Counter
	collectionFailuresTotal *prometheus.CounterVec
	sourcesReturned         prometheus.Histogram
}

func newPipelineMetrics(registry *prometheus.Registry, service string) *PipelineMetrics {
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "legalrag",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Answer pipeline stage duration in seconds.",
			Buckets:   prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"stage"},
	)
	rerankFallbackTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "legalrag",
			Subsystem: "pipeline",
			Name:      "rerank_fallback_total",
			Help:      "Total requests answered with the heuristic reranker.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	noContextTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "legalrag",
			Subsystem: "pipeline",
			Name:      "no_context_total",
			Help:      "Total requests answered without any retrieved statute context.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	collectionFailuresTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "legalrag",
			Subsystem: "pipeline",
			Name:      "collection_search_failures_total",
			Help:      "Total per-collection search failures tolerated by the pipeline.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"collection"},
	)
	sourcesReturned := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "legalrag",
			Subsystem: "pipeline",
			Name:      "sources_returned",
			Help:      "Distribution of cited sources per answered request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	registry.MustRegister(
		stageDuration,
		rerankFallbackTotal,
		noContextTotal,
		collectionFailuresTotal,
		sourcesReturned,
	)

	return &PipelineMetrics{
		stageDuration:           stageDuration,
		rerankFallbackTotal:     rerankFallbackTotal,
		noContextTotal:          noContextTotal,
		collectionFailuresTotal: collectionFailuresTotal,
		sourcesReturned:         sourcesReturned,
	}
}

func (m *PipelineMetrics) ObserveStage(stage string, seconds float64) {
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}

func (m *PipelineMetrics) RerankFallback() {
	m.rerankFallbackTotal.Inc()
}

func (m *PipelineMetrics) NoContext() {
	m.noContextTotal.Inc()
}

func (m *PipelineMetrics) CollectionSearchFailure(collection string) {
	if collection == "" {
		collection = "unknown"
	}
	m.collectionFailuresTotal.WithLabelValues(collection).Inc()
}

func (m *PipelineMetrics) SourcesReturned(n int) {
	m.sourcesReturned.Observe(float64(n))
}
