package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records outcomes of assistant query processing.
type PipelineMetrics struct {
	duration   *prometheus.HistogramVec
	queries    *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
	extraction *prometheus.CounterVec
	limited    prometheus.Counter
}

// NewPipelineMetrics registers the assistant metrics on the provided registerer.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	if reg == nil {
		return &PipelineMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_query_duration_seconds",
		Help:    "Duration of assistant queries in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"intent"})
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_queries_total",
		Help: "Assistant queries by classified intent.",
	}, []string{"intent"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_fallback_total",
		Help: "Responses served by the deterministic fallback.",
	}, []string{"reason"})
	extraction := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_extraction_failures_total",
		Help: "Model output extraction failures by stage.",
	}, []string{"stage"})
	limited := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assistant_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	})
	reg.MustRegister(duration, queries, fallbacks, extraction, limited)
	return &PipelineMetrics{
		duration:   duration,
		queries:    queries,
		fallbacks:  fallbacks,
		extraction: extraction,
		limited:    limited,
	}
}

// ObserveDuration records the duration of a query for the given intent.
func (p *PipelineMetrics) ObserveDuration(intent string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(intent)).Observe(duration.Seconds())
}

// IncQuery counts a query classified with the given intent.
func (p *PipelineMetrics) IncQuery(intent string) {
	if p == nil || p.queries == nil {
		return
	}
	p.queries.WithLabelValues(normalizeLabel(intent)).Inc()
}

// IncFallback counts a response served by the fallback generator.
func (p *PipelineMetrics) IncFallback(reason string) {
	if p == nil || p.fallbacks == nil {
		return
	}
	p.fallbacks.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncExtractionFailure counts a model output that failed extraction at a stage.
func (p *PipelineMetrics) IncExtractionFailure(stage string) {
	if p == nil || p.extraction == nil {
		return
	}
	p.extraction.WithLabelValues(normalizeLabel(stage)).Inc()
}

// IncRateLimited counts a request rejected by the rate limiter.
func (p *PipelineMetrics) IncRateLimited() {
	if p == nil || p.limited == nil {
		return
	}
	p.limited.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
