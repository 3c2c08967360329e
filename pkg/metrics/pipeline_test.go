package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestPipelineMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewPipelineMetrics(reg)

	metrics.ObserveDuration("item", 250*time.Millisecond)
	metrics.IncQuery("item")
	metrics.IncFallback("llm_unavailable")
	metrics.IncExtractionFailure("balanced_scan")
	metrics.IncRateLimited()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "assistant_queries_total", "intent", "item"); err != nil {
		t.Fatalf("fetch queries: %v", err)
	} else if got != 1 {
		t.Fatalf("expected queries=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "assistant_fallback_total", "reason", "llm_unavailable"); err != nil {
		t.Fatalf("fetch fallback: %v", err)
	} else if got != 1 {
		t.Fatalf("expected fallback=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "assistant_extraction_failures_total", "stage", "balanced_scan"); err != nil {
		t.Fatalf("fetch extraction: %v", err)
	} else if got != 1 {
		t.Fatalf("expected extraction=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "assistant_query_duration_seconds", "intent", "item"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestPipelineMetricsNilRegisterer(t *testing.T) {
	metrics := NewPipelineMetrics(nil)

	// All recorders must be safe no-ops without a registry.
	metrics.ObserveDuration("item", time.Second)
	metrics.IncQuery("item")
	metrics.IncFallback("corrupted")
	metrics.IncExtractionFailure("schema")
	metrics.IncRateLimited()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
