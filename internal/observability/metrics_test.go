package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestComputationFinishedRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCoverageCollector(reg)
	if err != nil {
		t.Fatalf("NewCoverageCollector: %v", err)
	}

	collector.ComputationFinished("ok", 0.25)
	collector.ComputationFinished("error", 0.01)

	if got := testutil.ToFloat64(collector.Computations.WithLabelValues("ok")); got != 1 {
		t.Fatalf("coverage_computations_total{ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.Computations.WithLabelValues("error")); got != 1 {
		t.Fatalf("coverage_computations_total{error} = %v, want 1", got)
	}

	if count := histogramSampleCount(t, reg, "coverage_computation_duration_seconds", map[string]string{
		"outcome": "ok",
	}); count != 1 {
		t.Fatalf("coverage_computation_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestRayFailureAndDegradedCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCoverageCollector(reg)
	if err != nil {
		t.Fatalf("NewCoverageCollector: %v", err)
	}

	collector.ElevationRayFailures(3)
	collector.ElevationRayFailures(0) // must not count
	collector.DegradedResult()

	if got := testutil.ToFloat64(collector.RayFailures); got != 3 {
		t.Fatalf("coverage_elevation_ray_failures_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(collector.DegradedResults); got != 1 {
		t.Fatalf("coverage_degraded_results_total = %v, want 1", got)
	}
}

func TestMetricsHandlerExposesCoverageSeries(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCoverageCollector(reg)
	if err != nil {
		t.Fatalf("NewCoverageCollector: %v", err)
	}
	collector.ComputationFinished("ok", 0.1)
	collector.ElevationRayFailures(1)
	collector.DegradedResult()
	collector.ObserveHTTP("/v1/coverage", http.StatusOK, 0)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"coverage_computations_total",
		"coverage_computation_duration_seconds",
		"coverage_elevation_ray_failures_total",
		"coverage_degraded_results_total",
		"coverage_http_requests_total",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
}

func TestNewCoverageCollectorIdempotentRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewCoverageCollector(reg); err != nil {
		t.Fatalf("first NewCoverageCollector: %v", err)
	}
	if _, err := NewCoverageCollector(reg); err != nil {
		t.Fatalf("second NewCoverageCollector on same registry: %v", err)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
