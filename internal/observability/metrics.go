package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CoverageCollector bundles Prometheus metrics for the coverage engine and
// its HTTP surface, and provides a ready-to-mount /metrics handler.
type CoverageCollector struct {
	gatherer prometheus.Gatherer

	Computations         *prometheus.CounterVec
	ComputationDurations *prometheus.HistogramVec
	RayFailures          prometheus.Counter
	DegradedResults      prometheus.Counter

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

// NewCoverageCollector registers coverage metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCoverageCollector(reg prometheus.Registerer) (*CoverageCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	computations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_computations_total",
		Help: "Total finished coverage computations, labeled by outcome (ok, error, cancelled).",
	}, []string{"outcome"})
	computations, err := registerCounterVec(reg, computations, "coverage_computations_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coverage_computation_duration_seconds",
		Help:    "End-to-end coverage computation latency in seconds.",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"outcome"})
	durations, err = registerHistogramVec(reg, durations, "coverage_computation_duration_seconds")
	if err != nil {
		return nil, err
	}

	rayFailures, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coverage_elevation_ray_failures_total",
		Help: "Azimuth rays whose batched elevation fetch failed and degraded to zero terrain loss.",
	}), "coverage_elevation_ray_failures_total")
	if err != nil {
		return nil, err
	}

	degraded, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "coverage_degraded_results_total",
		Help: "Completed computations returned with the partial-degradation flag set.",
	}), "coverage_degraded_results_total")
	if err != nil {
		return nil, err
	}

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coverage_http_requests_total",
		Help: "Total handled HTTP requests, labeled by route and status code.",
	}, []string{"route", "code"})
	httpRequests, err = registerCounterVec(reg, httpRequests, "coverage_http_requests_total")
	if err != nil {
		return nil, err
	}

	httpDurations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coverage_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"route"})
	httpDurations, err = registerHistogramVec(reg, httpDurations, "coverage_http_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &CoverageCollector{
		gatherer:             gatherer,
		Computations:         computations,
		ComputationDurations: durations,
		RayFailures:          rayFailures,
		DegradedResults:      degraded,
		HTTPRequests:         httpRequests,
		HTTPDurations:        httpDurations,
	}, nil
}

// ComputationFinished satisfies core.MetricsRecorder.
func (c *CoverageCollector) ComputationFinished(outcome string, seconds float64) {
	if c == nil {
		return
	}
	if c.Computations != nil {
		c.Computations.WithLabelValues(outcome).Inc()
	}
	if c.ComputationDurations != nil {
		c.ComputationDurations.WithLabelValues(outcome).Observe(seconds)
	}
}

// ElevationRayFailures records n failed elevation rays from one computation.
func (c *CoverageCollector) ElevationRayFailures(n int) {
	if c == nil || c.RayFailures == nil || n <= 0 {
		return
	}
	c.RayFailures.Add(float64(n))
}

// DegradedResult records a completed-but-degraded computation.
func (c *CoverageCollector) DegradedResult() {
	if c == nil || c.DegradedResults == nil {
		return
	}
	c.DegradedResults.Inc()
}

// ObserveHTTP records one handled HTTP request.
func (c *CoverageCollector) ObserveHTTP(route string, code int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.HTTPRequests != nil {
		c.HTTPRequests.WithLabelValues(route, fmt.Sprintf("%d", code)).Inc()
	}
	if c.HTTPDurations != nil {
		c.HTTPDurations.WithLabelValues(route).Observe(elapsed.Seconds())
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *CoverageCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
