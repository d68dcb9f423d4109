package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/veteranop/vetrender/internal/logging"
	"github.com/veteranop/vetrender/model"
)

// Result is the output of one coverage computation. PowerDBm is aligned with
// Grid; masked cells hold MaskedPowerDBm. TerrainLossDB is nil when the
// computation ran without terrain.
type Result struct {
	Config model.TransmitterConfig

	Grid          *CoverageGrid
	PowerDBm      []float64
	TerrainLossDB []float64

	// Degraded is set when at least one elevation ray fetch failed and
	// its terrain contribution defaulted to 0 dB.
	Degraded bool

	EIRPdBm float64
}

// MetricsRecorder receives engine-level measurements. The observability
// package provides the Prometheus-backed implementation; a nil recorder
// disables recording.
type MetricsRecorder interface {
	ComputationFinished(outcome string, seconds float64)
	ElevationRayFailures(count int)
	DegradedResult()
}

// Engine runs the propagation pipeline. It is stateless between
// computations: every Compute call owns independent grid, lattice and field
// instances. The only cross-call bookkeeping is the single-flight guard that
// rejects a second concurrent computation for the same transmitter identity,
// so back-to-back callers can never confuse two in-flight answers for the
// same config.
type Engine struct {
	antenna     AntennaPatternProvider
	elevation   ElevationProvider
	diffraction DiffractionLossModel
	erpToEIRP   func(erpDBm float64) float64

	workers int
	log     logging.Logger
	metrics MetricsRecorder
	tracer  trace.Tracer

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Option customises an Engine at construction time.
type Option func(*Engine)

// WithLogger sets the structured logger used for per-computation logging.
func WithLogger(log logging.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetricsRecorder wires engine measurements to a recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithElevationWorkers bounds the terrain sampler's concurrent ray fetches.
func WithElevationWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// NewEngine builds an engine around the three capability providers and the
// ERP→EIRP conversion. elevation and diffraction may be nil when no caller
// ever enables terrain.
func NewEngine(antenna AntennaPatternProvider, elevation ElevationProvider, diffraction DiffractionLossModel, erpToEIRP func(float64) float64, opts ...Option) *Engine {
	e := &Engine{
		antenna:     antenna,
		elevation:   elevation,
		diffraction: diffraction,
		erpToEIRP:   erpToEIRP,
		workers:     4,
		log:         logging.Noop(),
		tracer:      otel.Tracer("vetrender/core"),
		inFlight:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute runs the full pipeline for one validated config. Fatal errors
// (invalid config, antenna provider failure, cancellation) return a nil
// result; a degraded elevation fetch returns a complete result with
// Result.Degraded set.
func (e *Engine) Compute(ctx context.Context, cfg model.TransmitterConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.UseTerrain {
		cfg = cfg.WithTerrainDefaults()
		if e.elevation == nil || e.diffraction == nil {
			return nil, fmt.Errorf("%w: terrain requested but no elevation or diffraction provider configured", model.ErrInvalidConfig)
		}
	}

	key := cfg.Key()
	if err := e.acquire(key); err != nil {
		return nil, err
	}
	defer e.release(key)

	ctx, log := logging.WithComputationLogger(ctx, e.log)
	start := time.Now()

	res, err := e.compute(ctx, cfg, log)
	e.observe(res, err, time.Since(start))
	if err != nil {
		log.Error(ctx, "coverage computation failed", logging.String("error", err.Error()))
		return nil, err
	}

	log.Info(ctx, "coverage computation complete",
		logging.Int("resolution", cfg.Resolution),
		logging.Any("max_distance_km", cfg.MaxDistanceKm),
		logging.Any("degraded", res.Degraded),
		logging.Any("duration", time.Since(start).Seconds()))
	return res, nil
}

func (e *Engine) compute(ctx context.Context, cfg model.TransmitterConfig, log logging.Logger) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "coverage.compute",
		trace.WithAttributes(
			attribute.Int("grid.resolution", cfg.Resolution),
			attribute.Float64("grid.max_distance_km", cfg.MaxDistanceKm),
			attribute.Bool("terrain.enabled", cfg.UseTerrain),
		))
	defer span.End()

	grid, err := e.stageGrid(ctx, &cfg)
	if err != nil {
		return nil, err
	}

	fspl := e.stagePathLoss(ctx, grid, cfg.FrequencyMHz)

	gains, err := e.stageGains(ctx, grid)
	if err != nil {
		return nil, err
	}

	var (
		terrainLoss []float64
		degraded    bool
	)
	if cfg.UseTerrain {
		lattice, err := e.stageTerrain(ctx, &cfg, log)
		if err != nil {
			return nil, err
		}
		terrainLoss = e.stageInterpolate(ctx, grid, lattice)
		degraded = lattice.DegradedRays > 0
		if e.metrics != nil && lattice.DegradedRays > 0 {
			e.metrics.ElevationRayFailures(lattice.DegradedRays)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	eirp := e.erpToEIRP(cfg.ERPdBm)
	power := ComposePower(grid, eirp, gains, fspl, terrainLoss)

	return &Result{
		Config:        cfg,
		Grid:          grid,
		PowerDBm:      power,
		TerrainLossDB: terrainLoss,
		Degraded:      degraded,
		EIRPdBm:       eirp,
	}, nil
}

func (e *Engine) stageGrid(ctx context.Context, cfg *model.TransmitterConfig) (*CoverageGrid, error) {
	_, span := e.tracer.Start(ctx, "coverage.grid")
	defer span.End()
	return BuildGrid(cfg)
}

func (e *Engine) stagePathLoss(ctx context.Context, grid *CoverageGrid, frequencyMHz float64) []float64 {
	_, span := e.tracer.Start(ctx, "coverage.pathloss")
	defer span.End()
	return ComputePathLoss(grid, frequencyMHz)
}

func (e *Engine) stageGains(ctx context.Context, grid *CoverageGrid) ([]float64, error) {
	_, span := e.tracer.Start(ctx, "coverage.antenna_gain")
	defer span.End()
	return SampleAntennaGains(grid, e.antenna)
}

func (e *Engine) stageTerrain(ctx context.Context, cfg *model.TransmitterConfig, log logging.Logger) (*RadialSampleLattice, error) {
	ctx, span := e.tracer.Start(ctx, "coverage.terrain_sample")
	defer span.End()

	sampler := &TerrainSampler{
		Elevation:   e.elevation,
		Diffraction: e.diffraction,
		Workers:     e.workers,
		Log:         log,
	}
	lattice, err := sampler.Sample(ctx, cfg)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("terrain.degraded_rays", lattice.DegradedRays))
	return lattice, nil
}

func (e *Engine) stageInterpolate(ctx context.Context, grid *CoverageGrid, lattice *RadialSampleLattice) []float64 {
	_, span := e.tracer.Start(ctx, "coverage.interpolate")
	defer span.End()
	return InterpolateTerrainLoss(grid, lattice)
}

func (e *Engine) acquire(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[key]; busy {
		return fmt.Errorf("%w: %s", ErrComputationInFlight, key)
	}
	e.inFlight[key] = struct{}{}
	return nil
}

func (e *Engine) release(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, key)
}

func (e *Engine) observe(res *Result, err error, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	outcome := "ok"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = "cancelled"
	case err != nil:
		outcome = "error"
	}
	e.metrics.ComputationFinished(outcome, elapsed.Seconds())
	if err == nil && res != nil && res.Degraded {
		e.metrics.DegradedResult()
	}
}
