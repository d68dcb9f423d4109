package core

import (
	"context"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"github.com/veteranop/vetrender/internal/logging"
	"github.com/veteranop/vetrender/model"
)

// Terrain sampling constants. The receiver height matches the fixed 10 m
// assumption of the diffraction stage; kmPerDegLat is the equirectangular
// approximation used to walk rays outward from the transmitter.
const (
	rxHeightM       = 10.0
	kmPerDegLat     = 111.0
	minSampleDistKm = 0.1
)

// RadialSampleLattice is the sparse polar terrain-loss lattice: A ordered
// azimuths spanning [0,360) without duplicating the seam, D ordered distances
// spanning (0.1, MaxDistanceKm]. LossDB is indexed [distanceIndex][azimuthIndex].
//
// The lattice exists only for the duration of one terrain-enabled
// computation.
type RadialSampleLattice struct {
	AzimuthsDeg []float64
	DistancesKm []float64
	LossDB      [][]float64

	// DegradedRays counts azimuth rays whose elevation fetch failed and
	// whose loss column therefore defaulted to 0 dB.
	DegradedRays int
}

// NewRadialSampleLattice allocates a zeroed lattice with evenly spaced
// azimuth and distance axes for the given config.
func NewRadialSampleLattice(azimuthCount, distanceCount int, maxDistanceKm float64) *RadialSampleLattice {
	az := make([]float64, azimuthCount)
	for i := range az {
		az[i] = float64(i) * 360.0 / float64(azimuthCount)
	}
	loss := make([][]float64, distanceCount)
	for j := range loss {
		loss[j] = make([]float64, azimuthCount)
	}
	return &RadialSampleLattice{
		AzimuthsDeg: az,
		DistancesKm: linspace(minSampleDistKm, maxDistanceKm, distanceCount),
		LossDB:      loss,
	}
}

// TerrainSampler fetches sparse elevation profiles and converts them to
// diffraction losses. Elevation lookups are the only network-bound stage of
// the pipeline, so rays are dispatched to a bounded worker pool; each ray
// issues exactly one batched provider call regardless of the distance sample
// count.
type TerrainSampler struct {
	Elevation   ElevationProvider
	Diffraction DiffractionLossModel

	// Workers bounds concurrent ray fetches. Values below 1 mean
	// sequential dispatch.
	Workers int

	Log logging.Logger
}

// Sample builds the loss lattice for a terrain-enabled computation. A failed
// elevation fetch degrades only its own ray (loss column stays 0 dB) and is
// counted in the lattice's DegradedRays; cancellation aborts the whole
// sample and returns the context error with no partial lattice.
func (s *TerrainSampler) Sample(ctx context.Context, cfg *model.TransmitterConfig) (*RadialSampleLattice, error) {
	log := s.Log
	if log == nil {
		log = logging.Noop()
	}

	lattice := NewRadialSampleLattice(cfg.AzimuthSamples, cfg.DistanceSamples, cfg.MaxDistanceKm)

	workers := s.Workers
	if workers < 1 {
		workers = 1
	}

	// Each goroutine owns one azimuth column of the lattice, so the only
	// shared write is the degraded-ray tally collected afterwards.
	degraded := make([]bool, len(lattice.AzimuthsDeg))

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)

	for i := range lattice.AzimuthsDeg {
		if err := grpCtx.Err(); err != nil {
			break
		}
		grp.Go(func() error {
			if err := grpCtx.Err(); err != nil {
				return err
			}
			if err := s.sampleRay(grpCtx, cfg, lattice, i); err != nil {
				if grpCtx.Err() != nil {
					return grpCtx.Err()
				}
				log.Warn(grpCtx, "elevation ray degraded",
					logging.Any("azimuth_deg", lattice.AzimuthsDeg[i]),
					logging.String("error", err.Error()))
				degraded[i] = true
			}
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		// Cancelled: discard everything rather than hand back a
		// partially filled lattice.
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, d := range degraded {
		if d {
			lattice.DegradedRays++
		}
	}
	return lattice, nil
}

// sampleRay fetches the elevation profile along one azimuth and fills that
// azimuth's loss column. The ray holds D points walked outward with the
// equirectangular approximation: 1° latitude ≈ 111 km, longitude scaled by
// cos(transmitter latitude).
func (s *TerrainSampler) sampleRay(ctx context.Context, cfg *model.TransmitterConfig, lattice *RadialSampleLattice, azIdx int) error {
	azRad := lattice.AzimuthsDeg[azIdx] * math.Pi / 180
	cosLat := math.Cos(cfg.LatitudeDeg * math.Pi / 180)

	points := make([]orb.Point, len(lattice.DistancesKm))
	for j, d := range lattice.DistancesKm {
		lat := cfg.LatitudeDeg + d*math.Cos(azRad)/kmPerDegLat
		lon := cfg.LongitudeDeg + d*math.Sin(azRad)/(kmPerDegLat*cosLat)
		points[j] = orb.Point{lon, lat}
	}

	profile, err := s.Elevation.Elevations(ctx, points)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrElevationProvider, err)
	}

	estimateRayLosses(s.Diffraction, cfg, lattice, azIdx, profile)
	return nil
}

// estimateRayLosses runs the diffraction model for every distance sample of
// one ray. Each sample sees the profile collected up to its own distance and
// a matching 0..distance axis; distances are independent, profile length
// grows with the sample index.
func estimateRayLosses(dm DiffractionLossModel, cfg *model.TransmitterConfig, lattice *RadialSampleLattice, azIdx int, profile []float64) {
	if len(profile) > len(lattice.DistancesKm) {
		profile = profile[:len(lattice.DistancesKm)]
	}
	for j := range profile {
		sub := profile[:j+1]
		axis := distanceAxis(lattice.DistancesKm[j], len(sub))
		lattice.LossDB[j][azIdx] = dm.Loss(cfg.AntennaHeightM, rxHeightM, sub, cfg.FrequencyMHz, axis)
	}
}

// distanceAxis spans 0..distKm inclusive with n points.
func distanceAxis(distKm float64, n int) []float64 {
	if n == 1 {
		return []float64{distKm}
	}
	return linspace(0, distKm, n)
}
