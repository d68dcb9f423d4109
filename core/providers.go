package core

import (
	"context"

	"github.com/paulmach/orb"
)

// AntennaPatternProvider supplies directional antenna gain. Azimuth is
// degrees clockwise from north, elevation is degrees above the horizon;
// the returned gain is absolute dBi.
//
// The pipeline samples every non-masked cell, so a lookup failure aborts the
// whole computation.
type AntennaPatternProvider interface {
	Gain(azimuthDeg, elevationDeg float64) (float64, error)
}

// ElevationProvider resolves ground elevations (metres) for a batch of
// points. Points are orb.Point values in lon/lat order. The returned slice
// must be the same length and order as the input.
//
// A failed batch is recoverable at the ray level: the sampler degrades that
// ray to zero terrain loss instead of aborting.
type ElevationProvider interface {
	Elevations(ctx context.Context, points []orb.Point) ([]float64, error)
}

// DiffractionLossModel converts a terrain profile into a scalar excess loss
// in dB. The profile holds elevations (metres) sampled along the path from
// the transmitter, and distanceAxisKm spans 0..path length with the same
// point count.
type DiffractionLossModel interface {
	Loss(txHeightM, rxHeightM float64, profileM []float64, frequencyMHz float64, distanceAxisKm []float64) float64
}
