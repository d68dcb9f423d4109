package core

import "errors"

var (
	// ErrAntennaProvider wraps antenna gain lookup failures. Gain feeds
	// every cell, so this is fatal for the computation.
	ErrAntennaProvider = errors.New("antenna pattern lookup failed")

	// ErrElevationProvider wraps a failed batched elevation fetch for one
	// azimuth ray. The sampler recovers by degrading that ray.
	ErrElevationProvider = errors.New("elevation fetch failed")

	// ErrComputationInFlight is returned when a second Compute for the
	// same transmitter identity is requested while one is running.
	ErrComputationInFlight = errors.New("computation already in flight for this transmitter")
)
