package model

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig marks configuration problems detected before any grid
// work starts. Callers can match it with errors.Is.
var ErrInvalidConfig = errors.New("invalid transmitter config")

// TransmitterConfig describes one coverage computation request. It is
// immutable for the lifetime of a computation; the engine never writes to it.
type TransmitterConfig struct {
	// Transmitter site, WGS84 degrees.
	LatitudeDeg  float64 `json:"LatitudeDeg"`
	LongitudeDeg float64 `json:"LongitudeDeg"`

	// ERPdBm is the effective radiated power. The engine converts it to
	// EIRP before compositing.
	ERPdBm float64 `json:"ERPdBm"`

	// FrequencyMHz must be > 0.
	FrequencyMHz float64 `json:"FrequencyMHz"`

	// AntennaHeightM is the transmit antenna height above ground (metres).
	AntennaHeightM float64 `json:"AntennaHeightM"`

	// MaxDistanceKm bounds the circular coverage area; must be > 0.
	MaxDistanceKm float64 `json:"MaxDistanceKm"`

	// Resolution is the side length of the square evaluation grid in
	// cells; must be >= 2.
	Resolution int `json:"Resolution"`

	// AzimuthSamples (A) and DistanceSamples (D) set the sparse terrain
	// sampling lattice. Zero values are defaulted by the engine when
	// UseTerrain is set; any positive count is valid, with a single
	// sample degenerating to nearest-sample lookup on that axis.
	AzimuthSamples  int `json:"AzimuthSamples,omitempty"`
	DistanceSamples int `json:"DistanceSamples,omitempty"`

	// UseTerrain enables the diffraction-loss stages.
	UseTerrain bool `json:"UseTerrain,omitempty"`
}

// Defaults used when the lattice dimensions are left unset, matching the
// medium terrain-quality preset of the desktop tool this engine grew from.
const (
	DefaultAzimuthSamples  = 72
	DefaultDistanceSamples = 50
)

// Validate checks every numeric field the pipeline depends on. It returns an
// error wrapping ErrInvalidConfig so the caller can classify it as fatal
// before any computation starts.
func (c *TransmitterConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is required", ErrInvalidConfig)
	}
	if c.Resolution < 2 {
		return fmt.Errorf("%w: resolution %d, need at least 2", ErrInvalidConfig, c.Resolution)
	}
	if c.MaxDistanceKm <= 0 {
		return fmt.Errorf("%w: max distance %.3f km, must be positive", ErrInvalidConfig, c.MaxDistanceKm)
	}
	if c.FrequencyMHz <= 0 {
		return fmt.Errorf("%w: frequency %.3f MHz, must be positive", ErrInvalidConfig, c.FrequencyMHz)
	}
	if c.LatitudeDeg < -90 || c.LatitudeDeg > 90 {
		return fmt.Errorf("%w: latitude %.6f out of range", ErrInvalidConfig, c.LatitudeDeg)
	}
	if c.LongitudeDeg < -180 || c.LongitudeDeg > 180 {
		return fmt.Errorf("%w: longitude %.6f out of range", ErrInvalidConfig, c.LongitudeDeg)
	}
	if c.UseTerrain {
		// Zero means "use the default"; one is the smallest real
		// lattice dimension, so only negatives are ruled out.
		if c.AzimuthSamples < 0 || c.DistanceSamples < 0 {
			return fmt.Errorf("%w: negative terrain sample counts", ErrInvalidConfig)
		}
	}
	return nil
}

// WithTerrainDefaults returns a copy with zero lattice dimensions replaced by
// the defaults. The receiver is not modified.
func (c TransmitterConfig) WithTerrainDefaults() TransmitterConfig {
	if c.AzimuthSamples == 0 {
		c.AzimuthSamples = DefaultAzimuthSamples
	}
	if c.DistanceSamples == 0 {
		c.DistanceSamples = DefaultDistanceSamples
	}
	return c
}

// Key returns a stable identity string for single-flight bookkeeping and for
// caller-side result caches. Two configs with the same key would produce the
// same field given the same providers.
func (c TransmitterConfig) Key() string {
	return fmt.Sprintf("%.6f,%.6f|%g|%g|%g|%g|%d|%d|%d|%t",
		c.LatitudeDeg, c.LongitudeDeg,
		c.ERPdBm, c.FrequencyMHz, c.AntennaHeightM, c.MaxDistanceKm,
		c.Resolution, c.AzimuthSamples, c.DistanceSamples, c.UseTerrain)
}
