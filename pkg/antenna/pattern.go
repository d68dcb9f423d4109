// Package antenna provides measured-pattern antenna gain lookup for the
// coverage engine. Patterns hold relative azimuth and elevation cuts
// (0 dB at boresight, negative off-axis) plus a peak gain; absolute gain is
// peak + azimuth relative + elevation relative.
package antenna

import (
	"math"
	"sort"
	"strings"
)

// Pattern is an interpolating antenna pattern. The zero value is not usable;
// construct with NewOmni or LoadXML.
type Pattern struct {
	name    string
	maxGain float64

	azimuth   cut
	elevation cut
}

// cut is one sorted pattern cut: parallel angle/gain slices.
type cut struct {
	angles []float64
	gains  []float64
}

// NewOmni returns a 0 dBi omnidirectional pattern, the default when no
// measured pattern has been loaded.
func NewOmni() *Pattern {
	return &Pattern{name: "omni"}
}

// Name identifies the loaded pattern ("omni" for the default).
func (p *Pattern) Name() string { return p.name }

// MaxGain returns the peak gain in dBi.
func (p *Pattern) MaxGain() float64 { return p.maxGain }

// Gain returns absolute gain in dBi for the given look direction. Azimuth is
// degrees clockwise from north and wraps circularly; elevation is degrees
// above the horizon, clamped into [-90, 90]. It satisfies the engine's
// AntennaPatternProvider capability and never fails for a constructed
// pattern.
func (p *Pattern) Gain(azimuthDeg, elevationDeg float64) (float64, error) {
	total := p.maxGain
	if len(p.azimuth.angles) > 0 {
		total += p.azimuth.interpolateWrapped(normalizeAzimuth(azimuthDeg))
	}
	if len(p.elevation.angles) > 0 {
		total += p.elevation.interpolateClamped(clampElevation(elevationDeg))
	}
	return total, nil
}

// interpolateWrapped linearly interpolates the cut at angle, treating the
// axis as circular over [0, 360).
func (c *cut) interpolateWrapped(angle float64) float64 {
	n := len(c.angles)
	if n == 1 {
		return c.gains[0]
	}
	hi := sort.SearchFloat64s(c.angles, angle)
	if hi == 0 || hi == n {
		// Between the last sample and the first one across the seam.
		lo := n - 1
		span := c.angles[0] + 360 - c.angles[lo]
		if span == 0 {
			return c.gains[lo]
		}
		offset := angle - c.angles[lo]
		if offset < 0 {
			offset += 360
		}
		w := offset / span
		return c.gains[lo]*(1-w) + c.gains[0]*w
	}
	lo := hi - 1
	w := (angle - c.angles[lo]) / (c.angles[hi] - c.angles[lo])
	return c.gains[lo]*(1-w) + c.gains[hi]*w
}

// interpolateClamped linearly interpolates the cut at angle, clamping to the
// edge samples outside the measured range.
func (c *cut) interpolateClamped(angle float64) float64 {
	n := len(c.angles)
	hi := sort.SearchFloat64s(c.angles, angle)
	if hi == 0 {
		return c.gains[0]
	}
	if hi == n {
		return c.gains[n-1]
	}
	lo := hi - 1
	w := (angle - c.angles[lo]) / (c.angles[hi] - c.angles[lo])
	return c.gains[lo]*(1-w) + c.gains[hi]*w
}

// set replaces the cut contents with the map's sorted angle/gain pairs.
func (c *cut) set(points map[float64]float64) {
	c.angles = make([]float64, 0, len(points))
	for a := range points {
		c.angles = append(c.angles, a)
	}
	sort.Float64s(c.angles)
	c.gains = make([]float64, len(c.angles))
	for i, a := range c.angles {
		c.gains[i] = points[a]
	}
}

func normalizeAzimuth(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func clampElevation(deg float64) float64 {
	if deg < -90 {
		return -90
	}
	if deg > 90 {
		return 90
	}
	return deg
}

// sectionFor classifies an XML element name as an azimuth or elevation cut
// container.
func sectionFor(tag string) string {
	tag = strings.ToLower(tag)
	switch {
	case strings.Contains(tag, "azimuth"):
		return "azimuth"
	case strings.Contains(tag, "elevation"):
		return "elevation"
	default:
		return ""
	}
}
