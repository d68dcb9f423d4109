package core

import (
	"fmt"
	"math"

	"github.com/veteranop/vetrender/model"
)

// CoverageGrid is the dense Cartesian evaluation grid centred on the
// transmitter. Cells are stored row-major: row index follows the y axis
// (north offset), column index the x axis (east offset). All derived arrays
// share the same indexing.
type CoverageGrid struct {
	// Resolution is the side length in cells; every slice below holds
	// Resolution*Resolution values.
	Resolution int

	// XKm and YKm are Cartesian offsets from the transmitter in km.
	XKm []float64
	YKm []float64

	// DistKm = hypot(x, y); AzimuthDeg is measured clockwise from north
	// and normalized into [0, 360).
	DistKm     []float64
	AzimuthDeg []float64

	// OutOfRange marks cells beyond MaxDistanceKm. Masked cells never
	// receive a computed power value.
	OutOfRange []bool

	MaxDistanceKm float64
}

// Index maps (row, col) to the flat cell index.
func (g *CoverageGrid) Index(row, col int) int { return row*g.Resolution + col }

// Cells returns the total cell count.
func (g *CoverageGrid) Cells() int { return g.Resolution * g.Resolution }

// Axis returns the shared 1-D coordinate axis: Resolution evenly spaced
// values spanning [-MaxDistanceKm, MaxDistanceKm]. Both grid axes use it.
func (g *CoverageGrid) Axis() []float64 {
	return linspace(-g.MaxDistanceKm, g.MaxDistanceKm, g.Resolution)
}

// BuildGrid constructs the evaluation grid for a validated config. The grid
// is square, symmetric about the origin, and axis-aligned; the transmitter
// sits at the exact centre when Resolution is odd, between the four centre
// cells otherwise.
func BuildGrid(cfg *model.TransmitterConfig) (*CoverageGrid, error) {
	if cfg.Resolution < 2 {
		return nil, fmt.Errorf("%w: resolution %d, need at least 2", model.ErrInvalidConfig, cfg.Resolution)
	}
	if cfg.MaxDistanceKm <= 0 {
		return nil, fmt.Errorf("%w: max distance %.3f km, must be positive", model.ErrInvalidConfig, cfg.MaxDistanceKm)
	}

	n := cfg.Resolution
	axis := linspace(-cfg.MaxDistanceKm, cfg.MaxDistanceKm, n)

	g := &CoverageGrid{
		Resolution:    n,
		XKm:           make([]float64, n*n),
		YKm:           make([]float64, n*n),
		DistKm:        make([]float64, n*n),
		AzimuthDeg:    make([]float64, n*n),
		OutOfRange:    make([]bool, n*n),
		MaxDistanceKm: cfg.MaxDistanceKm,
	}

	for row := 0; row < n; row++ {
		y := axis[row]
		for col := 0; col < n; col++ {
			x := axis[col]
			i := g.Index(row, col)
			g.XKm[i] = x
			g.YKm[i] = y
			g.DistKm[i] = math.Hypot(x, y)
			g.AzimuthDeg[i] = azimuthFrom(x, y)
			g.OutOfRange[i] = g.DistKm[i] > cfg.MaxDistanceKm
		}
	}
	return g, nil
}

// azimuthFrom converts a Cartesian offset (x east, y north) to a bearing in
// degrees clockwise from north, normalized into [0, 360).
func azimuthFrom(x, y float64) float64 {
	deg := math.Atan2(x, y) * 180 / math.Pi
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// linspace returns n evenly spaced values from lo to hi inclusive. n must be
// at least 2; callers validate before reaching here.
func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	// Pin the last sample to hi so accumulated rounding can never push it
	// past the interval end.
	out[n-1] = hi
	return out
}
