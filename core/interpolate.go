package core

import "sort"

// InterpolateTerrainLoss maps the sparse polar loss lattice onto the dense
// Cartesian grid. The azimuth axis is wrapped by appending a synthetic 360°
// column equal to the 0° column, so interpolation is continuous across the
// seam. Per cell the cost is one binary search on each polar axis plus
// constant blending arithmetic, which keeps interactive grid sizes cheap.
//
// Distance lookups clamp to the nearest edge bracket: cells closer than the
// first sample or farther than the last reuse the edge row rather than
// extrapolating.
func InterpolateTerrainLoss(grid *CoverageGrid, lattice *RadialSampleLattice) []float64 {
	out := make([]float64, grid.Cells())
	if len(lattice.DistancesKm) == 0 || len(lattice.AzimuthsDeg) == 0 {
		return out
	}

	// Wrap the azimuth axis once: [a0..aN) plus the synthetic seam column.
	wrapAz := make([]float64, len(lattice.AzimuthsDeg)+1)
	copy(wrapAz, lattice.AzimuthsDeg)
	wrapAz[len(wrapAz)-1] = 360

	rows := make([][]float64, len(lattice.LossDB))
	for j, row := range lattice.LossDB {
		wrapped := make([]float64, len(row)+1)
		copy(wrapped, row)
		wrapped[len(wrapped)-1] = row[0]
		rows[j] = wrapped
	}

	dists := lattice.DistancesKm
	for i := range out {
		if grid.OutOfRange[i] {
			continue
		}
		d := grid.DistKm[i]
		az := grid.AzimuthDeg[i]

		// A single-row lattice has no distance bracket: every cell takes
		// the azimuth-interpolated value of the only row.
		if len(dists) == 1 {
			out[i] = interpAzimuth(wrapAz, rows[0], az)
			continue
		}

		// Bracketing distance rows d0 <= d <= d1, clamped at the axis
		// edges. Clamp the high side first so both clamps hold together.
		hi := sort.SearchFloat64s(dists, d)
		if hi >= len(dists) {
			hi = len(dists) - 1
		}
		if hi == 0 {
			hi = 1
		}
		lo := hi - 1

		wd := 0.0
		if dists[hi] != dists[lo] {
			wd = (d - dists[lo]) / (dists[hi] - dists[lo])
		}
		if wd < 0 {
			wd = 0
		} else if wd > 1 {
			wd = 1
		}

		loss0 := interpAzimuth(wrapAz, rows[lo], az)
		loss1 := interpAzimuth(wrapAz, rows[hi], az)
		out[i] = loss0*(1-wd) + loss1*wd
	}
	return out
}

// interpAzimuth linearly interpolates one wrapped lattice row at azimuth az.
// The wrapped axis covers [0, 360] so every az in [0, 360) has a bracket.
func interpAzimuth(wrapAz, row []float64, az float64) float64 {
	hi := sort.SearchFloat64s(wrapAz, az)
	if hi == 0 {
		return row[0]
	}
	if hi >= len(wrapAz) {
		return row[len(row)-1]
	}
	lo := hi - 1
	if wrapAz[hi] == wrapAz[lo] {
		return row[lo]
	}
	w := (az - wrapAz[lo]) / (wrapAz[hi] - wrapAz[lo])
	return row[lo]*(1-w) + row[hi]*w
}
