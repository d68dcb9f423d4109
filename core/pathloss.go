package core

import "math"

// fsplConstant is the km/MHz form of the free-space path loss equation:
// FSPL(dB) = 20 log10(d_km) + 20 log10(f_MHz) + 32.44.
const fsplConstant = 32.44

// minDistanceKm floors the distance fed to the logarithm so the cell under
// the transmitter does not blow up. 10 m is well below any grid pitch this
// engine is used at.
const minDistanceKm = 0.01

// FreeSpaceLossDB returns the free-space path loss in dB for a single
// distance/frequency pair, with the near-field floor applied.
func FreeSpaceLossDB(distKm, frequencyMHz float64) float64 {
	if distKm < minDistanceKm {
		distKm = minDistanceKm
	}
	return 20*math.Log10(distKm) + 20*math.Log10(frequencyMHz) + fsplConstant
}

// ComputePathLoss fills a grid-aligned FSPL field. Masked cells are zeroed;
// nothing downstream reads them.
func ComputePathLoss(grid *CoverageGrid, frequencyMHz float64) []float64 {
	loss := make([]float64, grid.Cells())
	for i, d := range grid.DistKm {
		if grid.OutOfRange[i] {
			continue
		}
		loss[i] = FreeSpaceLossDB(d, frequencyMHz)
	}
	return loss
}
