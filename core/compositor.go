package core

// MaskedPowerDBm is the sentinel written to every out-of-range cell of the
// received-power field. Consumers can filter on it without consulting the
// mask.
const MaskedPowerDBm = -999.0

// ComposePower combines EIRP, antenna gain, free-space loss and terrain loss
// into the received-power field:
//
//	rx = eirp + gain - fspl - terrainLoss
//
// terrainLoss may be nil for terrain-disabled computations. Masked cells are
// overwritten with MaskedPowerDBm regardless of any intermediate value.
func ComposePower(grid *CoverageGrid, eirpDBm float64, gains, fspl, terrainLoss []float64) []float64 {
	rx := make([]float64, grid.Cells())
	for i := range rx {
		if grid.OutOfRange[i] {
			rx[i] = MaskedPowerDBm
			continue
		}
		p := eirpDBm + gains[i] - fspl[i]
		if terrainLoss != nil {
			p -= terrainLoss[i]
		}
		rx[i] = p
	}
	return rx
}
