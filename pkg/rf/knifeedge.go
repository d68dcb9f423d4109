package rf

import "math"

// KnifeEdgeModel estimates terrain diffraction loss from a single dominant
// obstruction using the Fresnel-Kirchhoff knife-edge approximation. It
// implements the engine's DiffractionLossModel capability.
type KnifeEdgeModel struct{}

// Loss returns the excess loss in dB for the path described by the elevation
// profile (metres, transmitter end first). The antennas sit txHeightM and
// rxHeightM above the first and last profile samples; the worst obstruction
// is measured against the straight line between them.
//
// distanceAxisKm spans 0..path length with the profile's point count. The
// single-edge approximation only needs the obstruction height, so the axis
// is used for a length sanity check, not for per-sample geometry.
func (KnifeEdgeModel) Loss(txHeightM, rxHeightM float64, profileM []float64, frequencyMHz float64, distanceAxisKm []float64) float64 {
	if len(profileM) < 2 || frequencyMHz <= 0 {
		return 0
	}
	if len(distanceAxisKm) > 0 && len(distanceAxisKm) != len(profileM) {
		return 0
	}

	wavelengthM := 300.0 / frequencyMHz

	txElev := profileM[0] + txHeightM
	rxElev := profileM[len(profileM)-1] + rxHeightM

	// Worst clearance above the TX->RX line of sight.
	n := len(profileM)
	step := (rxElev - txElev) / float64(n-1)
	maxObstruction := 0.0
	for i, elev := range profileM {
		los := txElev + float64(i)*step
		if c := elev - los; c > maxObstruction {
			maxObstruction = c
		}
	}
	if maxObstruction <= 0 {
		return 0
	}

	// Fresnel-Kirchhoff diffraction parameter.
	v := maxObstruction * math.Sqrt(2/wavelengthM)

	var loss float64
	switch {
	case v <= -0.8:
		loss = 0
	case v <= 2.4:
		loss = 6.9 + 20*math.Log10(math.Sqrt((v-0.1)*(v-0.1)+1)+v-0.1)
	default:
		loss = 13 + 20*math.Log10(v)
	}
	if loss < 0 {
		return 0
	}
	return loss
}
