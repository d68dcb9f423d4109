package core

import "fmt"

// SampleAntennaGains queries the pattern provider for every non-masked cell.
// Elevation is fixed at the horizon (0°), the same simplifying assumption
// the desktop tool makes: receiver height differences are absorbed by the
// diffraction model, not the pattern.
//
// A provider failure is fatal because gain feeds every cell of the field.
func SampleAntennaGains(grid *CoverageGrid, pattern AntennaPatternProvider) ([]float64, error) {
	gains := make([]float64, grid.Cells())
	for i, az := range grid.AzimuthDeg {
		if grid.OutOfRange[i] {
			continue
		}
		g, err := pattern.Gain(az, 0)
		if err != nil {
			return nil, fmt.Errorf("%w: azimuth %.2f: %v", ErrAntennaProvider, az, err)
		}
		gains[i] = g
	}
	return gains, nil
}
