// Package rf holds the propagation-model pieces the coverage engine consumes
// as capabilities: power-metric conversions and the knife-edge diffraction
// model.
package rf

// dipoleToIsotropicDB is the fixed gain of a half-wave dipole over an
// isotropic radiator.
const dipoleToIsotropicDB = 2.15

// ERPToEIRP converts effective radiated power (dBm, dipole-referenced) to
// effective isotropic radiated power (dBm).
func ERPToEIRP(erpDBm float64) float64 {
	return erpDBm + dipoleToIsotropicDB
}

// EIRPToERP is the inverse conversion.
func EIRPToERP(eirpDBm float64) float64 {
	return eirpDBm - dipoleToIsotropicDB
}
