// Package atmos provides thermodynamic primitives for parcel-ascent
// calculations: adiabatic lapse, humidity conversions, and a standard
// atmosphere height estimate. Pressures are in hPa, temperatures in
// Kelvin, heights in meters.
package atmos

import "math"

// Physical constants (SI units where applicable)
const (
	// Rd is the specific gas constant for dry air (J/kg·K)
	Rd = 287.0
	// Cpd is the specific heat of dry air at constant pressure (J/kg·K)
	Cpd = 1005.0
	// Epsilon is the ratio of the molecular weight of water vapor to dry air
	Epsilon = 18.01528 / 28.9644
	// Lv is the latent heat of vaporization of water (J/kg)
	Lv = 2501000.0
)

// DryLapse returns the temperature of a dry-adiabatically lifted parcel
// at pressure p, given temperature t0 at reference pressure p0
// (Poisson's equation).
func DryLapse(p, t0, p0 float64) float64 {
	return t0 * math.Pow(p/p0, Rd/Cpd)
}

// MixingRatio returns the mass mixing ratio of water vapor (kg/kg) for
// the given partial pressure and total pressure. The result is
// non-finite when totalPressure equals partialPressure; callers are
// expected to stay within physically valid inputs.
func MixingRatio(partialPressure, totalPressure float64) float64 {
	return mixingRatio(partialPressure, totalPressure, Epsilon)
}

func mixingRatio(partialPressure, totalPressure, weightRatio float64) float64 {
	return weightRatio * partialPressure / (totalPressure - partialPressure)
}

// SaturationVaporPressure returns the saturation water vapor pressure
// (hPa) at temperature t, using Bolton's exponential approximation.
func SaturationVaporPressure(t float64) float64 {
	tc := t - 273.15
	return 6.112 * math.Exp((17.67*tc)/(tc+243.5))
}

// saturationMixingRatio is the mixing ratio of a saturated parcel at
// pressure p and temperature t.
func saturationMixingRatio(p, t float64) float64 {
	return MixingRatio(SaturationVaporPressure(t), p)
}

// MoistGradientT returns the pseudo-adiabatic temperature lapse rate
// per unit pressure (K/hPa) at pressure p and temperature t. This is a
// rate, not a temperature; callers integrate it over pressure steps.
func MoistGradientT(p, t float64) float64 {
	rs := saturationMixingRatio(p, t)
	return (1 / p) * ((Rd*t + Lv*rs) / (Cpd + (Lv*Lv*rs*Epsilon)/(Rd*t*t)))
}

// VaporPressure returns the partial pressure of water vapor (hPa) at
// total pressure p for the given mass mixing ratio. Inverse of
// MixingRatio.
func VaporPressure(p, mixing float64) float64 {
	return p * mixing / (Epsilon + mixing)
}

// Dewpoint returns the temperature (K) at which the saturation vapor
// pressure equals the given partial pressure. Inverse of
// SaturationVaporPressure.
func Dewpoint(partialPressure float64) float64 {
	val := math.Log(partialPressure / 6.112)
	return 273.15 + (243.5*val)/(17.67-val)
}

// Elevation estimates the height (m) of a pressure level from the ICAO
// standard atmosphere (288.15 K and 1013.25 hPa at sea level, lapse
// rate -6.5 K/km).
func Elevation(p float64) float64 {
	const (
		t0 = 288.15
		p0 = 1013.25
		l  = -6.5e-3
		g  = 9.80665
	)
	return (t0 / l) * (math.Pow(p/p0, (-l*Rd)/g) - 1)
}
