// Package parcel lifts an idealized air parcel through an observed
// atmospheric sounding. The ascent runs dry-adiabatically until the
// parcel saturates, then pseudo-adiabatically, and reports the derived
// transition levels: cloud base (LCL), thermal top, and cloud top.
package parcel

import (
	"errors"
	"fmt"
	"math"

	"github.com/aeharding/skewt/pkg/atmos"
	"github.com/aeharding/skewt/pkg/curvemath"
)

// ErrNoConvection reports that the lifted parcel never became cooler
// than the environment within the sampled range. It marks the absence
// of a meaningful trajectory, not a computation failure; callers branch
// with errors.Is.
var ErrNoConvection = errors.New("parcel: dry ascent never crosses the environmental temperature")

// Sounding is a vertical profile of the atmosphere. The three slices
// are index-aligned: element i of each refers to the same level.
// Pressure must vary monotonically with height; levels may be ordered
// bottom-up or top-down.
type Sounding struct {
	Pressure    []float64 // hPa
	Height      []float64 // geopotential height, m
	Temperature []float64 // K
}

// Validate checks that the sounding is usable for a parcel ascent.
func (s Sounding) Validate() error {
	n := len(s.Pressure)
	if len(s.Height) != n || len(s.Temperature) != n {
		return fmt.Errorf("parcel: sounding slices have differing lengths (%d, %d, %d)",
			n, len(s.Height), len(s.Temperature))
	}
	if n < 2 {
		return fmt.Errorf("parcel: sounding needs at least 2 levels, got %d", n)
	}
	ascending := s.Height[1] > s.Height[0]
	for i := 1; i < n; i++ {
		if ascending && (s.Height[i] <= s.Height[i-1] || s.Pressure[i] >= s.Pressure[i-1]) {
			return fmt.Errorf("parcel: sounding not monotonic at level %d", i)
		}
		if !ascending && (s.Height[i] >= s.Height[i-1] || s.Pressure[i] <= s.Pressure[i-1]) {
			return fmt.Errorf("parcel: sounding not monotonic at level %d", i)
		}
	}
	return nil
}

// normalized returns the sounding ordered by ascending height. The
// original slices are never modified.
func (s Sounding) normalized() Sounding {
	if len(s.Height) < 2 || s.Height[0] < s.Height[len(s.Height)-1] {
		return s
	}
	n := len(s.Height)
	out := Sounding{
		Pressure:    make([]float64, n),
		Height:      make([]float64, n),
		Temperature: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		j := n - 1 - i
		out.Pressure[i] = s.Pressure[j]
		out.Height[i] = s.Height[j]
		out.Temperature[i] = s.Temperature[j]
	}
	return out
}

// Result is a completed parcel trajectory. Curves are ordered sequences
// of (X=value in K, Y=pressure in hPa) samples, bottom-up. Moist and
// Isohume are nil unless the parcel saturated below its thermal top.
type Result struct {
	Dry     []curvemath.Point `json:"dry"`
	Moist   []curvemath.Point `json:"moist,omitempty"`
	Isohume []curvemath.Point `json:"isohume,omitempty"`

	PThermalTop    float64 `json:"pThermalTop"`    // hPa
	ElevThermalTop float64 `json:"elevThermalTop"` // m
	PCloudTop      float64 `json:"pCloudTop"`      // hPa
}

// Trajectory lifts a parcel with the given surface temperature (K),
// pressure (hPa), and dewpoint (K) through the sounding, sampling the
// ascent at steps+1 evenly spaced heights per phase. It returns
// ErrNoConvection when the dry ascent never becomes cooler than the
// environment. Failure to find an equilibrium level during the moist
// phase is not an error; PCloudTop then defaults to the pressure at the
// top of the sounding.
func Trajectory(snd Sounding, steps int, sfcTemp, sfcPressure, sfcDewpoint float64) (*Result, error) {
	if steps < 1 {
		panic("parcel: steps must be a positive integer")
	}
	if err := snd.Validate(); err != nil {
		return nil, err
	}
	snd = snd.normalized()

	scale, err := curvemath.NewPressureScale(snd.Pressure, snd.Height)
	if err != nil {
		return nil, fmt.Errorf("parcel: building pressure scale: %w", err)
	}

	// The parcel carries the surface mixing ratio unchanged until it
	// saturates.
	mRatio := atmos.MixingRatio(atmos.SaturationVaporPressure(sfcDewpoint), sfcPressure)

	top := len(snd.Height) - 1
	start := scale.HeightAt(sfcPressure)
	end := math.Max(start, snd.Height[top])
	step := (end - start) / float64(steps)

	// Dry phase. Sample heights are computed from the integer index so
	// that repeated float addition cannot drift.
	heights := make([]float64, 0, steps+1)
	pressures := make([]float64, 0, steps+1)
	temps := make([]float64, 0, steps+1)
	dewpoints := make([]float64, 0, steps+1)
	for i := 0; i <= steps; i++ {
		h := start + float64(i)*step
		p := scale.PressureAt(h)
		heights = append(heights, h)
		pressures = append(pressures, p)
		temps = append(temps, atmos.DryLapse(p, sfcTemp, sfcPressure))
		dewpoints = append(dewpoints, atmos.Dewpoint(atmos.VaporPressure(p, mRatio)))
	}

	envCurve := curvemath.Zip(snd.Height, snd.Temperature)
	dryTempCurve := curvemath.Zip(heights, temps)
	dryDewCurve := curvemath.Zip(heights, dewpoints)

	cloudBase, saturates := curvemath.FirstIntersection(dryTempCurve, dryDewCurve)
	thermalTop, ok := curvemath.FirstIntersection(dryTempCurve, envCurve)
	if !ok {
		return nil, ErrNoConvection
	}

	res := &Result{PCloudTop: snd.Pressure[top]}

	if saturates && cloudBase.X < thermalTop.X {
		// The parcel saturates before losing its unsaturated buoyancy:
		// the thermal top becomes the cloud base and a moist phase
		// continues the ascent from there.
		thermalTop = cloudBase
		pCloudBase := scale.PressureAt(cloudBase.X)

		moistHeights, moistTemps, moistPressures := integrateMoist(scale, cloudBase, pCloudBase, step, end)

		res.Moist = curvemath.Zip(moistTemps, moistPressures)
		if eq, found := curvemath.FirstIntersection(curvemath.Zip(moistHeights, moistTemps), envCurve); found {
			pEquilibrium := scale.PressureAt(eq.X)
			res.PCloudTop = pEquilibrium
			res.Moist = capCurve(res.Moist, eq.Y, pEquilibrium)
		}

		// The isohume the parcel followed before condensation, capped
		// with the cloud-base point. Temperature and dewpoint coincide
		// there.
		res.Isohume = capCurve(curvemath.Zip(dewpoints, pressures), cloudBase.Y, pCloudBase)
	}

	pThermalTop := scale.PressureAt(thermalTop.X)
	res.Dry = capCurve(curvemath.Zip(temps, pressures), thermalTop.Y, pThermalTop)
	res.PThermalTop = pThermalTop
	res.ElevThermalTop = thermalTop.X

	return res, nil
}

// integrateMoist steps the saturated parcel from the cloud base to the
// end height with the dry-phase height increment, advancing temperature
// with an explicit Euler update of the pseudo-adiabatic lapse rate.
func integrateMoist(scale *curvemath.PressureScale, cloudBase curvemath.Point, pCloudBase, step, end float64) (heights, temps, pressures []float64) {
	count := 0
	if step > 0 {
		count = int((end - cloudBase.X) / step)
	}

	t := cloudBase.Y
	pPrev := pCloudBase
	heights = make([]float64, 0, count+1)
	temps = make([]float64, 0, count+1)
	pressures = make([]float64, 0, count+1)
	for i := 0; i <= count; i++ {
		h := cloudBase.X + float64(i)*step
		p := scale.PressureAt(h)
		t += (p - pPrev) * atmos.MoistGradientT(p, t)
		pPrev = p
		heights = append(heights, h)
		temps = append(temps, t)
		pressures = append(pressures, p)
	}
	return heights, temps, pressures
}

// capCurve truncates a (value, pressure) curve to samples strictly
// below the boundary pressure, then appends the exact boundary point.
// Filtering never relies on a boundary sample surviving the cut.
func capCurve(curve []curvemath.Point, value, pressure float64) []curvemath.Point {
	out := make([]curvemath.Point, 0, len(curve)+1)
	for _, pt := range curve {
		if pt.Y > pressure {
			out = append(out, pt)
		}
	}
	return append(out, curvemath.Point{X: value, Y: pressure})
}
