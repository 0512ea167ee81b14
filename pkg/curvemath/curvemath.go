// Package curvemath provides the numerical-geometry utilities used by
// the parcel-ascent integrator: a log-pressure height scale, a
// first-intersection finder for sampled curves, and a pairing helper.
// Nothing in this package knows about atmospheric physics.
package curvemath

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/interp"
)

// Point is a single sample of a curve.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Zip combines two equal-length sequences into a sequence of points,
// preserving order.
func Zip(xs, ys []float64) []Point {
	if len(xs) != len(ys) {
		panic("curvemath: Zip sequences must have equal length")
	}
	points := make([]Point, len(xs))
	for i := range xs {
		points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return points
}

// PressureScale is a monotonic, invertible mapping between pressure and
// height, interpolated piecewise-linearly in log-pressure space over a
// set of (pressure, height) samples. Queries outside the sampled range
// clamp to the nearest endpoint.
type PressureScale struct {
	toHeight interp.PiecewiseLinear // over ascending log-pressure
	toLogP   interp.PiecewiseLinear // over ascending height
}

// NewPressureScale builds a PressureScale from parallel pressure and
// height samples. The samples may be ordered by ascending or descending
// height; pressure must vary monotonically opposite to height.
func NewPressureScale(pressure, height []float64) (*PressureScale, error) {
	if len(pressure) != len(height) {
		return nil, fmt.Errorf("curvemath: pressure and height lengths differ (%d != %d)", len(pressure), len(height))
	}
	if len(pressure) < 2 {
		return nil, fmt.Errorf("curvemath: need at least 2 samples, got %d", len(pressure))
	}

	logP := make([]float64, len(pressure))
	for i, p := range pressure {
		logP[i] = math.Log(p)
	}
	h := append([]float64(nil), height...)

	// Normalize to ascending height (descending pressure).
	if h[0] > h[len(h)-1] {
		reverse(h)
		reverse(logP)
	}

	// interp.PiecewiseLinear panics on non-monotonic input, so check
	// here and report an error instead.
	for i := 1; i < len(h); i++ {
		if h[i] <= h[i-1] || logP[i] >= logP[i-1] {
			return nil, fmt.Errorf("curvemath: samples not strictly monotonic at index %d", i)
		}
	}

	s := &PressureScale{}
	if err := s.toLogP.Fit(h, logP); err != nil {
		return nil, fmt.Errorf("curvemath: fitting height scale: %w", err)
	}

	// Ascending height means descending log-pressure; refit reversed.
	logPAsc := append([]float64(nil), logP...)
	hDesc := append([]float64(nil), h...)
	reverse(logPAsc)
	reverse(hDesc)
	if err := s.toHeight.Fit(logPAsc, hDesc); err != nil {
		return nil, fmt.Errorf("curvemath: fitting pressure scale: %w", err)
	}

	return s, nil
}

// HeightAt returns the interpolated height for pressure p.
func (s *PressureScale) HeightAt(p float64) float64 {
	return s.toHeight.Predict(math.Log(p))
}

// PressureAt returns the interpolated pressure at height h. Inverse of
// HeightAt.
func (s *PressureScale) PressureAt(h float64) float64 {
	return math.Exp(s.toLogP.Predict(h))
}

// FirstIntersection returns the first point, scanning from the smallest
// x, where curves a and b cross. The curves may be sampled on different
// x-grids; both must be ordered by ascending x. A sample where the
// curves are exactly equal counts as an intersection at that sample.
// The second return value is false when the curves never cross within
// their overlapping domain.
func FirstIntersection(a, b []Point) (Point, bool) {
	if len(a) < 1 || len(b) < 1 {
		return Point{}, false
	}

	lo := math.Max(a[0].X, b[0].X)
	hi := math.Min(a[len(a)-1].X, b[len(b)-1].X)
	if lo > hi {
		return Point{}, false
	}

	xs := mergeGrids(a, b, lo, hi)

	prevD := math.NaN()
	var prevX, prevYA float64
	for _, x := range xs {
		ya := evalAt(a, x)
		yb := evalAt(b, x)
		d := ya - yb

		if d == 0 {
			return Point{X: x, Y: ya}, true
		}
		if !math.IsNaN(prevD) && (d > 0) != (prevD > 0) {
			// Sign change between the previous sample and this one;
			// both curves are linear on the interval, so the crossing
			// solves exactly.
			t := prevD / (prevD - d)
			cx := prevX + t*(x-prevX)
			cy := prevYA + t*(ya-prevYA)
			return Point{X: cx, Y: cy}, true
		}

		prevD, prevX, prevYA = d, x, ya
	}

	return Point{}, false
}

// mergeGrids collects the x coordinates of both curves within [lo, hi],
// including the bounds, sorted ascending with duplicates removed. Both
// inputs are already sorted, so a linear merge suffices.
func mergeGrids(a, b []Point, lo, hi float64) []float64 {
	xs := make([]float64, 0, len(a)+len(b)+2)
	i, j := 0, 0
	push := func(x float64) {
		if x < lo || x > hi {
			return
		}
		if n := len(xs); n > 0 && xs[n-1] == x {
			return
		}
		xs = append(xs, x)
	}
	push(lo)
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i].X <= b[j].X):
			push(a[i].X)
			i++
		default:
			push(b[j].X)
			j++
		}
	}
	push(hi)
	return xs
}

// evalAt linearly interpolates curve at x. x must lie within the
// curve's sampled range.
func evalAt(curve []Point, x float64) float64 {
	if x <= curve[0].X {
		return curve[0].Y
	}
	n := len(curve)
	if x >= curve[n-1].X {
		return curve[n-1].Y
	}
	// Binary search for the segment containing x.
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if curve[mid].X <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	p0, p1 := curve[lo], curve[hi]
	t := (x - p0.X) / (p1.X - p0.X)
	return p0.Y + t*(p1.Y-p0.Y)
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
