package curvemath

import (
	"math"
	"testing"
)

func TestZip(t *testing.T) {
	points := Zip([]float64{1, 2, 3}, []float64{10, 20, 30})
	expected := []Point{{1, 10}, {2, 20}, {3, 30}}
	if len(points) != len(expected) {
		t.Fatalf("Zip returned %d points, expected %d", len(points), len(expected))
	}
	for i := range expected {
		if points[i] != expected[i] {
			t.Errorf("points[%d] = %v, expected %v", i, points[i], expected[i])
		}
	}
}

func TestZipPanicsOnLengthMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on mismatched lengths")
		}
	}()
	Zip([]float64{1, 2}, []float64{1})
}

func TestPressureScaleRoundTrip(t *testing.T) {
	// Roughly standard-atmosphere levels.
	pressure := []float64{1000, 925, 850, 700, 500, 300, 200}
	height := []float64{110, 780, 1460, 3010, 5570, 9160, 11780}

	scale, err := NewPressureScale(pressure, height)
	if err != nil {
		t.Fatalf("NewPressureScale: %v", err)
	}

	for i, p := range pressure {
		h := scale.HeightAt(p)
		if math.Abs(h-height[i]) > 1e-6 {
			t.Errorf("HeightAt(%v) = %v, expected %v", p, h, height[i])
		}
		back := scale.PressureAt(h)
		if math.Abs(back-p) > 1e-6 {
			t.Errorf("PressureAt(HeightAt(%v)) = %v, expected %v", p, back, p)
		}
	}

	// Round trip off-sample too.
	for h := 200.0; h < 11000; h += 731.0 {
		p := scale.PressureAt(h)
		if back := scale.HeightAt(p); math.Abs(back-h) > 1e-6 {
			t.Errorf("HeightAt(PressureAt(%v)) = %v", h, back)
		}
	}
}

func TestPressureScaleMonotonic(t *testing.T) {
	pressure := []float64{1000, 850, 700, 500}
	height := []float64{100, 1450, 3000, 5600}

	scale, err := NewPressureScale(pressure, height)
	if err != nil {
		t.Fatalf("NewPressureScale: %v", err)
	}

	prev := scale.HeightAt(1000)
	for p := 995.0; p >= 500; p -= 5 {
		h := scale.HeightAt(p)
		if h <= prev {
			t.Fatalf("HeightAt not strictly decreasing in pressure: HeightAt(%v) = %v, previous %v", p, h, prev)
		}
		prev = h
	}
}

func TestPressureScaleDescendingHeightInput(t *testing.T) {
	// Same sounding ordered top-down.
	pressure := []float64{500, 700, 850, 1000}
	height := []float64{5600, 3000, 1450, 100}

	scale, err := NewPressureScale(pressure, height)
	if err != nil {
		t.Fatalf("NewPressureScale: %v", err)
	}
	if h := scale.HeightAt(850); math.Abs(h-1450) > 1e-6 {
		t.Errorf("HeightAt(850) = %v, expected 1450", h)
	}
	if p := scale.PressureAt(3000); math.Abs(p-700) > 1e-6 {
		t.Errorf("PressureAt(3000) = %v, expected 700", p)
	}
}

func TestPressureScaleErrors(t *testing.T) {
	if _, err := NewPressureScale([]float64{1000}, []float64{100}); err == nil {
		t.Error("expected error for a single sample")
	}
	if _, err := NewPressureScale([]float64{1000, 900}, []float64{100}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if _, err := NewPressureScale([]float64{1000, 900, 950}, []float64{100, 1000, 500}); err == nil {
		t.Error("expected error for non-monotonic input")
	}
}

func TestFirstIntersection(t *testing.T) {
	tests := []struct {
		name      string
		a         []Point
		b         []Point
		expectHit bool
		expectedX float64
		expectedY float64
		epsilon   float64
	}{
		{
			name:      "simple crossing lines",
			a:         []Point{{0, 0}, {10, 10}},
			b:         []Point{{0, 10}, {10, 0}},
			expectHit: true,
			expectedX: 5,
			expectedY: 5,
			epsilon:   1e-12,
		},
		{
			name:      "no crossing",
			a:         []Point{{0, 0}, {10, 1}},
			b:         []Point{{0, 5}, {10, 6}},
			expectHit: false,
		},
		{
			name:      "exact equality at a sample counts",
			a:         []Point{{0, 0}, {5, 3}, {10, 6}},
			b:         []Point{{0, 6}, {5, 3}, {10, 0}},
			expectHit: true,
			expectedX: 5,
			expectedY: 3,
			epsilon:   1e-12,
		},
		{
			name: "first of several crossings wins",
			a:    []Point{{0, 0}, {2, 2}, {4, 0}, {6, 2}},
			b:    []Point{{0, 1}, {2, 1}, {4, 1}, {6, 1}},
			// a rises through 1 at x=1, crosses again later
			expectHit: true,
			expectedX: 1,
			expectedY: 1,
			epsilon:   1e-12,
		},
		{
			name:      "different x-grids",
			a:         []Point{{0, 0}, {10, 10}},
			b:         []Point{{1, 9}, {3, 7}, {9, 1}},
			expectHit: true,
			expectedX: 5,
			expectedY: 5,
			epsilon:   1e-12,
		},
		{
			name:      "disjoint domains",
			a:         []Point{{0, 0}, {1, 1}},
			b:         []Point{{5, 0}, {6, 1}},
			expectHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstIntersection(tt.a, tt.b)
			if ok != tt.expectHit {
				t.Fatalf("FirstIntersection hit = %v, expected %v", ok, tt.expectHit)
			}
			if !tt.expectHit {
				return
			}
			if math.Abs(got.X-tt.expectedX) > tt.epsilon || math.Abs(got.Y-tt.expectedY) > tt.epsilon {
				t.Errorf("FirstIntersection = %v, expected (%v, %v)", got, tt.expectedX, tt.expectedY)
			}
		})
	}
}
