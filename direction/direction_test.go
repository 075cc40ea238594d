package direction

import (
	"math"
	"testing"

	"github.com/skyproj/wcscoord/coordinate"
	"github.com/skyproj/wcscoord/projection"
)

func tanCoord(t *testing.T) *Coordinate {
	t.Helper()
	proj, err := projection.New(projection.TAN, nil)
	if err != nil {
		t.Fatalf("projection.New: %v", err)
	}
	c, err := New([2]float64{256, 256}, [2]float64{0, 0}, [2]float64{-1e-4, 1e-4}, nil, proj, J2000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestTANAtReference(t *testing.T) {
	// spec.md §8 scenario 2.
	c := tanCoord(t)
	w, err := c.ToWorld([]float64{256, 256})
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	if math.Abs(w[0]) > 1e-12 || math.Abs(w[1]) > 1e-12 {
		t.Fatalf("ToWorld(refpix) = %v, want [0,0]", w)
	}
}

func TestTANRoundTrip(t *testing.T) {
	c := tanCoord(t)
	p := []float64{300, 200}
	w, err := c.ToWorld(p)
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	got, err := c.ToPixel(w)
	if err != nil {
		t.Fatalf("ToPixel: %v", err)
	}
	for i := range p {
		if math.Abs(got[i]-p[i]) > 1e-6 {
			t.Fatalf("round trip mismatch at %d: got %v want %v", i, got, p)
		}
	}
}

func TestToMixCoupled(t *testing.T) {
	c := tanCoord(t)
	p := []float64{300, 210}
	w, err := c.ToWorld(p)
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	// Fix world axis 0 (longitude) and pixel axis 1, solve for the rest.
	in := coordinate.MixInput{
		WorldIn:   []float64{w[0], 0},
		PixelIn:   []float64{0, p[1]},
		WorldAxes: []bool{true, false},
		PixelAxes: []bool{false, true},
	}
	out, err := c.ToMix(in)
	if err != nil {
		t.Fatalf("ToMix: %v", err)
	}
	if math.Abs(out.PixelOut[0]-p[0]) > 1e-4 {
		t.Fatalf("ToMix pixel[0] = %v, want ~%v", out.PixelOut[0], p[0])
	}
	if math.Abs(out.WorldOut[1]-w[1]) > 1e-8 {
		t.Fatalf("ToMix world[1] = %v, want ~%v", out.WorldOut[1], w[1])
	}
}
