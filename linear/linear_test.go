package linear

import (
	"math"
	"testing"

	"github.com/skyproj/wcscoord/record"
	"gonum.org/v1/gonum/mat"
)

func newRecord() *record.Record { return record.New() }

func mustNew(t *testing.T, refPix, refVal, inc []float64) *Coordinate {
	t.Helper()
	c, err := New([]string{"X", "Y"}, []string{"pixel", "pixel"}, refPix, refVal, inc, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestIdentity(t *testing.T) {
	// spec.md §8 scenario 1: identity 2-axis linear coordinate.
	c := mustNew(t, []float64{0, 0}, []float64{0, 0}, []float64{1, 1})

	w, err := c.ToWorld([]float64{3, 4})
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	if w[0] != 3 || w[1] != 4 {
		t.Fatalf("ToWorld([3,4]) = %v, want [3,4]", w)
	}

	p, err := c.ToPixel([]float64{3, 4})
	if err != nil {
		t.Fatalf("ToPixel: %v", err)
	}
	if p[0] != 3 || p[1] != 4 {
		t.Fatalf("ToPixel([3,4]) = %v, want [3,4]", p)
	}
}

func TestRoundTrip(t *testing.T) {
	pc := mat.NewDense(2, 2, []float64{2, 0.1, -0.1, 1.5})
	c, err := New([]string{"X", "Y"}, []string{"m", "m"}, []float64{10, 20}, []float64{5, -5}, []float64{0.5, 0.25}, pc)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	p := []float64{13, 7}
	w, err := c.ToWorld(p)
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	got, err := c.ToPixel(w)
	if err != nil {
		t.Fatalf("ToPixel: %v", err)
	}
	for i := range p {
		if math.Abs(got[i]-p[i]) > 1e-8 {
			t.Fatalf("round trip mismatch at %d: got %v want %v", i, got, p)
		}
	}
}

func TestSetLinearTransformSymmetric(t *testing.T) {
	c := mustNew(t, []float64{0, 0}, []float64{0, 0}, []float64{1, 1})
	pc := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if err := c.SetLinearTransform(pc); err != nil {
		t.Fatalf("SetLinearTransform: %v", err)
	}
	got := c.LinearTransform()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if got.At(i, j) != pc.At(i, j) {
				t.Fatalf("at(%d,%d) = %v, want %v", i, j, got.At(i, j), pc.At(i, j))
			}
		}
	}
}

func TestSaveRestore(t *testing.T) {
	c := mustNew(t, []float64{1, 2}, []float64{3, 4}, []float64{5, 6})
	rec := newRecord()
	if err := c.Save(rec, "linear0"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c2 := mustNew(t, []float64{0, 0}, []float64{0, 0}, []float64{1, 1})
	if err := c2.Restore(rec, "linear0"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	w1, _ := c.ToWorld([]float64{9, 9})
	w2, _ := c2.ToWorld([]float64{9, 9})
	if w1[0] != w2[0] || w1[1] != w2[1] {
		t.Fatalf("restored coordinate diverges: %v vs %v", w1, w2)
	}
}
