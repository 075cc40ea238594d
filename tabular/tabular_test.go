package tabular

import (
	"math"
	"testing"

	"github.com/skyproj/wcscoord/record"
)

func mustNew(t *testing.T, pixels, worlds []float64) *Coordinate {
	t.Helper()
	c, err := New(pixels, worlds, "Wavelength", "nm")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestInterpolation(t *testing.T) {
	c := mustNew(t, []float64{0, 1, 2, 3}, []float64{500, 510, 530, 540})
	world, err := c.ToWorld([]float64{1.5})
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	if math.Abs(world[0]-520) > 1e-9 {
		t.Fatalf("world = %v, want 520", world[0])
	}
}

func TestExtrapolation(t *testing.T) {
	c := mustNew(t, []float64{0, 1, 2}, []float64{100, 110, 120})
	world, err := c.ToWorld([]float64{5})
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	if math.Abs(world[0]-150) > 1e-9 {
		t.Fatalf("world = %v, want 150 (extrapolated)", world[0])
	}
}

func TestRoundTrip(t *testing.T) {
	c := mustNew(t, []float64{0, 1, 2, 3}, []float64{500, 510, 530, 540})
	pixel, err := c.ToPixel([]float64{520})
	if err != nil {
		t.Fatalf("ToPixel: %v", err)
	}
	if math.Abs(pixel[0]-1.5) > 1e-9 {
		t.Fatalf("pixel = %v, want 1.5", pixel[0])
	}
}

func TestRejectsMismatchedTables(t *testing.T) {
	if _, err := New([]float64{0, 1}, []float64{0}, "x", ""); err == nil {
		t.Fatalf("expected error for mismatched table lengths")
	}
}

func TestRejectsNonIncreasingPixels(t *testing.T) {
	if _, err := New([]float64{0, 0, 2}, []float64{0, 1, 2}, "x", ""); err == nil {
		t.Fatalf("expected error for non-strictly-increasing pixel table")
	}
}

func TestFixedGeometrySettersFail(t *testing.T) {
	c := mustNew(t, []float64{0, 1, 2}, []float64{0, 1, 2})
	if err := c.SetReferencePixel([]float64{5}); err == nil {
		t.Fatalf("expected error: tabular reference pixel is fixed")
	}
	if err := c.SetIncrement([]float64{5}); err == nil {
		t.Fatalf("expected error: tabular increment is fixed")
	}
}

func TestSaveRestore(t *testing.T) {
	c := mustNew(t, []float64{0, 1, 2, 3}, []float64{500, 510, 530, 540})
	rec := record.New()
	if err := c.Save(rec, "tabular0"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	dup := mustNew(t, []float64{0, 1}, []float64{0, 1})
	if err := dup.Restore(rec, "tabular0"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(dup.pixelValues) != 4 || dup.worldValues[2] != 530 {
		t.Fatalf("restored tables = %v / %v", dup.pixelValues, dup.worldValues)
	}
}
