package spectral

import (
	"math"
	"testing"

	"github.com/skyproj/wcscoord/record"
)

func TestRoundTrip(t *testing.T) {
	c := New(10, 1.4204057e9, 1e5, 0)
	world, err := c.ToWorld([]float64{42})
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	pixel, err := c.ToPixel(world)
	if err != nil {
		t.Fatalf("ToPixel: %v", err)
	}
	if math.Abs(pixel[0]-42) > 1e-9 {
		t.Fatalf("pixel = %v, want 42", pixel[0])
	}
}

func TestAtReference(t *testing.T) {
	c := New(10, 1.4204057e9, 1e5, 0)
	world, err := c.ToWorld([]float64{10})
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	if world[0] != 1.4204057e9 {
		t.Fatalf("world = %v, want refval", world[0])
	}
}

func TestSetWorldAxisUnitsScalesIncrement(t *testing.T) {
	c := New(0, 1e9, 1e6, 1.42e9)
	if err := c.SetWorldAxisUnits([]string{"kHz"}); err != nil {
		t.Fatalf("SetWorldAxisUnits: %v", err)
	}
	if math.Abs(c.refVal-1e6) > 1e-6 {
		t.Fatalf("refVal after unit change = %v, want 1e6", c.refVal)
	}
	if math.Abs(c.inc-1e3) > 1e-9 {
		t.Fatalf("inc after unit change = %v, want 1e3", c.inc)
	}
}

func TestSaveRestore(t *testing.T) {
	c := New(10, 1.4204057e9, 1e5, 1.420405751e9)
	rec := record.New()
	if err := c.Save(rec, "spectral0"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	dup := New(0, 0, 1, 0)
	if err := dup.Restore(rec, "spectral0"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if dup.refPix != c.refPix || dup.refVal != c.refVal || dup.inc != c.inc || dup.restFrequency != c.restFrequency {
		t.Fatalf("restored coordinate does not match original: %+v vs %+v", dup, c)
	}
}

func TestZeroIncrementFails(t *testing.T) {
	c := New(0, 1e9, 0, 0)
	if _, err := c.ToPixel([]float64{1e9}); err == nil {
		t.Fatalf("expected error for zero increment")
	}
}
