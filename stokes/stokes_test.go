package stokes

import (
	"testing"

	"github.com/skyproj/wcscoord/record"
)

func TestFITSValueTable(t *testing.T) {
	cases := map[Type]int{
		I: 1, Q: 2, U: 3, V: 4,
		RR: -1, LL: -2, RL: -3, LR: -4,
		XX: -5, YY: -6, XY: -7, YX: -8,
	}
	for typ, want := range cases {
		if got := FITSValue(typ); got != want {
			t.Errorf("FITSValue(%v) = %d, want %d", typ, got, want)
		}
		back, ok := TypeFromFITS(want)
		if !ok || back != typ {
			t.Errorf("TypeFromFITS(%d) = (%v,%v), want (%v,true)", want, back, ok, typ)
		}
	}
}

func TestToWorldToPixel(t *testing.T) {
	c, err := New([]Type{I, Q, U, V})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	world, err := c.ToWorld([]float64{2})
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	if world[0] != 3 {
		t.Fatalf("world = %v, want 3 (U)", world[0])
	}
	pixel, err := c.ToPixel([]float64{4})
	if err != nil {
		t.Fatalf("ToPixel: %v", err)
	}
	if pixel[0] != 3 {
		t.Fatalf("pixel = %v, want 3 (V)", pixel[0])
	}
}

func TestOutOfRangePixel(t *testing.T) {
	c, _ := New([]Type{I, Q})
	if _, err := c.ToWorld([]float64{5}); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}

func TestUnknownWorldValue(t *testing.T) {
	c, _ := New([]Type{I, Q})
	if _, err := c.ToPixel([]float64{99}); err == nil {
		t.Fatalf("expected conversion failure for unknown stokes value")
	}
}

func TestSaveRestore(t *testing.T) {
	c, _ := New([]Type{RR, LL, RL, LR})
	rec := record.New()
	if err := c.Save(rec, "stokes0"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	dup, _ := New([]Type{I})
	if err := dup.Restore(rec, "stokes0"); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(dup.types) != 4 || dup.types[2] != RL {
		t.Fatalf("restored types = %v, want [RR LL RL LR]", dup.types)
	}
}
