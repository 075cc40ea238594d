package coordsys

import (
	"math"
	"testing"

	"github.com/skyproj/wcscoord/direction"
	"github.com/skyproj/wcscoord/linear"
	"github.com/skyproj/wcscoord/projection"
	"github.com/skyproj/wcscoord/record"
	"github.com/skyproj/wcscoord/spectral"
	"gonum.org/v1/gonum/mat"
)

func mustLinear(t *testing.T) *linear.Coordinate {
	t.Helper()
	c, err := linear.New([]string{"X"}, []string{"m"}, []float64{0}, []float64{0}, []float64{1}, nil)
	if err != nil {
		t.Fatalf("linear.New: %v", err)
	}
	return c
}

func mustDirection(t *testing.T) *direction.Coordinate {
	t.Helper()
	proj, err := projection.New(projection.TAN, nil)
	if err != nil {
		t.Fatalf("projection.New: %v", err)
	}
	d, err := direction.New([2]float64{256, 256}, [2]float64{0, 0}, [2]float64{-1e-4, 1e-4}, nil, proj, direction.J2000)
	if err != nil {
		t.Fatalf("direction.New: %v", err)
	}
	return d
}

func TestAddCoordinateAssignsSequentialMaps(t *testing.T) {
	cs := New()
	cs.AddCoordinate(mustDirection(t))
	cs.AddCoordinate(mustLinear(t))

	if cs.NWorldAxes() != 3 || cs.NPixelAxes() != 3 {
		t.Fatalf("axis counts = (%d,%d), want (3,3)", cs.NWorldAxes(), cs.NPixelAxes())
	}
	if got := cs.CoordinateWorldMap(0); got[0] != 0 || got[1] != 1 {
		t.Fatalf("direction world map = %v, want [0 1]", got)
	}
	if got := cs.CoordinateWorldMap(1); got[0] != 2 {
		t.Fatalf("linear world map = %v, want [2]", got)
	}
}

func TestToWorldToPixelDispatch(t *testing.T) {
	cs := New()
	cs.AddCoordinate(mustDirection(t))
	cs.AddCoordinate(mustLinear(t))

	pixel := []float64{256, 256, 42}
	world, err := cs.ToWorld(pixel)
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	if world[2] != 42 {
		t.Fatalf("linear axis world = %v, want 42", world[2])
	}
	back, err := cs.ToPixel(world)
	if err != nil {
		t.Fatalf("ToPixel: %v", err)
	}
	for i := range pixel {
		if math.Abs(back[i]-pixel[i]) > 1e-6 {
			t.Fatalf("round trip axis %d = %v, want %v", i, back[i], pixel[i])
		}
	}
}

func TestRemoveWorldAxis(t *testing.T) {
	cs := New()
	cs.AddCoordinate(mustLinear(t))
	cs.AddCoordinate(mustLinear(t))

	if err := cs.RemoveWorldAxis(0, 99); err != nil {
		t.Fatalf("RemoveWorldAxis: %v", err)
	}
	if cs.NWorldAxes() != 1 {
		t.Fatalf("NWorldAxes after remove = %d, want 1", cs.NWorldAxes())
	}
	world, err := cs.ToWorld([]float64{3, 7})
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	if len(world) != 1 || world[0] != 7 {
		t.Fatalf("world after removal = %v, want [7]", world)
	}
}

func TestRemoveWorldAxisOutOfRange(t *testing.T) {
	cs := New()
	cs.AddCoordinate(mustLinear(t))
	if err := cs.RemoveWorldAxis(5, 0); err == nil {
		t.Fatalf("expected error for out-of-range axis")
	}
	if err := cs.RemoveWorldAxis(1, 0); err == nil {
		t.Fatalf("expected error: bound is strict <, axis 1 is out of range for a single-axis system")
	}
}

func TestTranspose(t *testing.T) {
	cs := New()
	cs.AddCoordinate(mustLinear(t))
	cs.AddCoordinate(mustLinear(t))

	if err := cs.Transpose([]int{1, 0}, []int{1, 0}); err != nil {
		t.Fatalf("Transpose: %v", err)
	}
	world, err := cs.ToWorld([]float64{3, 7})
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	if world[0] != 7 || world[1] != 3 {
		t.Fatalf("world after transpose = %v, want [7 3]", world)
	}
}

func TestLinearTransformIsBlockDiagonal(t *testing.T) {
	cs := New()
	cs.AddCoordinate(mustLinear(t))
	cs.AddCoordinate(mustLinear(t))
	pc := cs.LinearTransform()
	r, c := pc.Dims()
	if r != 2 || c != 2 {
		t.Fatalf("pc dims = (%d,%d), want (2,2)", r, c)
	}
	if pc.At(0, 1) != 0 || pc.At(1, 0) != 0 {
		t.Fatalf("off-block entries should be zero, got %v", mat.Formatted(pc))
	}
}

func TestSetWorldAxisNamesMultiErr(t *testing.T) {
	cs := New()
	cs.AddCoordinate(mustLinear(t))
	cs.AddCoordinate(mustLinear(t))
	if err := cs.SetWorldAxisNames([]string{"A", "B"}); err != nil {
		t.Fatalf("SetWorldAxisNames: %v", err)
	}
	if got := cs.WorldAxisNames(); got[0] != "A" || got[1] != "B" {
		t.Fatalf("names = %v, want [A B]", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	cs := New()
	cs.AddCoordinate(mustLinear(t))
	dup := cs.Clone().(*CoordinateSystem)
	if err := dup.SetReferenceValue([]float64{100}); err != nil {
		t.Fatalf("SetReferenceValue: %v", err)
	}
	if cs.ReferenceValue()[0] == 100 {
		t.Fatalf("mutating clone affected original")
	}
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	cs := New()
	cs.AddCoordinate(mustDirection(t))
	cs.AddCoordinate(mustLinear(t))
	cs.AddCoordinate(spectral.New(0, 1.42e9, 1e5, 1.420405751e9))

	rec := record.New()
	if err := cs.Save(rec, "wcs"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restored, err := NewFromRecord(rec, "wcs")
	if err != nil {
		t.Fatalf("NewFromRecord: %v", err)
	}
	if restored.NWorldAxes() != cs.NWorldAxes() || restored.NPixelAxes() != cs.NPixelAxes() {
		t.Fatalf("restored axis counts = (%d,%d), want (%d,%d)",
			restored.NWorldAxes(), restored.NPixelAxes(), cs.NWorldAxes(), cs.NPixelAxes())
	}
	pixel := make([]float64, cs.NPixelAxes())
	for i := range pixel {
		pixel[i] = float64(i) + 1
	}
	want, err := cs.ToWorld(pixel)
	if err != nil {
		t.Fatalf("ToWorld (original): %v", err)
	}
	got, err := restored.ToWorld(pixel)
	if err != nil {
		t.Fatalf("ToWorld (restored): %v", err)
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Fatalf("restored world[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSaveRestoreAfterRemoveWorldAxis(t *testing.T) {
	cs := New()
	cs.AddCoordinate(mustLinear(t))
	cs.AddCoordinate(mustLinear(t))
	if err := cs.RemoveWorldAxis(0, 99); err != nil {
		t.Fatalf("RemoveWorldAxis: %v", err)
	}

	rec := record.New()
	if err := cs.Save(rec, "wcs"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	restored, err := NewFromRecord(rec, "wcs")
	if err != nil {
		t.Fatalf("NewFromRecord: %v", err)
	}
	if restored.NWorldAxes() != 1 {
		t.Fatalf("restored NWorldAxes = %d, want 1 (removed axis must not be counted)", restored.NWorldAxes())
	}
	if restored.NPixelAxes() != 2 {
		t.Fatalf("restored NPixelAxes = %d, want 2", restored.NPixelAxes())
	}
	world, err := restored.ToWorld([]float64{3, 7})
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	if len(world) != 1 || world[0] != 7 {
		t.Fatalf("restored world = %v, want [7]", world)
	}
}

func TestNearCompare(t *testing.T) {
	cs1 := New()
	cs1.AddCoordinate(mustLinear(t))
	cs2 := New()
	cs2.AddCoordinate(mustLinear(t))

	if ok, msg := cs1.NearCompare(cs2, nil, 1e-6); !ok {
		t.Fatalf("expected near, got: %s", msg)
	}

	if err := cs2.SetReferenceValue([]float64{1000}); err != nil {
		t.Fatalf("SetReferenceValue: %v", err)
	}
	if ok, _ := cs1.NearCompare(cs2, nil, 1e-6); ok {
		t.Fatalf("expected not near after reference value change")
	}
}
