package fits

import (
	"math"
	"testing"

	"github.com/skyproj/wcscoord/coordsys"
	"github.com/skyproj/wcscoord/direction"
	"github.com/skyproj/wcscoord/linear"
	"github.com/skyproj/wcscoord/projection"
	"github.com/skyproj/wcscoord/record"
	"github.com/skyproj/wcscoord/spectral"
	"github.com/skyproj/wcscoord/stokes"
)

func buildSystem(t *testing.T) *coordsys.CoordinateSystem {
	t.Helper()
	cs := coordsys.New()

	proj, err := projection.New(projection.TAN, nil)
	if err != nil {
		t.Fatalf("projection.New: %v", err)
	}
	d, err := direction.New([2]float64{127, 127}, [2]float64{0.1, 0.2}, [2]float64{-2.9e-4, 2.9e-4}, nil, proj, direction.J2000)
	if err != nil {
		t.Fatalf("direction.New: %v", err)
	}
	cs.AddCoordinate(d)

	sc, err := stokes.New([]stokes.Type{stokes.I, stokes.Q, stokes.U, stokes.V})
	if err != nil {
		t.Fatalf("stokes.New: %v", err)
	}
	cs.AddCoordinate(sc)

	cs.AddCoordinate(spectral.New(0, 1.42e9, 1e5, 1.420405751e9))

	return cs
}

func TestExportWritesKeywords(t *testing.T) {
	cs := buildSystem(t)
	rec := record.New()
	if err := Export(cs, rec, true); err != nil {
		t.Fatalf("Export: %v", err)
	}
	ctype1, ok := rec.GetString("ctype1")
	if !ok || ctype1 != "RA---TAN" {
		t.Fatalf("ctype1 = %q, ok=%v, want RA---TAN", ctype1, ok)
	}
	ctype2, _ := rec.GetString("ctype2")
	if ctype2 != "DEC--TAN" {
		t.Fatalf("ctype2 = %q, want DEC--TAN", ctype2)
	}
	ctype3, _ := rec.GetString("ctype3")
	if ctype3 != "STOKES  " {
		t.Fatalf("ctype3 = %q, want 'STOKES  '", ctype3)
	}
	if eq, ok := rec.GetFloat64("equinox"); !ok || eq != 2000 {
		t.Fatalf("equinox = %v, ok=%v, want 2000", eq, ok)
	}
	if rf, ok := rec.GetFloat64("restfreq"); !ok || rf != 1.420405751e9 {
		t.Fatalf("restfreq = %v, ok=%v", rf, ok)
	}
}

func TestExportRefusesCollision(t *testing.T) {
	cs := buildSystem(t)
	rec := record.New()
	rec.SetFloat64("crval1", 42)
	if err := Export(cs, rec, true); err == nil {
		t.Fatalf("expected collision error")
	}
}

func TestImportRoundTripsLinearAxis(t *testing.T) {
	names := []string{"OFFSET"}
	lc, err := linear.New(names, []string{"km/s"}, []float64{0}, []float64{100}, []float64{5}, nil)
	if err != nil {
		t.Fatalf("linear.New: %v", err)
	}
	cs := coordsys.New()
	cs.AddCoordinate(lc)

	rec := record.New()
	if err := Export(cs, rec, true); err != nil {
		t.Fatalf("Export: %v", err)
	}

	restored, err := Import(rec, 1)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if restored.NWorldAxes() != 1 {
		t.Fatalf("restored axes = %d, want 1", restored.NWorldAxes())
	}
	world, err := restored.ToWorld([]float64{2})
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	want, err := cs.ToWorld([]float64{2})
	if err != nil {
		t.Fatalf("ToWorld (original): %v", err)
	}
	if math.Abs(world[0]-want[0]) > 1e-6 {
		t.Fatalf("restored world = %v, want %v", world[0], want[0])
	}
}

func TestImportDirectionAxes(t *testing.T) {
	cs := buildSystem(t)
	rec := record.New()
	if err := Export(cs, rec, true); err != nil {
		t.Fatalf("Export: %v", err)
	}

	restored, err := Import(rec, 4)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	pixel := []float64{127, 127, 0, 0}
	world, err := restored.ToWorld(pixel)
	if err != nil {
		t.Fatalf("ToWorld: %v", err)
	}
	wantRA := 0.1 // radians, as passed to direction.New in buildSystem
	if math.Abs(world[0]-wantRA) > 1e-6 {
		t.Fatalf("restored RA at reference pixel = %v, want %v", world[0], wantRA)
	}
}

func TestImportUnknownProjection(t *testing.T) {
	rec := record.New()
	rec.SetString("ctype1", "RA---XYZ")
	rec.SetString("ctype2", "DEC--XYZ")
	rec.SetFloat64("crval1", 0)
	rec.SetFloat64("crval2", 0)
	rec.SetFloat64("crpix1", 1)
	rec.SetFloat64("crpix2", 1)
	rec.SetFloat64("cdelt1", 1)
	rec.SetFloat64("cdelt2", 1)
	if _, err := Import(rec, 2); err == nil {
		t.Fatalf("expected unknown projection error")
	}
}
