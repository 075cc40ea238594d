// Package fits implements the bidirectional bridge between a
// coordsys.CoordinateSystem and a flat FITS keyword record (spec.md §4.4,
// component C6). Export canonicalizes units, locates the special
// direction/spectral/stokes axes, and emits crval/crpix/cdelt/pc/ctype/
// crota/equinox keywords; Import reverses the process, classifying each
// ctype and reconstructing each sub-coordinate, appending them in the
// canonical direction/stokes/spectral/linear order as it goes.
//
// Non-fatal conditions ("warnings... emitted via the logger", spec.md
// §4.4/§7) go through slog.Default(), matching the teacher's direct
// slog.Warn/slog.Info usage rather than a custom logger wrapper.
package fits

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/skyproj/wcscoord/coordinate"
	"github.com/skyproj/wcscoord/coordsys"
	"github.com/skyproj/wcscoord/direction"
	"github.com/skyproj/wcscoord/linear"
	"github.com/skyproj/wcscoord/projection"
	"github.com/skyproj/wcscoord/record"
	"github.com/skyproj/wcscoord/spectral"
	"github.com/skyproj/wcscoord/stokes"
	"gonum.org/v1/gonum/mat"
)

const collisionKeySuffixes = "rval rpix delt type unit"

// Export writes cs into rec as FITS keywords. spec.md §4.4: "Refuses to
// overwrite if the target record already holds any of {*rval, *rpix,
// *delt, *type, *unit}."
func Export(cs *coordsys.CoordinateSystem, rec *record.Record, wcsEquinox bool) error {
	n := cs.NWorldAxes()
	for i := 1; i <= n; i++ {
		for _, suffix := range strings.Fields(collisionKeySuffixes) {
			for _, prefix := range []string{"c"} {
				key := fmt.Sprintf("%s%s%d", prefix, suffix, i)
				if rec.Has(key) {
					return coordinate.Wrap(coordinate.ErrFITSCollision, "record already has key %q", key)
				}
			}
		}
	}

	longIdx, latIdx, specIdx, stokesIdx := -1, -1, -1, -1
	var dirCoord *direction.Coordinate
	var specCoord *spectral.Coordinate
	var stokesCoord *stokes.Coordinate

	for i := 0; i < cs.NCoordinates(); i++ {
		c := cs.Coordinate(i)
		wm := cs.CoordinateWorldMap(i)
		switch d := c.(type) {
		case *direction.Coordinate:
			if dirCoord == nil {
				dirCoord = d
				if len(wm) >= 2 {
					longIdx, latIdx = wm[0], wm[1]
				}
			}
		case *spectral.Coordinate:
			if specCoord == nil {
				specCoord = d
				if len(wm) >= 1 {
					specIdx = wm[0]
				}
			}
		case *stokes.Coordinate:
			if stokesCoord == nil {
				stokesCoord = d
				if len(wm) >= 1 {
					stokesIdx = wm[0]
				}
			}
		}
	}

	working := cs.Clone().(*coordsys.CoordinateSystem)
	canonUnits := working.WorldAxisUnits()
	if longIdx >= 0 {
		canonUnits[longIdx] = "deg"
	}
	if latIdx >= 0 {
		canonUnits[latIdx] = "deg"
	}
	if specIdx >= 0 {
		canonUnits[specIdx] = "Hz"
	}
	if stokesIdx >= 0 {
		canonUnits[stokesIdx] = ""
	}
	if err := working.SetWorldAxisUnits(canonUnits); err != nil {
		return coordinate.Wrap(coordinate.ErrFITSInconsistent, "canonicalizing units: %v", err)
	}

	crval := working.ReferenceValue()
	crpix := working.ReferencePixel()
	for i := range crpix {
		crpix[i] += 1 // one-relative
	}
	cdelt := working.Increment()
	pc := working.LinearTransform()
	names := working.WorldAxisNames()

	ctypes := make([]string, n)
	for i := 0; i < n; i++ {
		switch i {
		case longIdx:
			ctypes[i] = directionCtype(axisRootName(names[i], true), dirCoord.Projection())
		case latIdx:
			ctypes[i] = directionCtype(axisRootName(names[i], false), dirCoord.Projection())
		case stokesIdx:
			ctypes[i] = "STOKES  "
		default:
			ctypes[i] = padType(names[i])
		}
	}

	if longIdx >= 0 && latIdx >= 0 {
		rhoLong := math.Atan2(pc.At(latIdx, longIdx), pc.At(longIdx, longIdx)) * 180 / math.Pi
		rhoLat := math.Atan2(-pc.At(longIdx, latIdx), pc.At(latIdx, latIdx)) * 180 / math.Pi
		if !near(rhoLong, rhoLat, 1e-6) {
			slog.Warn("fits export: PC matrix is not a pure rotation", "rho_long", rhoLong, "rho_lat", rhoLat)
		}
		rec.SetFloat64(fmt.Sprintf("crota%d", latIdx+1), (rhoLong+rhoLat)/2)
	}

	if stokesIdx >= 0 && stokesCoord != nil {
		types := stokesCoord.Types()
		if arithmetic, inc := arithmeticSequence(types); arithmetic {
			crval[stokesIdx] = float64(stokes.FITSValue(types[0]))
			crpix[stokesIdx] = 1
			cdelt[stokesIdx] = inc
		} else {
			crval[stokesIdx] = float64(stokes.FITSValue(types[0])) + 200
			cdelt[stokesIdx] = 1
			slog.Warn("fits export: stokes sequence is not arithmetic, using out-of-band encoding")
		}
	}

	for i := 0; i < n; i++ {
		rec.SetFloat64(fmt.Sprintf("crval%d", i+1), crval[i])
		rec.SetFloat64(fmt.Sprintf("crpix%d", i+1), crpix[i])
		rec.SetFloat64(fmt.Sprintf("cdelt%d", i+1), cdelt[i])
		rec.SetString(fmt.Sprintf("ctype%d", i+1), ctypes[i])
		rec.SetString(fmt.Sprintf("cunit%d", i+1), canonUnits[i])
		for j := 0; j < working.NPixelAxes(); j++ {
			rec.SetFloat64(fmt.Sprintf("pc%d_%d", i+1, j+1), pc.At(i, j))
		}
	}

	np := working.NPixelAxes()
	if np < n {
		for i := np; i < n; i++ {
			rec.SetFloat64(fmt.Sprintf("crpix%d", i+1), 1.0)
		}
		slog.Warn("fits export: world axes outnumber pixel axes, padding degenerate axes")
	}

	if dirCoord != nil {
		switch dirCoord.Frame() {
		case direction.J2000:
			if wcsEquinox {
				rec.SetFloat64("equinox", 2000.0)
			} else {
				rec.SetFloat64("epoch", 2000.0)
			}
		case direction.B1950:
			if wcsEquinox {
				rec.SetFloat64("equinox", 1950.0)
			} else {
				rec.SetFloat64("epoch", 1950.0)
			}
		}
	}

	if specCoord != nil && specIdx >= 0 {
		exportSpectral(rec, specIdx, specCoord)
	}

	for i := 0; i < cs.NCoordinates(); i++ {
		if cs.Coordinate(i).Kind() == coordinate.Tabular {
			slog.Warn("fits export: coordinate system has one or more tabular axes; these will be replaced by averaged (linearized) axes")
		}
	}

	return nil
}

// exportSpectral delegates spectral-axis encoding to the SpectralCoordinate
// (spec.md §4.4 step 9), guarded by specAxis >= 0 per the corrected rule
// (spec.md §9's open question about the source's "specAxis > 1" bug).
func exportSpectral(rec *record.Record, specIdx int, sc *spectral.Coordinate) {
	if specIdx < 0 {
		return
	}
	if rf := sc.RestFrequency(); rf > 0 {
		rec.SetFloat64("restfreq", rf)
	}
}

func axisRootName(name string, isLong bool) string {
	if isLong {
		return "RA"
	}
	return "DEC"
}

func directionCtype(root string, proj projection.Descriptor) string {
	base := padRight4(root)
	switch proj.Type {
	case projection.SIN:
		if len(proj.Parameters) == 2 {
			p0, p1 := proj.Parameters[0], proj.Parameters[1]
			if p0 == 0 && p1 == 0 {
				return base + "-SIN"
			}
			if p0 != 0 {
				slog.Warn("fits export: SIN has non-NCP-shaped parameters, writing NCP anyway", "params", proj.Parameters)
			}
			return base + "-NCP"
		}
		return base + "-NCP"
	default:
		name := proj.Name()
		if _, ok := projection.Parse(name); !ok {
			slog.Warn("fits export: projection known to WCS, not standard FITS", "projection", name)
		}
		return base + "-" + name
	}
}

// padRight4 pads a direction axis root name (e.g. "RA", "DEC", "GLON") to
// four characters with trailing dashes, matching the FITS CTYPE
// convention "RA---TAN": root padded to 4, then "-" plus the 3-letter
// projection code.
func padRight4(s string) string {
	if len(s) >= 4 {
		return s[:4]
	}
	return s + strings.Repeat("-", 4-len(s))
}

func padType(name string) string {
	up := strings.ToUpper(name)
	if len(up) >= 8 {
		return up[:8]
	}
	return up + strings.Repeat(" ", 8-len(up))
}

func arithmeticSequence(types []stokes.Type) (bool, float64) {
	if len(types) < 2 {
		return true, 1
	}
	inc := stokes.FITSValue(types[1]) - stokes.FITSValue(types[0])
	for i := 2; i < len(types); i++ {
		if stokes.FITSValue(types[i])-stokes.FITSValue(types[i-1]) != inc {
			return false, 0
		}
	}
	return true, float64(inc)
}

func near(a, b, tol float64) bool {
	if a == b {
		return true
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	m := math.Abs(a)
	if math.Abs(b) > m {
		m = math.Abs(b)
	}
	return d <= tol*m
}

// Import reconstructs a CoordinateSystem from a FITS keyword record
// (spec.md §4.4 "Import"). naxis is the number of FITS axes to read
// (ctype1..ctypeN etc.); pass 0 or less to count the consecutive ctype<i>
// keys present in rec instead.
func Import(rec *record.Record, naxis int) (*coordsys.CoordinateSystem, error) {
	if naxis <= 0 {
		naxis = guessNAxis(rec)
	}

	type axisInfo struct {
		idx      int
		ctype    string
		role     string
		crval    float64
		crpix    float64
		cdelt    float64
		cunit    string
	}
	axes := make([]axisInfo, naxis)
	for i := 0; i < naxis; i++ {
		ctype, _ := rec.GetString(fmt.Sprintf("ctype%d", i+1))
		crval, _ := rec.GetFloat64(fmt.Sprintf("crval%d", i+1))
		crpix, _ := rec.GetFloat64(fmt.Sprintf("crpix%d", i+1))
		cdelt, _ := rec.GetFloat64(fmt.Sprintf("cdelt%d", i+1))
		cunit, _ := rec.GetString(fmt.Sprintf("cunit%d", i+1))
		axes[i] = axisInfo{idx: i, ctype: ctype, role: classifyCtype(ctype), crval: crval, crpix: crpix, cdelt: cdelt, cunit: cunit}
	}

	pc := mat.NewDense(naxis, naxis, nil)
	havePC := false
	for i := 0; i < naxis; i++ {
		for j := 0; j < naxis; j++ {
			if v, ok := rec.GetFloat64(fmt.Sprintf("pc%d_%d", i+1, j+1)); ok {
				pc.Set(i, j, v)
				havePC = true
			} else if i == j {
				pc.Set(i, j, 1)
			}
		}
	}
	var rotaAxis = -1
	var rotaVal float64
	rotaCount := 0
	for i := 0; i < naxis; i++ {
		if v, ok := rec.GetFloat64(fmt.Sprintf("crota%d", i+1)); ok && v != 0 {
			rotaCount++
			if rotaAxis == -1 {
				rotaAxis = i
				rotaVal = v
			}
		}
	}
	if havePC && rotaAxis >= 0 {
		slog.Warn("fits import: both pc matrix and crota present, preferring pc")
	} else if !havePC && rotaAxis >= 0 {
		if rotaCount > 1 {
			slog.Warn("fits import: multiple non-zero crota values, using the first")
		}
		k := rotaAxis
		a, b := k-1, k
		if k == 0 {
			a, b = 0, 1
		}
		if a >= 0 && b < naxis {
			theta := rotaVal * math.Pi / 180
			pc.Set(a, a, math.Cos(theta))
			pc.Set(a, b, -math.Sin(theta))
			pc.Set(b, a, math.Sin(theta))
			pc.Set(b, b, math.Cos(theta))
		}
	}

	var longIdx, latIdx, stokesIdx, specIdx = -1, -1, -1, -1
	var linearIdx []int
	for i, a := range axes {
		switch a.role {
		case "long":
			if longIdx != -1 {
				return nil, coordinate.Wrap(coordinate.ErrFITSInconsistent, "more than one longitude axis")
			}
			longIdx = i
		case "lat":
			if latIdx != -1 {
				return nil, coordinate.Wrap(coordinate.ErrFITSInconsistent, "more than one latitude axis")
			}
			latIdx = i
		case "stokes":
			stokesIdx = i
		case "spectral":
			specIdx = i
		default:
			linearIdx = append(linearIdx, i)
		}
	}
	if (longIdx == -1) != (latIdx == -1) {
		return nil, coordinate.Wrap(coordinate.ErrFITSInconsistent, "longitude axis without matching latitude axis (or vice versa)")
	}

	cs := coordsys.New()

	if longIdx != -1 {
		projLong := lastToken(axes[longIdx].ctype)
		projLat := lastToken(axes[latIdx].ctype)
		if projLong != projLat {
			return nil, coordinate.Wrap(coordinate.ErrFITSInconsistent, "projection codes disagree between long (%s) and lat (%s) axes", projLong, projLat)
		}

		var proj projection.Descriptor
		var err error
		if projLong == "NCP" {
			refLat := axes[latIdx].crval * math.Pi / 180
			proj, err = projection.New(projection.SIN, []float64{0, 1 / math.Tan(refLat)})
		} else {
			pt, ok := projection.Parse(projLong)
			if !ok {
				return nil, coordinate.Wrap(coordinate.ErrFITSUnknownProjection, "unknown projection %q", projLong)
			}
			var params []float64
			if pt == projection.SIN {
				params = []float64{0, 0}
			}
			proj, err = projection.New(pt, params)
		}
		if err != nil {
			return nil, coordinate.Wrap(coordinate.ErrFITSUnknownProjection, "%v", err)
		}

		frame := direction.J2000
		root := strings.TrimSuffix(strings.TrimSpace(axes[longIdx].ctype), "-"+projLong)
		if strings.Contains(root, "GLON") || strings.Contains(strings.TrimSpace(axes[latIdx].ctype), "GLAT") {
			frame = direction.Galactic
		} else if eq, ok := rec.GetFloat64("equinox"); ok {
			if eq == 1950 {
				frame = direction.B1950
			}
		} else if ep, ok := rec.GetFloat64("epoch"); ok {
			if ep == 1950 {
				frame = direction.B1950
			}
		} else {
			slog.Warn("fits import: could not find or figure out the equinox, assuming J2000")
		}

		refVal := []float64{axes[longIdx].crval * math.Pi / 180, axes[latIdx].crval * math.Pi / 180}
		inc := []float64{axes[longIdx].cdelt * math.Pi / 180, axes[latIdx].cdelt * math.Pi / 180}
		refPix := []float64{axes[longIdx].crpix - 1, axes[latIdx].crpix - 1}
		dirPC := mat.NewDense(2, 2, []float64{
			pc.At(longIdx, longIdx), pc.At(longIdx, latIdx),
			pc.At(latIdx, longIdx), pc.At(latIdx, latIdx),
		})
		d, err := direction.New([2]float64{refPix[0], refPix[1]}, [2]float64{refVal[0], refVal[1]}, [2]float64{inc[0], inc[1]}, dirPC, proj, frame)
		if err != nil {
			return nil, err
		}
		cs.AddCoordinate(d)
	}

	if stokesIdx != -1 {
		n := 4
		types := make([]stokes.Type, 0, n)
		start := int(math.Round(axes[stokesIdx].crval))
		inc := int(math.Round(axes[stokesIdx].cdelt))
		if inc == 0 {
			inc = 1
		}
		for i := 0; i < n; i++ {
			t, ok := stokes.TypeFromFITS(start + i*inc)
			if !ok {
				break
			}
			types = append(types, t)
		}
		if len(types) == 0 {
			types = []stokes.Type{stokes.I}
		}
		sc, err := stokes.New(types)
		if err != nil {
			return nil, err
		}
		cs.AddCoordinate(sc)
	}

	if specIdx != -1 {
		refVal := axes[specIdx].crval
		inc := axes[specIdx].cdelt
		refPix := axes[specIdx].crpix - 1
		restfreq, _ := rec.GetFloat64("restfreq")
		cs.AddCoordinate(spectral.New(refPix, refVal, inc, restfreq))
	}

	if len(linearIdx) > 0 {
		slog.Info("fits import: assuming no rotation/skew in linear axes")
		names := make([]string, len(linearIdx))
		units := make([]string, len(linearIdx))
		refPix := make([]float64, len(linearIdx))
		refVal := make([]float64, len(linearIdx))
		inc := make([]float64, len(linearIdx))
		diag := mat.NewDense(len(linearIdx), len(linearIdx), nil)
		for k, i := range linearIdx {
			names[k] = strings.TrimSpace(axes[i].ctype)
			units[k] = axes[i].cunit
			refPix[k] = axes[i].crpix - 1
			refVal[k] = axes[i].crval
			inc[k] = axes[i].cdelt
			diag.Set(k, k, 1)
		}
		lc, err := linear.New(names, units, refPix, refVal, inc, diag)
		if err != nil {
			return nil, err
		}
		cs.AddCoordinate(lc)
	}

	// Sub-coordinates were appended above in canonical order (direction,
	// stokes, spectral, then linear) regardless of their original FITS
	// axis positions, so cs is already in canonical order here; no
	// further transpose is needed.
	return cs, nil
}

func classifyCtype(ctype string) string {
	up := strings.ToUpper(ctype)
	switch {
	case strings.Contains(up, "RA") || strings.Contains(up, "LON"):
		return "long"
	case strings.Contains(up, "DEC") || strings.Contains(up, "LAT"):
		return "lat"
	case strings.Contains(up, "STOKES"):
		return "stokes"
	case strings.Contains(up, "FREQ") || strings.Contains(up, "FELO") || strings.Contains(up, "VELO"):
		return "spectral"
	default:
		return "linear"
	}
}

func lastToken(ctype string) string {
	trimmed := strings.TrimSpace(ctype)
	idx := strings.LastIndex(trimmed, "-")
	if idx == -1 {
		return ""
	}
	return trimmed[idx+1:]
}

func guessNAxis(rec *record.Record) int {
	n := 0
	for i := 1; ; i++ {
		if !rec.Has(fmt.Sprintf("ctype%d", i)) {
			break
		}
		n = i
	}
	return n
}
