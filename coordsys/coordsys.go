// Package coordsys implements CoordinateSystem, the composite (spec.md
// component C5): an ordered sequence of sub-coordinates plus per-
// sub-coordinate axis-mapping tables, implementing the Coordinate contract
// by dispatch. This is the largest component in spec.md (55% share) — the
// axis-remapping machinery (append, transpose, remove-axis, sub-image,
// replace) and the forward/inverse dispatch loop that stitches the
// independent sub-coordinates into one caller-visible coordinate space.
package coordsys

import (
	"fmt"

	"github.com/skyproj/wcscoord/coordinate"
	"github.com/skyproj/wcscoord/direction"
	"github.com/skyproj/wcscoord/linear"
	"github.com/skyproj/wcscoord/record"
	"github.com/skyproj/wcscoord/spectral"
	"github.com/skyproj/wcscoord/stokes"
	"github.com/skyproj/wcscoord/tabular"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
)

// entry is the companion record for one owned sub-coordinate: its axis
// maps, removed-axis replacement values, and per-instance scratch. This
// replaces the source's parallel raw-pointer arrays (spec.md §9 "Cyclic /
// shared ownership") with a single owned slice of these records.
type entry struct {
	coord coordinate.Coordinate

	worldMap     []int
	pixelMap     []int
	worldReplace []float64
	pixelReplace []float64

	pixScratch   []float64
	worldScratch []float64
}

// CoordinateSystem is the composite Coordinate described in spec.md §3-4.3.
type CoordinateSystem struct {
	coordinate.Base

	entries []*entry
	nWorld  int
	nPixel  int
}

// New returns an empty CoordinateSystem (spec.md §3 "Lifecycle").
func New() *CoordinateSystem {
	cs := &CoordinateSystem{}
	cs.Base.Init(cs)
	return cs
}

func (cs *CoordinateSystem) NPixelAxes() int         { return cs.nPixel }
func (cs *CoordinateSystem) NWorldAxes() int         { return cs.nWorld }
func (cs *CoordinateSystem) Kind() coordinate.Kind   { return coordinate.System }
func (cs *CoordinateSystem) NCoordinates() int       { return len(cs.entries) }
func (cs *CoordinateSystem) Coordinate(i int) coordinate.Coordinate { return cs.entries[i].coord }

// CoordinateWorldMap and CoordinatePixelMap expose the i-th sub-
// coordinate's axis map, needed by callers (the FITS bridge) that must
// know which exposed axis a given sub-coordinate axis landed on.
func (cs *CoordinateSystem) CoordinateWorldMap(i int) []int {
	return append([]int(nil), cs.entries[i].worldMap...)
}

func (cs *CoordinateSystem) CoordinatePixelMap(i int) []int {
	return append([]int(nil), cs.entries[i].pixelMap...)
}

// findWorldAxis and findPixelAxis are the linear scans spec.md §4.3 names
// explicitly: walk every sub-coordinate's map looking for exposed index k.
func (cs *CoordinateSystem) findWorldAxis(k int) (ci, axis int, ok bool) {
	for i, e := range cs.entries {
		for j, m := range e.worldMap {
			if m == k {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

func (cs *CoordinateSystem) findPixelAxis(k int) (ci, axis int, ok bool) {
	for i, e := range cs.entries {
		for j, m := range e.pixelMap {
			if m == k {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// AddCoordinate appends a sub-coordinate, assigning its axes the next free
// exposed world/pixel indices in order (spec.md §3 "Lifecycle", §4.3
// "Append").
func (cs *CoordinateSystem) AddCoordinate(c coordinate.Coordinate) {
	nw, np := c.NWorldAxes(), c.NPixelAxes()
	wm := make([]int, nw)
	for j := range wm {
		wm[j] = cs.nWorld + j
	}
	pm := make([]int, np)
	for j := range pm {
		pm[j] = cs.nPixel + j
	}
	cs.entries = append(cs.entries, &entry{
		coord:        c,
		worldMap:     wm,
		pixelMap:     pm,
		worldReplace: make([]float64, nw),
		pixelReplace: make([]float64, np),
	})
	cs.nWorld += nw
	cs.nPixel += np
}

// RemoveWorldAxis hides world axis k from callers, holding it at
// replacement value v for every future transform (spec.md §4.3
// "Remove-axis"). spec.md §9's open question: bound is strict k < N, not
// k <= N, as the source asserted.
func (cs *CoordinateSystem) RemoveWorldAxis(k int, v float64) error {
	if k < 0 || k >= cs.nWorld {
		return coordinate.Wrap(coordinate.ErrInvalidAxis, "world axis %d out of range [0,%d)", k, cs.nWorld)
	}
	ci, axis, ok := cs.findWorldAxis(k)
	if !ok {
		return coordinate.Wrap(coordinate.ErrInvalidAxis, "world axis %d not found in any sub-coordinate", k)
	}
	cs.entries[ci].worldMap[axis] = -1
	cs.entries[ci].worldReplace[axis] = v
	for _, e := range cs.entries {
		for j, m := range e.worldMap {
			if m > k {
				e.worldMap[j] = m - 1
			}
		}
	}
	cs.nWorld--
	return nil
}

// RemovePixelAxis is the pixel-axis analogue of RemoveWorldAxis. Removed
// pixel axes are still traversed internally (spec.md §4.3) — they merely
// stop appearing in the caller's pixel vector.
func (cs *CoordinateSystem) RemovePixelAxis(k int, v float64) error {
	if k < 0 || k >= cs.nPixel {
		return coordinate.Wrap(coordinate.ErrInvalidAxis, "pixel axis %d out of range [0,%d)", k, cs.nPixel)
	}
	ci, axis, ok := cs.findPixelAxis(k)
	if !ok {
		return coordinate.Wrap(coordinate.ErrInvalidAxis, "pixel axis %d not found in any sub-coordinate", k)
	}
	cs.entries[ci].pixelMap[axis] = -1
	cs.entries[ci].pixelReplace[axis] = v
	for _, e := range cs.entries {
		for j, m := range e.pixelMap {
			if m > k {
				e.pixelMap[j] = m - 1
			}
		}
	}
	cs.nPixel--
	return nil
}

// Transpose permutes the exposed world and pixel axes without reordering
// the stored sub-coordinates (spec.md §4.3 "Transpose"). worldOrder[p] is
// the old exposed index that will appear at new position p.
func (cs *CoordinateSystem) Transpose(worldOrder, pixelOrder []int) error {
	worldInv, err := invertPermutation(worldOrder, cs.nWorld)
	if err != nil {
		return coordinate.Wrap(coordinate.ErrInvalidPermutation, "world_order: %v", err)
	}
	pixelInv, err := invertPermutation(pixelOrder, cs.nPixel)
	if err != nil {
		return coordinate.Wrap(coordinate.ErrInvalidPermutation, "pixel_order: %v", err)
	}
	for _, e := range cs.entries {
		for j, m := range e.worldMap {
			if m >= 0 {
				e.worldMap[j] = worldInv[m]
			}
		}
		for j, m := range e.pixelMap {
			if m >= 0 {
				e.pixelMap[j] = pixelInv[m]
			}
		}
	}
	return nil
}

func invertPermutation(order []int, n int) ([]int, error) {
	if len(order) != n {
		return nil, fmt.Errorf("expected length %d, got %d", n, len(order))
	}
	inv := make([]int, n)
	seen := make([]bool, n)
	for newPos, old := range order {
		if old < 0 || old >= n || seen[old] {
			return nil, fmt.Errorf("not a permutation of [0,%d)", n)
		}
		seen[old] = true
		inv[old] = newPos
	}
	return inv, nil
}

// ReplaceCoordinate substitutes the i-th sub-coordinate, preserving its
// axis counts (spec.md §3 "Lifecycle").
func (cs *CoordinateSystem) ReplaceCoordinate(i int, c coordinate.Coordinate) error {
	if i < 0 || i >= len(cs.entries) {
		return coordinate.Wrap(coordinate.ErrInvalidAxis, "coordinate index %d out of range [0,%d)", i, len(cs.entries))
	}
	old := cs.entries[i].coord
	if c.NWorldAxes() != old.NWorldAxes() || c.NPixelAxes() != old.NPixelAxes() {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "replacement coordinate has (%d,%d) axes, want (%d,%d)",
			c.NWorldAxes(), c.NPixelAxes(), old.NWorldAxes(), old.NPixelAxes())
	}
	cs.entries[i].coord = c
	return nil
}

// RestoreOriginal rebuilds the default identity maps by replaying
// AddCoordinate over the stored sub-coordinates in order, also resetting
// every replacement value to zero — matching original_source's
// CoordinateSystem::restoreOriginal rather than a maps-only reset
// (SPEC_FULL.md "Supplemented features").
func (cs *CoordinateSystem) RestoreOriginal() {
	coords := make([]coordinate.Coordinate, len(cs.entries))
	for i, e := range cs.entries {
		coords[i] = e.coord
	}
	cs.entries = nil
	cs.nWorld = 0
	cs.nPixel = 0
	for _, c := range coords {
		cs.AddCoordinate(c)
	}
}

// SubImage returns a new CoordinateSystem whose reference pixel and
// increment are rescaled for a sub-image selection (spec.md §4.3
// "Sub-image", §8 scenario 6).
func (cs *CoordinateSystem) SubImage(originShift, inc []float64) (*CoordinateSystem, error) {
	if len(originShift) != cs.nPixel || len(inc) != cs.nPixel {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "originShift/inc must have length %d", cs.nPixel)
	}
	for i, v := range inc {
		if v < 1 {
			return nil, coordinate.Wrap(coordinate.ErrInvalidIncrement, "inc[%d]=%g must be >= 1", i, v)
		}
	}
	curRefPix := cs.ReferencePixel()
	curInc := cs.Increment()
	newRefPix := make([]float64, cs.nPixel)
	newInc := make([]float64, cs.nPixel)
	for i := range newRefPix {
		newRefPix[i] = (curRefPix[i] - originShift[i]) / inc[i]
		newInc[i] = curInc[i] * inc[i]
	}

	dup := cs.Clone().(*CoordinateSystem)
	if err := dup.SetReferencePixel(newRefPix); err != nil {
		return nil, err
	}
	if err := dup.SetIncrement(newInc); err != nil {
		return nil, err
	}
	return dup, nil
}

// WorldAxisNames, WorldAxisUnits, PreferredWorldAxisUnits, ReferenceValue,
// ReferencePixel and Increment are the "derived vectors" of spec.md §4.3,
// produced by walking each exposed index back to its origin.

func (cs *CoordinateSystem) WorldAxisNames() []string {
	out := make([]string, cs.nWorld)
	cs.scatterWorldStrings(out, func(c coordinate.Coordinate) []string { return c.WorldAxisNames() })
	return out
}

func (cs *CoordinateSystem) WorldAxisUnits() []string {
	out := make([]string, cs.nWorld)
	cs.scatterWorldStrings(out, func(c coordinate.Coordinate) []string { return c.WorldAxisUnits() })
	return out
}

func (cs *CoordinateSystem) PreferredWorldAxisUnits() []string {
	out := make([]string, cs.nWorld)
	cs.scatterWorldStrings(out, func(c coordinate.Coordinate) []string { return c.PreferredWorldAxisUnits() })
	return out
}

func (cs *CoordinateSystem) scatterWorldStrings(out []string, get func(coordinate.Coordinate) []string) {
	for _, e := range cs.entries {
		vals := get(e.coord)
		for j, m := range e.worldMap {
			if m >= 0 {
				out[m] = vals[j]
			}
		}
	}
}

func (cs *CoordinateSystem) ReferenceValue() []float64 {
	out := make([]float64, cs.nWorld)
	for _, e := range cs.entries {
		vals := e.coord.ReferenceValue()
		for j, m := range e.worldMap {
			if m >= 0 {
				out[m] = vals[j]
			}
		}
	}
	return out
}

func (cs *CoordinateSystem) ReferencePixel() []float64 {
	out := make([]float64, cs.nPixel)
	for _, e := range cs.entries {
		vals := e.coord.ReferencePixel()
		for j, m := range e.pixelMap {
			if m >= 0 {
				out[m] = vals[j]
			}
		}
	}
	return out
}

func (cs *CoordinateSystem) Increment() []float64 {
	out := make([]float64, cs.nWorld)
	for _, e := range cs.entries {
		vals := e.coord.Increment()
		for j, m := range e.worldMap {
			if m >= 0 {
				out[m] = vals[j]
			}
		}
	}
	return out
}

// LinearTransform builds the composite N_w x N_p matrix: block-diagonal in
// the axis permutation, zero off the blocks belonging to one
// sub-coordinate (spec.md §3 invariant 3, §4.3 "Composite linear
// transform").
func (cs *CoordinateSystem) LinearTransform() *mat.Dense {
	out := mat.NewDense(cs.nWorld, cs.nPixel, nil)
	for _, e := range cs.entries {
		pc := e.coord.LinearTransform()
		for j, mw := range e.worldMap {
			if mw < 0 {
				continue
			}
			for l, mp := range e.pixelMap {
				if mp < 0 {
					continue
				}
				out.Set(mw, mp, pc.At(j, l))
			}
		}
	}
	return out
}

// ToWorld implements spec.md §4.3's forward-transform dispatch loop: every
// sub-coordinate is invoked (no short-circuit on failure), replacement
// values fill removed pixel axes, and results are gathered through the
// world map.
func (cs *CoordinateSystem) ToWorld(pixelIn []float64) ([]float64, error) {
	if len(pixelIn) != cs.nPixel {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "pixel has length %d, want %d", len(pixelIn), cs.nPixel)
	}
	worldOut := make([]float64, cs.nWorld)
	var firstErr error
	for _, e := range cs.entries {
		e.pixScratch = ensureLen(e.pixScratch, len(e.pixelMap))
		for j, m := range e.pixelMap {
			if m >= 0 {
				e.pixScratch[j] = pixelIn[m]
			} else {
				e.pixScratch[j] = e.pixelReplace[j]
			}
		}
		worldTmp, err := e.coord.ToWorld(e.pixScratch)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		e.worldScratch = ensureLen(e.worldScratch, len(worldTmp))
		copy(e.worldScratch, worldTmp)
		for j, m := range e.worldMap {
			if m >= 0 {
				worldOut[m] = worldTmp[j]
			}
		}
	}
	if firstErr != nil {
		cs.SetLastError(firstErr.Error())
		return worldOut, coordinate.Wrap(coordinate.ErrConversionFailure, "%v", firstErr)
	}
	return worldOut, nil
}

// ToPixel is the symmetric inverse of ToWorld.
func (cs *CoordinateSystem) ToPixel(worldIn []float64) ([]float64, error) {
	if len(worldIn) != cs.nWorld {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "world has length %d, want %d", len(worldIn), cs.nWorld)
	}
	pixelOut := make([]float64, cs.nPixel)
	var firstErr error
	for _, e := range cs.entries {
		e.worldScratch = ensureLen(e.worldScratch, len(e.worldMap))
		for j, m := range e.worldMap {
			if m >= 0 {
				e.worldScratch[j] = worldIn[m]
			} else {
				e.worldScratch[j] = e.worldReplace[j]
			}
		}
		pixTmp, err := e.coord.ToPixel(e.worldScratch)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		e.pixScratch = ensureLen(e.pixScratch, len(pixTmp))
		copy(e.pixScratch, pixTmp)
		for j, m := range e.pixelMap {
			if m >= 0 {
				pixelOut[m] = pixTmp[j]
			}
		}
	}
	if firstErr != nil {
		cs.SetLastError(firstErr.Error())
		return pixelOut, coordinate.Wrap(coordinate.ErrConversionFailure, "%v", firstErr)
	}
	return pixelOut, nil
}

// ToWorldIPosition widens an integer pixel position to floating point by
// straight cast before dispatching to ToWorld (spec.md §4.3 "IPosition
// overload").
func (cs *CoordinateSystem) ToWorldIPosition(pixel []int) ([]float64, error) {
	p := make([]float64, len(pixel))
	for i, v := range pixel {
		p[i] = float64(v)
	}
	return cs.ToWorld(p)
}

func ensureLen(s []float64, n int) []float64 {
	if len(s) == n {
		return s
	}
	return make([]float64, n)
}

// SetWorldAxisNames, SetWorldAxisUnits, SetReferencePixel,
// SetReferenceValue, SetIncrement and SetLinearTransform scatter the
// caller's full-length vector back through the maps into each
// sub-coordinate (spec.md §4.3 "Setters"). Every sub-coordinate is
// attempted even after a failure; all per-sub-coordinate errors are
// combined with multierr.Append so the AND-of-flags semantics spec.md
// requires is preserved while the caller still sees every failure, not
// just the first.

func (cs *CoordinateSystem) SetWorldAxisNames(names []string) error {
	if len(names) != cs.nWorld {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "names has length %d, want %d", len(names), cs.nWorld)
	}
	var errs error
	for _, e := range cs.entries {
		local := append([]string(nil), e.coord.WorldAxisNames()...)
		for j, m := range e.worldMap {
			if m >= 0 {
				local[j] = names[m]
			}
		}
		errs = multierr.Append(errs, e.coord.SetWorldAxisNames(local))
	}
	return errs
}

func (cs *CoordinateSystem) SetWorldAxisUnits(units []string) error {
	if len(units) != cs.nWorld {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "units has length %d, want %d", len(units), cs.nWorld)
	}
	var errs error
	for _, e := range cs.entries {
		local := append([]string(nil), e.coord.WorldAxisUnits()...)
		for j, m := range e.worldMap {
			if m >= 0 {
				local[j] = units[m]
			}
		}
		errs = multierr.Append(errs, e.coord.SetWorldAxisUnits(local))
	}
	return errs
}

func (cs *CoordinateSystem) SetReferencePixel(refPix []float64) error {
	if len(refPix) != cs.nPixel {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "refPix has length %d, want %d", len(refPix), cs.nPixel)
	}
	var errs error
	for _, e := range cs.entries {
		local := append([]float64(nil), e.coord.ReferencePixel()...)
		for j, m := range e.pixelMap {
			if m >= 0 {
				local[j] = refPix[m]
			}
		}
		errs = multierr.Append(errs, e.coord.SetReferencePixel(local))
	}
	return errs
}

func (cs *CoordinateSystem) SetReferenceValue(refVal []float64) error {
	if len(refVal) != cs.nWorld {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "refVal has length %d, want %d", len(refVal), cs.nWorld)
	}
	var errs error
	for _, e := range cs.entries {
		local := append([]float64(nil), e.coord.ReferenceValue()...)
		for j, m := range e.worldMap {
			if m >= 0 {
				local[j] = refVal[m]
			}
		}
		errs = multierr.Append(errs, e.coord.SetReferenceValue(local))
	}
	return errs
}

func (cs *CoordinateSystem) SetIncrement(inc []float64) error {
	if len(inc) != cs.nWorld {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "inc has length %d, want %d", len(inc), cs.nWorld)
	}
	var errs error
	for _, e := range cs.entries {
		local := append([]float64(nil), e.coord.Increment()...)
		for j, m := range e.worldMap {
			if m >= 0 {
				local[j] = inc[m]
			}
		}
		errs = multierr.Append(errs, e.coord.SetIncrement(local))
	}
	return errs
}

func (cs *CoordinateSystem) SetLinearTransform(pc *mat.Dense) error {
	r, c := pc.Dims()
	if r != cs.nWorld || c != cs.nPixel {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "pc is %dx%d, want %dx%d", r, c, cs.nWorld, cs.nPixel)
	}
	var errs error
	for _, e := range cs.entries {
		local := mat.DenseCopyOf(e.coord.LinearTransform())
		for j, mw := range e.worldMap {
			if mw < 0 {
				continue
			}
			for l, mp := range e.pixelMap {
				if mp < 0 {
					continue
				}
				local.Set(j, l, pc.At(mw, mp))
			}
		}
		errs = multierr.Append(errs, e.coord.SetLinearTransform(local))
	}
	return errs
}

// Clone deep-clones the CoordinateSystem and every owned sub-coordinate
// (spec.md §5 "copying the system deep-clones [sub-coordinates]").
func (cs *CoordinateSystem) Clone() coordinate.Coordinate {
	dup := New()
	for _, e := range cs.entries {
		dup.entries = append(dup.entries, &entry{
			coord:        e.coord.Clone(),
			worldMap:     append([]int(nil), e.worldMap...),
			pixelMap:     append([]int(nil), e.pixelMap...),
			worldReplace: append([]float64(nil), e.worldReplace...),
			pixelReplace: append([]float64(nil), e.pixelReplace...),
		})
	}
	dup.nWorld = cs.nWorld
	dup.nPixel = cs.nPixel
	return dup
}

// SetWorldMixRanges populates default [worldMin,worldMax] mix ranges per
// world axis (spec.md §4.3 "Mix-range defaults"): pixel positions 25% off
// each image edge converted to world, or refpix+-10 / 0+-10 for
// degenerate/unit-length axes. Returns false if either forward conversion
// fails.
func (cs *CoordinateSystem) SetWorldMixRanges(shape []int) ([][2]float64, bool) {
	n := cs.nPixel
	ranges := make([][2]float64, cs.nWorld)
	for i := range ranges {
		ranges[i] = [2]float64{-1e99, 1e99}
	}
	if len(shape) != n {
		return ranges, false
	}

	refPix := cs.ReferencePixel()
	lowPix := make([]float64, n)
	highPix := make([]float64, n)
	for i, s := range shape {
		switch s {
		case 0:
			lowPix[i] = refPix[i] - 10
			highPix[i] = refPix[i] + 10
		case 1:
			lowPix[i] = -10
			highPix[i] = 10
		default:
			lowPix[i] = float64(s) * 0.25
			highPix[i] = float64(s) * 0.75
		}
	}
	lowWorld, err1 := cs.ToWorld(lowPix)
	highWorld, err2 := cs.ToWorld(highPix)
	if err1 != nil || err2 != nil {
		return ranges, false
	}
	for i := range ranges {
		lo, hi := lowWorld[i], highWorld[i]
		if lo > hi {
			lo, hi = hi, lo
		}
		ranges[i] = [2]float64{lo, hi}
	}
	return ranges, true
}

// NearCompare implements spec.md §4.3's CoordinateSystem near-equality:
// ignores a caller-supplied list of excluded pixel axes, and dispatches
// per-sub-coordinate DoNearPixel (with the excluded axes deselected) after
// verifying identical coordinate count,
// matching exposed maps and matching sub-coordinate kinds in order. This
// is distinct from the generic per-axis Coordinate.Near/DoNearPixel (§4.1)
// the embedded Base still provides for whole-system comparisons that
// don't need the exclusion list.
func (cs *CoordinateSystem) NearCompare(other *CoordinateSystem, excludedPixelAxes []int, tol float64) (bool, string) {
	if len(cs.entries) != len(other.entries) {
		return false, "sub-coordinate counts differ"
	}
	excluded := make(map[int]bool, len(excludedPixelAxes))
	for _, a := range excludedPixelAxes {
		excluded[a] = true
	}
	for i, e := range cs.entries {
		oe := other.entries[i]
		if e.coord.Kind() != oe.coord.Kind() {
			return false, fmt.Sprintf("sub-coordinate %d kind differs", i)
		}
		// Translate exposed pixel axes into positions within this
		// sub-coordinate, for the map comparison and the per-axis selector.
		skip := make(map[int]bool)
		axes := make([]bool, e.coord.NWorldAxes())
		for j := range axes {
			axes[j] = true
		}
		for j, m := range e.pixelMap {
			if m >= 0 && excluded[m] {
				skip[j] = true
				if j < len(axes) {
					axes[j] = false
				}
			}
		}
		if !intSlicesEqualExcluding(e.pixelMap, oe.pixelMap, skip) {
			return false, fmt.Sprintf("sub-coordinate %d pixel map differs", i)
		}
		if !intSlicesEqual(e.worldMap, oe.worldMap) {
			return false, fmt.Sprintf("sub-coordinate %d world map differs", i)
		}
		if ok, msg := e.coord.DoNearPixel(oe.coord, axes, axes, tol); !ok {
			return false, fmt.Sprintf("sub-coordinate %d: %s", i, msg)
		}
	}
	return true, ""
}

func intSlicesEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func intSlicesEqualExcluding(a, b []int, excluded map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if excluded[i] {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Save writes the whole CoordinateSystem to rec under keyPrefix, emitting
// the sub-record keys named in spec.md §6: "linear<k>", "direction<k>",
// "spectral<k>", "stokes<k>", "tabular<k>", "coordsys<k>" (nested system),
// plus "worldmap<k>", "worldreplace<k>", "pixelmap<k>", "pixelreplace<k>".
func (cs *CoordinateSystem) Save(rec *record.Record, keyPrefix string) error {
	rec.SetInt(keyPrefix+".ncoordinates", len(cs.entries))
	for k, e := range cs.entries {
		sub := fmt.Sprintf("%s.%s%d", keyPrefix, subKeyName(e.coord.Kind()), k)
		if err := e.coord.Save(rec, sub); err != nil {
			return err
		}
		rec.SetIntSliceLike(fmt.Sprintf("%s.worldmap%d", keyPrefix, k), e.worldMap)
		rec.SetIntSliceLike(fmt.Sprintf("%s.pixelmap%d", keyPrefix, k), e.pixelMap)
		rec.SetFloat64Slice(fmt.Sprintf("%s.worldreplace%d", keyPrefix, k), e.worldReplace)
		rec.SetFloat64Slice(fmt.Sprintf("%s.pixelreplace%d", keyPrefix, k), e.pixelReplace)
		rec.SetString(fmt.Sprintf("%s.kind%d", keyPrefix, k), e.coord.Kind().String())
	}
	return nil
}

func subKeyName(k coordinate.Kind) string {
	switch k {
	case coordinate.Linear:
		return "linear"
	case coordinate.Direction:
		return "direction"
	case coordinate.Spectral:
		return "spectral"
	case coordinate.Stokes:
		return "stokes"
	case coordinate.Tabular:
		return "tabular"
	default:
		return "coordsys"
	}
}

// Restore reconstructs a CoordinateSystem from a record written by Save,
// in place. It satisfies the Coordinate interface's Restore method; use
// the package-level NewFromRecord to both allocate and restore.
func (cs *CoordinateSystem) Restore(rec *record.Record, keyPrefix string) error {
	n, ok := rec.GetInt(keyPrefix + ".ncoordinates")
	if !ok {
		return fmt.Errorf("coordsys: record missing %s.ncoordinates", keyPrefix)
	}
	cs.entries = nil
	cs.nWorld = 0
	cs.nPixel = 0
	for k := 0; k < n; k++ {
		kindStr, ok := rec.GetString(fmt.Sprintf("%s.kind%d", keyPrefix, k))
		if !ok {
			return fmt.Errorf("coordsys: record missing kind for sub-coordinate %d", k)
		}
		sub := fmt.Sprintf("%s.%s%d", keyPrefix, subKeyNameFromString(kindStr), k)

		var c coordinate.Coordinate
		switch kindStr {
		case "Linear":
			c = &linear.Coordinate{}
		case "Direction":
			c = &direction.Coordinate{}
		case "Spectral":
			c = &spectral.Coordinate{}
		case "Stokes":
			c = &stokes.Coordinate{}
		case "Tabular":
			c = &tabular.Coordinate{}
		case "System":
			c = New()
		default:
			return fmt.Errorf("coordsys: unknown sub-coordinate kind %q", kindStr)
		}
		if err := c.Restore(rec, sub); err != nil {
			return err
		}

		wm, _ := rec.GetIntSliceLike(fmt.Sprintf("%s.worldmap%d", keyPrefix, k))
		pm, _ := rec.GetIntSliceLike(fmt.Sprintf("%s.pixelmap%d", keyPrefix, k))
		wr, _ := rec.GetFloat64Slice(fmt.Sprintf("%s.worldreplace%d", keyPrefix, k))
		pr, _ := rec.GetFloat64Slice(fmt.Sprintf("%s.pixelreplace%d", keyPrefix, k))

		cs.entries = append(cs.entries, &entry{
			coord:        c,
			worldMap:     wm,
			pixelMap:     pm,
			worldReplace: wr,
			pixelReplace: pr,
		})
	}
	cs.nWorld = maxMapEntry(cs.entries, func(e *entry) []int { return e.worldMap })
	cs.nPixel = maxMapEntry(cs.entries, func(e *entry) []int { return e.pixelMap })
	return nil
}

// maxMapEntry returns one more than the largest non-negative index across
// every sub-coordinate's exposed-axis map, i.e. the number of axes still
// exposed after any RemoveWorldAxis/RemovePixelAxis calls recorded in the
// saved maps (those entries are -1 and don't count).
func maxMapEntry(entries []*entry, mapOf func(*entry) []int) int {
	max := -1
	for _, e := range entries {
		for _, m := range mapOf(e) {
			if m > max {
				max = m
			}
		}
	}
	return max + 1
}

// NewFromRecord allocates a CoordinateSystem and restores it from rec.
func NewFromRecord(rec *record.Record, keyPrefix string) (*CoordinateSystem, error) {
	cs := New()
	if err := cs.Restore(rec, keyPrefix); err != nil {
		return nil, err
	}
	return cs, nil
}

func subKeyNameFromString(kind string) string {
	switch kind {
	case "Linear":
		return "linear"
	case "Direction":
		return "direction"
	case "Spectral":
		return "spectral"
	case "Stokes":
		return "stokes"
	case "Tabular":
		return "tabular"
	default:
		return "coordsys"
	}
}
