// Package linear implements LinearCoordinate, the simplest concrete
// sub-coordinate (spec.md C4): an N-axis affine map world = refval +
// pc*(inc.*(pixel-refpix)), with N_p == N_w == N. It is the one sub-coordinate
// spec.md gives worked numeric examples for (§8 scenario 1, 6).
package linear

import (
	"fmt"

	"github.com/skyproj/wcscoord/coordinate"
	"github.com/skyproj/wcscoord/record"
	"gonum.org/v1/gonum/mat"
)

// Coordinate is a linear (affine) N-axis sub-coordinate.
type Coordinate struct {
	coordinate.Base

	n int

	refPix []float64
	refVal []float64
	inc    []float64
	pc     *mat.Dense // N x N

	names     []string
	units     []string
	preferred []string
}

// New builds an N-axis LinearCoordinate with the given PC matrix (identity
// when pc is nil), reference pixel, reference value and increment.
func New(names []string, units []string, refPix, refVal, inc []float64, pc *mat.Dense) (*Coordinate, error) {
	n := len(names)
	for _, v := range [][]float64{refPix, refVal, inc} {
		if len(v) != n {
			return nil, fmt.Errorf("linear: all vectors must have length %d", n)
		}
	}
	if len(units) != n {
		return nil, fmt.Errorf("linear: units must have length %d", n)
	}
	if pc == nil {
		pc = mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			pc.Set(i, i, 1)
		}
	}
	if r, c := pc.Dims(); r != n || c != n {
		return nil, fmt.Errorf("linear: pc must be %dx%d, got %dx%d", n, n, r, c)
	}
	c := &Coordinate{
		n:         n,
		refPix:    append([]float64(nil), refPix...),
		refVal:    append([]float64(nil), refVal...),
		inc:       append([]float64(nil), inc...),
		pc:        mat.DenseCopyOf(pc),
		names:     append([]string(nil), names...),
		units:     append([]string(nil), units...),
		preferred: append([]string(nil), units...),
	}
	c.Base.Init(c)
	return c, nil
}

func (c *Coordinate) NPixelAxes() int { return c.n }
func (c *Coordinate) NWorldAxes() int { return c.n }

func (c *Coordinate) ReferenceValue() []float64 { return c.refVal }
func (c *Coordinate) ReferencePixel() []float64 { return c.refPix }
func (c *Coordinate) Increment() []float64      { return c.inc }
func (c *Coordinate) LinearTransform() *mat.Dense { return c.pc }

func (c *Coordinate) WorldAxisNames() []string          { return c.names }
func (c *Coordinate) WorldAxisUnits() []string          { return c.units }
func (c *Coordinate) PreferredWorldAxisUnits() []string { return c.preferred }

func (c *Coordinate) Kind() coordinate.Kind { return coordinate.Linear }

// ToWorld computes world = refval + pc . (inc .* (pixel - refpix)).
func (c *Coordinate) ToWorld(pixel []float64) ([]float64, error) {
	if len(pixel) != c.n {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "pixel has length %d, want %d", len(pixel), c.n)
	}
	offset := make([]float64, c.n)
	for i := range offset {
		offset[i] = (pixel[i] - c.refPix[i]) * c.inc[i]
	}
	off := mat.NewVecDense(c.n, offset)
	var out mat.VecDense
	out.MulVec(c.pc, off)
	world := make([]float64, c.n)
	for i := range world {
		world[i] = c.refVal[i] + out.AtVec(i)
	}
	return world, nil
}

// ToPixel inverts ToWorld by solving pc . x = (world - refval) for x via
// gonum's VecDense.SolveVec, then undoing the increment scale and reference
// pixel offset.
func (c *Coordinate) ToPixel(world []float64) ([]float64, error) {
	if len(world) != c.n {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "world has length %d, want %d", len(world), c.n)
	}
	diff := make([]float64, c.n)
	for i := range diff {
		diff[i] = world[i] - c.refVal[i]
	}
	b := mat.NewVecDense(c.n, diff)
	var x mat.VecDense
	if err := x.SolveVec(c.pc, b); err != nil {
		return nil, coordinate.Wrap(coordinate.ErrConversionFailure, "linear: singular transform: %v", err)
	}
	pixel := make([]float64, c.n)
	for i := range pixel {
		if c.inc[i] == 0 {
			return nil, coordinate.Wrap(coordinate.ErrConversionFailure, "linear: zero increment on axis %d", i)
		}
		pixel[i] = x.AtVec(i)/c.inc[i] + c.refPix[i]
	}
	return pixel, nil
}

func (c *Coordinate) SetWorldAxisNames(names []string) error {
	if len(names) != c.n {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "names has length %d, want %d", len(names), c.n)
	}
	copy(c.names, names)
	return nil
}

func (c *Coordinate) SetWorldAxisUnits(newUnits []string) error {
	if coordinate.SameUnits(newUnits, c.units) {
		return nil
	}
	factors, err := coordinate.UnitScaleFactors(c.units, newUnits)
	if err != nil {
		return err
	}
	for i, f := range factors {
		c.inc[i] *= f
		c.refVal[i] *= f
	}
	copy(c.units, newUnits)
	return nil
}

func (c *Coordinate) SetReferencePixel(refPix []float64) error {
	if len(refPix) != c.n {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "refPix has length %d, want %d", len(refPix), c.n)
	}
	copy(c.refPix, refPix)
	return nil
}

func (c *Coordinate) SetReferenceValue(refVal []float64) error {
	if len(refVal) != c.n {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "refVal has length %d, want %d", len(refVal), c.n)
	}
	copy(c.refVal, refVal)
	return nil
}

func (c *Coordinate) SetIncrement(inc []float64) error {
	if len(inc) != c.n {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "inc has length %d, want %d", len(inc), c.n)
	}
	copy(c.inc, inc)
	return nil
}

// SetLinearTransform replaces the PC matrix. spec.md §9's open question:
// the source's inner loop never advances k; this loops both dimensions
// correctly.
func (c *Coordinate) SetLinearTransform(pc *mat.Dense) error {
	r, col := pc.Dims()
	if r != c.n || col != c.n {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "pc is %dx%d, want %dx%d", r, col, c.n, c.n)
	}
	for k := 0; k < r; k++ {
		for j := 0; j < col; j++ {
			c.pc.Set(k, j, pc.At(k, j))
		}
	}
	return nil
}

func (c *Coordinate) Clone() coordinate.Coordinate {
	dup, _ := New(c.names, c.units, c.refPix, c.refVal, c.inc, c.pc)
	dup.preferred = append([]string(nil), c.preferred...)
	return dup
}

func (c *Coordinate) Save(rec *record.Record, prefix string) error {
	rec.SetStringSlice(prefix+".names", c.names)
	rec.SetStringSlice(prefix+".units", c.units)
	rec.SetFloat64Slice(prefix+".refpix", c.refPix)
	rec.SetFloat64Slice(prefix+".refval", c.refVal)
	rec.SetFloat64Slice(prefix+".increment", c.inc)
	pcFlat := make([]float64, 0, c.n*c.n)
	for i := 0; i < c.n; i++ {
		for j := 0; j < c.n; j++ {
			pcFlat = append(pcFlat, c.pc.At(i, j))
		}
	}
	rec.SetFloat64Slice(prefix+".pc", pcFlat)
	rec.SetInt(prefix+".naxes", c.n)
	return nil
}

func (c *Coordinate) Restore(rec *record.Record, prefix string) error {
	n, ok := rec.GetInt(prefix + ".naxes")
	if !ok {
		return fmt.Errorf("linear: record missing %s.naxes", prefix)
	}
	names, _ := rec.GetStringSlice(prefix + ".names")
	units, _ := rec.GetStringSlice(prefix + ".units")
	refPix, _ := rec.GetFloat64Slice(prefix + ".refpix")
	refVal, _ := rec.GetFloat64Slice(prefix + ".refval")
	inc, _ := rec.GetFloat64Slice(prefix + ".increment")
	pcFlat, _ := rec.GetFloat64Slice(prefix + ".pc")
	pc := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pc.Set(i, j, pcFlat[i*n+j])
		}
	}
	c.n = n
	c.names = names
	c.units = units
	c.preferred = append([]string(nil), units...)
	c.refPix = refPix
	c.refVal = refVal
	c.inc = inc
	c.pc = pc
	c.Base.Init(c)
	return nil
}
