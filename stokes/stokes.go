// Package stokes implements StokesCoordinate, the one-axis polarization
// sub-coordinate (spec.md C4, GLOSSARY "Stokes"). Pixel position along its
// single axis indexes into an ordered list of polarization Types; the
// world value is that Type's FITS integer code as a float64.
package stokes

import (
	"fmt"
	"math"

	"github.com/skyproj/wcscoord/coordinate"
	"github.com/skyproj/wcscoord/record"
	"gonum.org/v1/gonum/mat"
)

// Type is one of the twelve polarization states in the GLOSSARY.
type Type int

const (
	I Type = iota
	Q
	U
	V
	RR
	LL
	RL
	LR
	XX
	YY
	XY
	YX
	NTypes
)

var names = [NTypes]string{"I", "Q", "U", "V", "RR", "LL", "RL", "LR", "XX", "YY", "XY", "YX"}

func (t Type) String() string {
	if t >= 0 && t < NTypes {
		return names[t]
	}
	return "Unknown"
}

// fitsValue is the fixed FITS/WCS integer code table from spec.md §4.4
// import: 1->I, 2->Q, 3->U, 4->V, -1->RR, -2->LL, -3->RL, -4->LR, -5->XX,
// -6->YY, -7->XY, -8->YX.
var fitsValue = map[Type]int{
	I: 1, Q: 2, U: 3, V: 4,
	RR: -1, LL: -2, RL: -3, LR: -4,
	XX: -5, YY: -6, XY: -7, YX: -8,
}

var fromFITS = func() map[int]Type {
	m := make(map[int]Type, len(fitsValue))
	for t, v := range fitsValue {
		m[v] = t
	}
	return m
}()

// FITSValue returns the FITS integer code for a Stokes Type.
func FITSValue(t Type) int { return fitsValue[t] }

// TypeFromFITS reverses FITSValue; ok is false for an out-of-range code.
func TypeFromFITS(v int) (Type, bool) {
	t, ok := fromFITS[v]
	return t, ok
}

// Coordinate is a one-axis Stokes (polarization) sub-coordinate.
type Coordinate struct {
	coordinate.Base

	types []Type
}

// New builds a StokesCoordinate over an ordered sequence of polarization
// types; pixel position i selects types[i].
func New(types []Type) (*Coordinate, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("stokes: at least one type required")
	}
	c := &Coordinate{types: append([]Type(nil), types...)}
	c.Base.Init(c)
	return c, nil
}

func (c *Coordinate) NPixelAxes() int { return 1 }
func (c *Coordinate) NWorldAxes() int { return 1 }

func (c *Coordinate) ReferenceValue() []float64 { return []float64{float64(FITSValue(c.types[0]))} }
func (c *Coordinate) ReferencePixel() []float64 { return []float64{0} }
func (c *Coordinate) Increment() []float64 {
	if len(c.types) > 1 {
		return []float64{float64(FITSValue(c.types[1]) - FITSValue(c.types[0]))}
	}
	return []float64{1}
}
func (c *Coordinate) LinearTransform() *mat.Dense {
	m := mat.NewDense(1, 1, nil)
	m.Set(0, 0, 1)
	return m
}

func (c *Coordinate) WorldAxisNames() []string          { return []string{"Stokes"} }
func (c *Coordinate) WorldAxisUnits() []string          { return []string{""} }
func (c *Coordinate) PreferredWorldAxisUnits() []string { return []string{""} }

func (c *Coordinate) Kind() coordinate.Kind { return coordinate.Stokes }

// Types returns the ordered sequence of polarization types, consumed by
// the FITS bridge's arithmetic-sequence detection (spec.md §4.4 step 6).
func (c *Coordinate) Types() []Type { return append([]Type(nil), c.types...) }

func (c *Coordinate) ToWorld(pixel []float64) ([]float64, error) {
	if len(pixel) != 1 {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "pixel has length %d, want 1", len(pixel))
	}
	idx := int(math.Round(pixel[0]))
	if idx < 0 || idx >= len(c.types) {
		return nil, coordinate.Wrap(coordinate.ErrInvalidAxis, "stokes: pixel index %d out of range [0,%d)", idx, len(c.types))
	}
	return []float64{float64(FITSValue(c.types[idx]))}, nil
}

func (c *Coordinate) ToPixel(world []float64) ([]float64, error) {
	if len(world) != 1 {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "world has length %d, want 1", len(world))
	}
	target := int(math.Round(world[0]))
	for i, t := range c.types {
		if FITSValue(t) == target {
			return []float64{float64(i)}, nil
		}
	}
	return nil, coordinate.Wrap(coordinate.ErrConversionFailure, "stokes: no type with FITS value %d", target)
}

func (c *Coordinate) SetWorldAxisNames([]string) error { return nil }

func (c *Coordinate) SetWorldAxisUnits(newUnits []string) error {
	if len(newUnits) != 1 {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "units has length %d, want 1", len(newUnits))
	}
	if newUnits[0] != "" {
		return coordinate.Wrap(coordinate.ErrIncompatibleUnit, "stokes axis is always dimensionless")
	}
	return nil
}

func (c *Coordinate) SetReferencePixel([]float64) error { return nil }
func (c *Coordinate) SetReferenceValue([]float64) error { return nil }
func (c *Coordinate) SetIncrement([]float64) error      { return nil }
func (c *Coordinate) SetLinearTransform(pc *mat.Dense) error {
	r, col := pc.Dims()
	if r != 1 || col != 1 || pc.At(0, 0) != 1 {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "stokes linear transform is fixed at [[1]]")
	}
	return nil
}

func (c *Coordinate) Clone() coordinate.Coordinate {
	dup, _ := New(c.types)
	return dup
}

func (c *Coordinate) Save(rec *record.Record, prefix string) error {
	ints := make([]float64, len(c.types))
	for i, t := range c.types {
		ints[i] = float64(t)
	}
	rec.SetFloat64Slice(prefix+".types", ints)
	return nil
}

func (c *Coordinate) Restore(rec *record.Record, prefix string) error {
	ints, ok := rec.GetFloat64Slice(prefix + ".types")
	if !ok {
		return fmt.Errorf("stokes: record missing %s.types", prefix)
	}
	types := make([]Type, len(ints))
	for i, v := range ints {
		types[i] = Type(int(v))
	}
	c.types = types
	c.Base.Init(c)
	return nil
}
