// Package spectral implements SpectralCoordinate, the one-axis frequency/
// velocity sub-coordinate (spec.md C4). Frequency<->velocity conversion
// formulas are out of spec.md's scope (§1 "exact numeric formulas... are
// not specified"); this carries a simple linear frequency axis plus a
// rest-frequency field that the FITS bridge writes and reads as restfreq.
package spectral

import (
	"github.com/skyproj/wcscoord/coordinate"
	"github.com/skyproj/wcscoord/record"
	"gonum.org/v1/gonum/mat"
)

// Coordinate is a one-axis spectral (frequency) sub-coordinate.
type Coordinate struct {
	coordinate.Base

	refPix float64
	refVal float64 // Hz
	inc    float64 // Hz/pixel
	pc     *mat.Dense

	restFrequency float64 // Hz, 0 if unset

	name      string
	unit      string
	preferred string
}

// New builds a SpectralCoordinate. refVal and inc are in Hz.
func New(refPix, refVal, inc, restFrequency float64) *Coordinate {
	c := &Coordinate{
		refPix:        refPix,
		refVal:        refVal,
		inc:           inc,
		pc:            identity1(),
		restFrequency: restFrequency,
		name:          "Frequency",
		unit:          "Hz",
		preferred:     "Hz",
	}
	c.Base.Init(c)
	return c
}

func identity1() *mat.Dense {
	m := mat.NewDense(1, 1, nil)
	m.Set(0, 0, 1)
	return m
}

func (c *Coordinate) NPixelAxes() int { return 1 }
func (c *Coordinate) NWorldAxes() int { return 1 }

func (c *Coordinate) ReferenceValue() []float64   { return []float64{c.refVal} }
func (c *Coordinate) ReferencePixel() []float64   { return []float64{c.refPix} }
func (c *Coordinate) Increment() []float64        { return []float64{c.inc} }
func (c *Coordinate) LinearTransform() *mat.Dense { return c.pc }

func (c *Coordinate) WorldAxisNames() []string          { return []string{c.name} }
func (c *Coordinate) WorldAxisUnits() []string          { return []string{c.unit} }
func (c *Coordinate) PreferredWorldAxisUnits() []string { return []string{c.preferred} }

func (c *Coordinate) Kind() coordinate.Kind { return coordinate.Spectral }

// RestFrequency returns the rest frequency in Hz, which the FITS bridge
// writes as the restfreq keyword when it is positive; no velocity axis is
// encoded.
func (c *Coordinate) RestFrequency() float64 { return c.restFrequency }

func (c *Coordinate) ToWorld(pixel []float64) ([]float64, error) {
	if len(pixel) != 1 {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "pixel has length %d, want 1", len(pixel))
	}
	return []float64{c.refVal + (pixel[0]-c.refPix)*c.inc*c.pc.At(0, 0)}, nil
}

func (c *Coordinate) ToPixel(world []float64) ([]float64, error) {
	if len(world) != 1 {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "world has length %d, want 1", len(world))
	}
	if c.inc == 0 || c.pc.At(0, 0) == 0 {
		return nil, coordinate.Wrap(coordinate.ErrConversionFailure, "spectral: zero increment")
	}
	return []float64{(world[0]-c.refVal)/(c.inc*c.pc.At(0, 0)) + c.refPix}, nil
}

func (c *Coordinate) SetWorldAxisNames(names []string) error {
	if len(names) != 1 {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "names has length %d, want 1", len(names))
	}
	c.name = names[0]
	return nil
}

func (c *Coordinate) SetWorldAxisUnits(newUnits []string) error {
	if coordinate.SameUnits(newUnits, []string{c.unit}) {
		return nil
	}
	factors, err := coordinate.UnitScaleFactors([]string{c.unit}, newUnits)
	if err != nil {
		return err
	}
	c.inc *= factors[0]
	c.refVal *= factors[0]
	c.unit = newUnits[0]
	return nil
}

func (c *Coordinate) SetReferencePixel(refPix []float64) error {
	if len(refPix) != 1 {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "refPix has length %d, want 1", len(refPix))
	}
	c.refPix = refPix[0]
	return nil
}

func (c *Coordinate) SetReferenceValue(refVal []float64) error {
	if len(refVal) != 1 {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "refVal has length %d, want 1", len(refVal))
	}
	c.refVal = refVal[0]
	return nil
}

func (c *Coordinate) SetIncrement(inc []float64) error {
	if len(inc) != 1 {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "inc has length %d, want 1", len(inc))
	}
	c.inc = inc[0]
	return nil
}

func (c *Coordinate) SetLinearTransform(pc *mat.Dense) error {
	r, col := pc.Dims()
	if r != 1 || col != 1 {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "pc is %dx%d, want 1x1", r, col)
	}
	c.pc.Set(0, 0, pc.At(0, 0))
	return nil
}

func (c *Coordinate) Clone() coordinate.Coordinate {
	dup := New(c.refPix, c.refVal, c.inc, c.restFrequency)
	dup.pc.Set(0, 0, c.pc.At(0, 0))
	dup.name, dup.unit, dup.preferred = c.name, c.unit, c.preferred
	return dup
}

func (c *Coordinate) Save(rec *record.Record, prefix string) error {
	rec.SetFloat64(prefix+".refpix", c.refPix)
	rec.SetFloat64(prefix+".refval", c.refVal)
	rec.SetFloat64(prefix+".increment", c.inc)
	rec.SetFloat64(prefix+".pc", c.pc.At(0, 0))
	rec.SetFloat64(prefix+".restfreq", c.restFrequency)
	rec.SetString(prefix+".unit", c.unit)
	rec.SetString(prefix+".name", c.name)
	return nil
}

func (c *Coordinate) Restore(rec *record.Record, prefix string) error {
	refPix, _ := rec.GetFloat64(prefix + ".refpix")
	refVal, _ := rec.GetFloat64(prefix + ".refval")
	inc, _ := rec.GetFloat64(prefix + ".increment")
	pc, _ := rec.GetFloat64(prefix + ".pc")
	rest, _ := rec.GetFloat64(prefix + ".restfreq")
	unit, _ := rec.GetString(prefix + ".unit")
	name, _ := rec.GetString(prefix + ".name")

	c.refPix, c.refVal, c.inc, c.restFrequency = refPix, refVal, inc, rest
	c.pc = identity1()
	c.pc.Set(0, 0, pc)
	c.unit, c.preferred, c.name = unit, unit, name
	c.Base.Init(c)
	return nil
}
