// Package direction implements DirectionCoordinate, the two-axis celestial
// sky sub-coordinate (spec.md C4). Its two axes (longitude, latitude) are
// coupled through a projection.Descriptor, so unlike linear/spectral/
// tabular it must override the default decoupled Coordinate.ToMix.
//
// Reference angles and increments are carried in golang/geo's s1.Angle so
// degree/radian conversion reuses the library (spec.md's
// DOMAIN STACK) instead of ad hoc math.Pi/180 arithmetic. The public sky
// position accessor returns an orb.Point ([lon,lat] pair), matching how
// the teacher's types package hands sky positions to geojson callers.
package direction

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
	"github.com/paulmach/orb"
	"github.com/skyproj/wcscoord/coordinate"
	"github.com/skyproj/wcscoord/projection"
	"github.com/skyproj/wcscoord/record"
	"gonum.org/v1/gonum/mat"
)

// Frame names the celestial reference frame.
type Frame int

const (
	J2000 Frame = iota
	B1950
	Galactic
)

func (f Frame) String() string {
	switch f {
	case J2000:
		return "J2000"
	case B1950:
		return "B1950"
	case Galactic:
		return "GALACTIC"
	default:
		return "UNKNOWN"
	}
}

// Coordinate is a two-axis sky direction sub-coordinate: axis 0 is
// longitude, axis 1 is latitude.
type Coordinate struct {
	coordinate.Base

	refPix [2]float64
	refVal [2]s1.Angle // radians
	inc    [2]s1.Angle
	pc     *mat.Dense // 2x2

	proj  projection.Descriptor
	frame Frame

	names     [2]string
	units     [2]string
	preferred [2]string
}

// New builds a DirectionCoordinate. refVal and inc are in radians.
func New(refPix [2]float64, refValRad, incRad [2]float64, pc *mat.Dense, proj projection.Descriptor, frame Frame) (*Coordinate, error) {
	if pc == nil {
		pc = mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	}
	if r, c := pc.Dims(); r != 2 || c != 2 {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "direction pc must be 2x2, got %dx%d", r, c)
	}
	c := &Coordinate{
		refPix: refPix,
		refVal: [2]s1.Angle{s1.Angle(refValRad[0]), s1.Angle(refValRad[1])},
		inc:    [2]s1.Angle{s1.Angle(incRad[0]), s1.Angle(incRad[1])},
		pc:     mat.DenseCopyOf(pc),
		proj:   proj,
		frame:  frame,
		names:     [2]string{"Right Ascension", "Declination"},
		units:     [2]string{"rad", "rad"},
		preferred: [2]string{"deg", "deg"},
	}
	c.Base.Init(c)
	return c, nil
}

func (c *Coordinate) NPixelAxes() int { return 2 }
func (c *Coordinate) NWorldAxes() int { return 2 }

func (c *Coordinate) ReferenceValue() []float64 {
	return []float64{c.refVal[0].Radians(), c.refVal[1].Radians()}
}
func (c *Coordinate) ReferencePixel() []float64 { return []float64{c.refPix[0], c.refPix[1]} }
func (c *Coordinate) Increment() []float64 {
	return []float64{c.inc[0].Radians(), c.inc[1].Radians()}
}
func (c *Coordinate) LinearTransform() *mat.Dense { return c.pc }

func (c *Coordinate) WorldAxisNames() []string          { return c.names[:] }
func (c *Coordinate) WorldAxisUnits() []string          { return c.units[:] }
func (c *Coordinate) PreferredWorldAxisUnits() []string { return c.preferred[:] }

func (c *Coordinate) Kind() coordinate.Kind { return coordinate.Direction }

// ReferencePoint returns the reference sky position as an orb.Point
// ([lon,lat], degrees), built via s2.LatLng. The values are passed through
// unchanged: a declination outside [-90,90] or an unwrapped longitude is
// neither rejected nor normalized.
func (c *Coordinate) ReferencePoint() orb.Point {
	ll := s2.LatLngFromDegrees(c.refVal[1].Degrees(), c.refVal[0].Degrees())
	return orb.Point{ll.Lng.Degrees(), ll.Lat.Degrees()}
}

// ToWorld maps a pixel position through the linear (PC/increment) term to
// a tangent-plane offset, then through the projection to a sky offset
// added onto the reference direction.
func (c *Coordinate) ToWorld(pixel []float64) ([]float64, error) {
	if len(pixel) != 2 {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "pixel has length %d, want 2", len(pixel))
	}
	offset := []float64{
		(pixel[0] - c.refPix[0]) * c.inc[0].Radians(),
		(pixel[1] - c.refPix[1]) * c.inc[1].Radians(),
	}
	x := c.pc.At(0, 0)*offset[0] + c.pc.At(0, 1)*offset[1]
	y := c.pc.At(1, 0)*offset[0] + c.pc.At(1, 1)*offset[1]

	dLong, dLat, err := c.proj.ToSphere(x, y, c.refVal[1].Radians())
	if err != nil {
		return nil, coordinate.Wrap(coordinate.ErrConversionFailure, "direction: %v", err)
	}
	return []float64{
		c.refVal[0].Radians() + dLong,
		c.refVal[1].Radians() + dLat,
	}, nil
}

// ToPixel is the inverse: sky offset -> projection.ToPlane -> invert the
// linear term.
func (c *Coordinate) ToPixel(world []float64) ([]float64, error) {
	if len(world) != 2 {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "world has length %d, want 2", len(world))
	}
	dLong := world[0] - c.refVal[0].Radians()
	dLat := world[1] - c.refVal[1].Radians()

	x, y, err := c.proj.ToPlane(dLong, dLat, c.refVal[1].Radians())
	if err != nil {
		return nil, coordinate.Wrap(coordinate.ErrConversionFailure, "direction: %v", err)
	}

	det := c.pc.At(0, 0)*c.pc.At(1, 1) - c.pc.At(0, 1)*c.pc.At(1, 0)
	if det == 0 {
		return nil, coordinate.Wrap(coordinate.ErrConversionFailure, "direction: singular PC matrix")
	}
	offset0 := (c.pc.At(1, 1)*x - c.pc.At(0, 1)*y) / det
	offset1 := (c.pc.At(0, 0)*y - c.pc.At(1, 0)*x) / det

	if c.inc[0] == 0 || c.inc[1] == 0 {
		return nil, coordinate.Wrap(coordinate.ErrConversionFailure, "direction: zero increment")
	}
	return []float64{
		offset0/c.inc[0].Radians() + c.refPix[0],
		offset1/c.inc[1].Radians() + c.refPix[1],
	}, nil
}

// ToMix overrides Base's default decoupled solver: spec.md §4.1 "Coupled
// sub-coordinates (Direction) must override." Exactly one axis is known
// from each of pixel/world; the unknown pixel component is found by 1-D
// Newton iteration against ToWorld (finite-difference derivative), then
// the remaining world component is read back from a final ToWorld call.
func (c *Coordinate) ToMix(in coordinate.MixInput) (coordinate.MixOutput, error) {
	if len(in.WorldAxes) != 2 || len(in.PixelAxes) != 2 {
		return coordinate.MixOutput{}, coordinate.Wrap(coordinate.ErrInvalidMixSelection, "direction.ToMix requires 2-element selectors")
	}
	for i := 0; i < 2; i++ {
		if in.WorldAxes[i] == in.PixelAxes[i] {
			return coordinate.MixOutput{}, coordinate.Wrap(coordinate.ErrInvalidMixSelection, "axis %d must be exactly one of world or pixel", i)
		}
	}

	if in.WorldAxes[0] && in.WorldAxes[1] {
		p, err := c.ToPixel(in.WorldIn)
		if err != nil {
			return coordinate.MixOutput{}, err
		}
		return coordinate.MixOutput{WorldOut: copyOf(in.WorldIn), PixelOut: p}, nil
	}
	if in.PixelAxes[0] && in.PixelAxes[1] {
		w, err := c.ToWorld(in.PixelIn)
		if err != nil {
			return coordinate.MixOutput{}, err
		}
		return coordinate.MixOutput{WorldOut: w, PixelOut: copyOf(in.PixelIn)}, nil
	}

	// Exactly one axis known from each side. idxP is the index where the
	// pixel value is known; idxW = 1-idxP is where the world value is
	// known and the pixel value is the unknown we solve for.
	idxP := 0
	if in.PixelAxes[1] {
		idxP = 1
	}
	idxW := 1 - idxP
	known := in.PixelIn[idxP]
	targetWorld := in.WorldIn[idxW]

	pixel := make([]float64, 2)
	pixel[idxP] = known

	f := func(x float64) (float64, error) {
		pixel[idxW] = x
		w, err := c.ToWorld(pixel)
		if err != nil {
			return 0, err
		}
		return w[idxW] - targetWorld, nil
	}

	x := c.refPix[idxW]
	const h = 1e-5
	const maxIter = 50
	var fx float64
	var err error
	for iter := 0; iter < maxIter; iter++ {
		fx, err = f(x)
		if err != nil {
			return coordinate.MixOutput{}, err
		}
		if math.Abs(fx) < 1e-10 {
			break
		}
		fxh, err := f(x + h)
		if err != nil {
			return coordinate.MixOutput{}, err
		}
		deriv := (fxh - fx) / h
		if deriv == 0 {
			return coordinate.MixOutput{}, coordinate.Wrap(coordinate.ErrConversionFailure, "direction: ToMix failed to converge (zero derivative)")
		}
		x -= fx / deriv
	}
	if math.Abs(fx) >= 1e-6 {
		return coordinate.MixOutput{}, coordinate.Wrap(coordinate.ErrConversionFailure, "direction: ToMix did not converge")
	}

	pixel[idxW] = x
	w, err := c.ToWorld(pixel)
	if err != nil {
		return coordinate.MixOutput{}, err
	}

	worldOut := make([]float64, 2)
	worldOut[idxW] = targetWorld
	worldOut[idxP] = w[idxP]
	pixelOut := make([]float64, 2)
	pixelOut[idxP] = known
	pixelOut[idxW] = x

	return coordinate.MixOutput{WorldOut: worldOut, PixelOut: pixelOut}, nil
}

func copyOf(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func (c *Coordinate) SetWorldAxisNames(names []string) error {
	if len(names) != 2 {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "names has length %d, want 2", len(names))
	}
	c.names[0], c.names[1] = names[0], names[1]
	return nil
}

func (c *Coordinate) SetWorldAxisUnits(newUnits []string) error {
	if coordinate.SameUnits(newUnits, c.units[:]) {
		return nil
	}
	factors, err := coordinate.UnitScaleFactors(c.units[:], newUnits)
	if err != nil {
		return err
	}
	c.inc[0] = s1.Angle(c.inc[0].Radians() * factors[0])
	c.inc[1] = s1.Angle(c.inc[1].Radians() * factors[1])
	c.refVal[0] = s1.Angle(c.refVal[0].Radians() * factors[0])
	c.refVal[1] = s1.Angle(c.refVal[1].Radians() * factors[1])
	c.units[0], c.units[1] = newUnits[0], newUnits[1]
	return nil
}

func (c *Coordinate) SetReferencePixel(refPix []float64) error {
	if len(refPix) != 2 {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "refPix has length %d, want 2", len(refPix))
	}
	c.refPix[0], c.refPix[1] = refPix[0], refPix[1]
	return nil
}

func (c *Coordinate) SetReferenceValue(refVal []float64) error {
	if len(refVal) != 2 {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "refVal has length %d, want 2", len(refVal))
	}
	c.refVal[0], c.refVal[1] = s1.Angle(refVal[0]), s1.Angle(refVal[1])
	return nil
}

func (c *Coordinate) SetIncrement(inc []float64) error {
	if len(inc) != 2 {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "inc has length %d, want 2", len(inc))
	}
	c.inc[0], c.inc[1] = s1.Angle(inc[0]), s1.Angle(inc[1])
	return nil
}

func (c *Coordinate) SetLinearTransform(pc *mat.Dense) error {
	r, col := pc.Dims()
	if r != 2 || col != 2 {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "pc is %dx%d, want 2x2", r, col)
	}
	for k := 0; k < 2; k++ {
		for j := 0; j < 2; j++ {
			c.pc.Set(k, j, pc.At(k, j))
		}
	}
	return nil
}

// Projection returns this coordinate's projection descriptor, consumed by
// the FITS bridge.
func (c *Coordinate) Projection() projection.Descriptor { return c.proj }

// Frame returns the celestial reference frame.
func (c *Coordinate) Frame() Frame { return c.frame }

func (c *Coordinate) Clone() coordinate.Coordinate {
	dup := &Coordinate{
		refPix:    c.refPix,
		refVal:    c.refVal,
		inc:       c.inc,
		pc:        mat.DenseCopyOf(c.pc),
		proj:      c.proj,
		frame:     c.frame,
		names:     c.names,
		units:     c.units,
		preferred: c.preferred,
	}
	dup.Base.Init(dup)
	return dup
}

func (c *Coordinate) Save(rec *record.Record, prefix string) error {
	rec.SetFloat64Slice(prefix+".refpix", c.refPix[:])
	rec.SetFloat64Slice(prefix+".refval", []float64{c.refVal[0].Radians(), c.refVal[1].Radians()})
	rec.SetFloat64Slice(prefix+".increment", []float64{c.inc[0].Radians(), c.inc[1].Radians()})
	rec.SetFloat64Slice(prefix+".pc", []float64{c.pc.At(0, 0), c.pc.At(0, 1), c.pc.At(1, 0), c.pc.At(1, 1)})
	rec.SetStringSlice(prefix+".units", c.units[:])
	rec.SetStringSlice(prefix+".names", c.names[:])
	rec.SetString(prefix+".projection", c.proj.Name())
	rec.SetFloat64Slice(prefix+".projparams", c.proj.Parameters)
	rec.SetString(prefix+".frame", c.frame.String())
	return nil
}

func (c *Coordinate) Restore(rec *record.Record, prefix string) error {
	refPix, _ := rec.GetFloat64Slice(prefix + ".refpix")
	refVal, _ := rec.GetFloat64Slice(prefix + ".refval")
	inc, _ := rec.GetFloat64Slice(prefix + ".increment")
	pc, _ := rec.GetFloat64Slice(prefix + ".pc")
	units, _ := rec.GetStringSlice(prefix + ".units")
	names, _ := rec.GetStringSlice(prefix + ".names")
	projName, _ := rec.GetString(prefix + ".projection")
	projParams, _ := rec.GetFloat64Slice(prefix + ".projparams")
	frameStr, _ := rec.GetString(prefix + ".frame")

	projType, ok := projection.Parse(projName)
	if !ok {
		return coordinate.Wrap(coordinate.ErrFITSUnknownProjection, "direction: unknown projection %q", projName)
	}
	proj, err := projection.New(projType, projParams)
	if err != nil {
		return err
	}

	c.refPix[0], c.refPix[1] = refPix[0], refPix[1]
	c.refVal[0], c.refVal[1] = s1.Angle(refVal[0]), s1.Angle(refVal[1])
	c.inc[0], c.inc[1] = s1.Angle(inc[0]), s1.Angle(inc[1])
	c.pc = mat.NewDense(2, 2, pc)
	copy(c.units[:], units)
	copy(c.names[:], names)
	c.preferred = c.units
	c.proj = proj
	switch frameStr {
	case "B1950":
		c.frame = B1950
	case "GALACTIC":
		c.frame = Galactic
	default:
		c.frame = J2000
	}
	c.Base.Init(c)
	return nil
}
