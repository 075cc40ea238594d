// Package tabular implements TabularCoordinate, the one-axis lookup-table
// sub-coordinate (spec.md C4): world values are given explicitly at
// tabulated pixel positions rather than computed from a linear formula,
// interpolated linearly between the two nearest tabulated points and
// extrapolated using the end segment's slope outside the table's range.
package tabular

import (
	"fmt"
	"sort"

	"github.com/skyproj/wcscoord/coordinate"
	"github.com/skyproj/wcscoord/record"
	"gonum.org/v1/gonum/mat"
)

// Coordinate is a one-axis tabular (piecewise-linear lookup) sub-coordinate.
type Coordinate struct {
	coordinate.Base

	pixelValues []float64 // strictly increasing
	worldValues []float64 // monotonic, same length

	name      string
	unit      string
	preferred string
}

// New builds a TabularCoordinate from parallel pixel/world tables. Both
// must have the same length >= 2 and pixelValues must be strictly
// increasing.
func New(pixelValues, worldValues []float64, name, unit string) (*Coordinate, error) {
	if len(pixelValues) != len(worldValues) {
		return nil, fmt.Errorf("tabular: pixel and world tables must have equal length")
	}
	if len(pixelValues) < 2 {
		return nil, fmt.Errorf("tabular: table must have at least 2 points")
	}
	if !sort.Float64sAreSorted(pixelValues) {
		return nil, fmt.Errorf("tabular: pixelValues must be strictly increasing")
	}
	for i := 1; i < len(pixelValues); i++ {
		if pixelValues[i] == pixelValues[i-1] {
			return nil, fmt.Errorf("tabular: pixelValues must be strictly increasing")
		}
	}
	c := &Coordinate{
		pixelValues: append([]float64(nil), pixelValues...),
		worldValues: append([]float64(nil), worldValues...),
		name:        name,
		unit:        unit,
		preferred:   unit,
	}
	c.Base.Init(c)
	return c, nil
}

func (c *Coordinate) NPixelAxes() int { return 1 }
func (c *Coordinate) NWorldAxes() int { return 1 }

func (c *Coordinate) ReferenceValue() []float64 { return []float64{c.worldValues[0]} }
func (c *Coordinate) ReferencePixel() []float64 { return []float64{c.pixelValues[0]} }
func (c *Coordinate) Increment() []float64 {
	return []float64{(c.worldValues[1] - c.worldValues[0]) / (c.pixelValues[1] - c.pixelValues[0])}
}
func (c *Coordinate) LinearTransform() *mat.Dense {
	m := mat.NewDense(1, 1, nil)
	m.Set(0, 0, 1)
	return m
}

func (c *Coordinate) WorldAxisNames() []string          { return []string{c.name} }
func (c *Coordinate) WorldAxisUnits() []string          { return []string{c.unit} }
func (c *Coordinate) PreferredWorldAxisUnits() []string { return []string{c.preferred} }

func (c *Coordinate) Kind() coordinate.Kind { return coordinate.Tabular }

func (c *Coordinate) ToWorld(pixel []float64) ([]float64, error) {
	if len(pixel) != 1 {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "pixel has length %d, want 1", len(pixel))
	}
	return []float64{interp(c.pixelValues, c.worldValues, pixel[0])}, nil
}

func (c *Coordinate) ToPixel(world []float64) ([]float64, error) {
	if len(world) != 1 {
		return nil, coordinate.Wrap(coordinate.ErrDimensionMismatch, "world has length %d, want 1", len(world))
	}
	return []float64{interp(c.worldValues, c.pixelValues, world[0])}, nil
}

// interp does piecewise-linear interpolation of xs->ys at x, extrapolating
// using the nearest segment's slope when x falls outside [xs[0], xs[n-1]].
// xs need not be increasing (used both pixel->world and world->pixel).
func interp(xs, ys []float64, x float64) float64 {
	n := len(xs)
	increasing := xs[n-1] >= xs[0]

	idx := sort.Search(n, func(i int) bool {
		if increasing {
			return xs[i] >= x
		}
		return xs[i] <= x
	})

	var i0, i1 int
	switch {
	case idx <= 0:
		i0, i1 = 0, 1
	case idx >= n:
		i0, i1 = n-2, n-1
	default:
		i0, i1 = idx-1, idx
	}
	x0, x1 := xs[i0], xs[i1]
	y0, y1 := ys[i0], ys[i1]
	if x1 == x0 {
		return y0
	}
	t := (x - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
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
	for i := range c.worldValues {
		c.worldValues[i] *= factors[0]
	}
	c.unit = newUnits[0]
	return nil
}

func (c *Coordinate) SetReferencePixel([]float64) error {
	return coordinate.Wrap(coordinate.ErrConversionFailure, "tabular: reference pixel is fixed by the table")
}

func (c *Coordinate) SetReferenceValue([]float64) error {
	return coordinate.Wrap(coordinate.ErrConversionFailure, "tabular: reference value is fixed by the table")
}

func (c *Coordinate) SetIncrement([]float64) error {
	return coordinate.Wrap(coordinate.ErrConversionFailure, "tabular: increment is fixed by the table")
}

func (c *Coordinate) SetLinearTransform(pc *mat.Dense) error {
	r, col := pc.Dims()
	if r != 1 || col != 1 || pc.At(0, 0) != 1 {
		return coordinate.Wrap(coordinate.ErrDimensionMismatch, "tabular linear transform is fixed at [[1]]")
	}
	return nil
}

func (c *Coordinate) Clone() coordinate.Coordinate {
	dup, _ := New(c.pixelValues, c.worldValues, c.name, c.unit)
	dup.preferred = c.preferred
	return dup
}

func (c *Coordinate) Save(rec *record.Record, prefix string) error {
	rec.SetFloat64Slice(prefix+".pixelvalues", c.pixelValues)
	rec.SetFloat64Slice(prefix+".worldvalues", c.worldValues)
	rec.SetString(prefix+".name", c.name)
	rec.SetString(prefix+".unit", c.unit)
	return nil
}

func (c *Coordinate) Restore(rec *record.Record, prefix string) error {
	pv, ok1 := rec.GetFloat64Slice(prefix + ".pixelvalues")
	wv, ok2 := rec.GetFloat64Slice(prefix + ".worldvalues")
	if !ok1 || !ok2 {
		return fmt.Errorf("tabular: record missing tables at %s", prefix)
	}
	name, _ := rec.GetString(prefix + ".name")
	unit, _ := rec.GetString(prefix + ".unit")
	c.pixelValues, c.worldValues = pv, wv
	c.name, c.unit, c.preferred = name, unit, unit
	c.Base.Init(c)
	return nil
}
