// Package coordinate defines the abstract Coordinate capability set
// (spec.md §3, component C3) and the default bulk/mixed-solve/formatting
// algorithms every concrete sub-coordinate gets for free by embedding Base.
//
// Coordinate is deliberately large: spec.md's "default algorithms" are
// expressed here as ordinary methods on Base, promoted into any struct
// that embeds it. A concrete sub-coordinate overrides a promoted method
// (e.g. DirectionCoordinate.ToMix, which must be coupled) simply by
// defining its own method of the same name — normal Go method shadowing.
// Base calls back into the concrete type through a self-reference
// (Base.Init) so the promoted defaults still dispatch to the concrete
// type's own ToWorld/ToPixel/etc., the same "template method" shape
// spec.md's design notes ask for from the sum-type-plus-trait rewrite.
package coordinate

import (
	"github.com/skyproj/wcscoord/record"
	"gonum.org/v1/gonum/mat"
)

// Coordinate is the full capability set described in spec.md §3: every
// concrete sub-coordinate (Linear, Direction, Spectral, Stokes, Tabular)
// and the CoordinateSystem composite implement it.
type Coordinate interface {
	NPixelAxes() int
	NWorldAxes() int

	ReferenceValue() []float64
	ReferencePixel() []float64
	Increment() []float64
	LinearTransform() *mat.Dense

	WorldAxisNames() []string
	WorldAxisUnits() []string
	PreferredWorldAxisUnits() []string

	Kind() Kind

	ToWorld(pixel []float64) ([]float64, error)
	ToPixel(world []float64) ([]float64, error)

	SetWorldAxisNames(names []string) error
	SetWorldAxisUnits(units []string) error
	SetReferencePixel(refpix []float64) error
	SetReferenceValue(refval []float64) error
	SetIncrement(inc []float64) error
	SetLinearTransform(pc *mat.Dense) error

	Clone() Coordinate

	// Save writes this coordinate's state into rec under the given key
	// prefix (e.g. "linear0"); Restore reads it back. spec.md §6.
	Save(rec *record.Record, prefix string) error
	Restore(rec *record.Record, prefix string) error

	LastError() string
	SetLastError(string)

	// Default algorithms, promoted from Base, overridable by embedders.
	ToWorldMany(pixel *mat.Dense) (world *mat.Dense, failures []int, err error)
	ToPixelMany(world *mat.Dense) (pixel *mat.Dense, failures []int, err error)
	ToMix(in MixInput) (MixOutput, error)
	MakeWorldAbsolute(world []float64) ([]float64, error)
	MakeWorldRelative(world []float64) ([]float64, error)
	MakePixelAbsolute(pixel []float64) ([]float64, error)
	MakePixelRelative(pixel []float64) ([]float64, error)
	Format(opts FormatOptions) (FormatResult, error)
	Near(other Coordinate, tol float64) (bool, string)
	DoNearPixel(other Coordinate, theseAxes, otherAxes []bool, tol float64) (bool, string)
}

// near is the relative-tolerance predicate spec.md §4.1/§5 requires to be
// symmetric and reflexive, and to be used identically by the bulk-transform
// caching fast path and every other near-equality check in this module.
func near(a, b, tol float64) bool {
	if a == b {
		return true
	}
	d := a - b
	if d < 0 {
		d = -d
	}
	m := absMax(a, b)
	return d <= tol*m
}

func absMax(a, b float64) float64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}

// DefaultTolerance is the relative tolerance used by the bulk-transform
// column-caching fast path (ToWorldMany/ToPixelMany) for every coordinate.
var DefaultTolerance = 1e-6
