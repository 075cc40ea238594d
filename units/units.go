// Package units provides a minimal unit algebra: parsing unit strings,
// testing dimensional compatibility, and computing scale factors between
// compatible units. It stands in for the "unit algebra library" spec.md
// treats as an external collaborator (C1) — dimension names and scale
// factors only, no display formatting.
package units

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Quantity is a parsed unit: its physical dimension and its scale relative
// to that dimension's canonical (SI-ish) base unit.
type Quantity struct {
	Dimension string
	Scale     float64
}

// Dimensionless is the Quantity for the empty unit string.
var Dimensionless = Quantity{Dimension: "", Scale: 1}

type entry struct {
	dim   string
	scale float64
}

// table maps a canonical (lower-cased, trimmed) unit string to its
// dimension and scale relative to that dimension's base unit.
var table = map[string]entry{
	"":     {"", 1},
	"rad":  {"angle", 1},
	"deg":  {"angle", pi / 180},
	"arcmin": {"angle", pi / 180 / 60},
	"arcsec": {"angle", pi / 180 / 3600},
	"mas":  {"angle", pi / 180 / 3600 / 1000},

	"hz":  {"frequency", 1},
	"khz": {"frequency", 1e3},
	"mhz": {"frequency", 1e6},
	"ghz": {"frequency", 1e9},

	"s":   {"time", 1},
	"min": {"time", 60},
	"h":   {"time", 3600},
	"d":   {"time", 86400},

	"m/s":  {"velocity", 1},
	"km/s": {"velocity", 1000},

	"m":  {"length", 1},
	"km": {"length", 1000},

	"pixel": {"pixel", 1},
	"lambda": {"lambda", 1},
	"jy":    {"flux", 1},
}

const pi = 3.14159265358979323846

var cache *lru.Cache[string, entry]

func init() {
	c, err := lru.New[string, entry](256)
	if err != nil {
		panic(err)
	}
	cache = c
}

// Parse parses a unit string into a Quantity. An empty string is the
// dimensionless unit. Unknown units are an error.
func Parse(unit string) (Quantity, error) {
	key := strings.ToLower(strings.TrimSpace(unit))
	if e, ok := cache.Get(key); ok {
		return Quantity{Dimension: e.dim, Scale: e.scale}, nil
	}
	e, ok := table[key]
	if !ok {
		return Quantity{}, fmt.Errorf("units: unknown unit %q", unit)
	}
	cache.Add(key, e)
	return Quantity{Dimension: e.dim, Scale: e.scale}, nil
}

// Compatible reports whether a and b have the same physical dimension.
// An unparseable unit is never compatible with anything.
func Compatible(a, b string) bool {
	qa, err := Parse(a)
	if err != nil {
		return false
	}
	qb, err := Parse(b)
	if err != nil {
		return false
	}
	return qa.Dimension == qb.Dimension
}

// ScaleFactor returns f such that a value expressed in "from" units equals
// value*f when expressed in "to" units. It fails if either unit fails to
// parse or the two units have different dimensions.
func ScaleFactor(from, to string) (float64, error) {
	qf, err := Parse(from)
	if err != nil {
		return 0, fmt.Errorf("units: %w", err)
	}
	qt, err := Parse(to)
	if err != nil {
		return 0, fmt.Errorf("units: %w", err)
	}
	if qf.Dimension != qt.Dimension {
		return 0, fmt.Errorf("units: %q and %q have incompatible dimensions (%q vs %q)", from, to, qf.Dimension, qt.Dimension)
	}
	return qf.Scale / qt.Scale, nil
}

// Dimension returns the leading, case-insensitive dimension token for a
// unit string, used by axis-descriptor near-equality checks (spec.md
// §4.1 doNearPixel) which compare "the leading non-whitespace token" of
// a unit rather than the fully parsed Quantity.
func Dimension(unit string) string {
	fields := strings.Fields(unit)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
