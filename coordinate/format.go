package coordinate

import (
	"strconv"

	"github.com/skyproj/wcscoord/units"
)

// Mode selects the textual rendering of a formatted world value.
// spec.md §4.1: Default is remapped to Scientific.
type Mode int

const (
	Default Mode = iota
	Scientific
	Fixed
)

// defPrecScientific and defPrecFixed are the two independent precision
// defaults from original_source's Coordinate::getPrecision, used whenever
// FormatOptions.Precision is negative (SPEC_FULL.md "Supplemented
// features").
var (
	defPrecScientific = 6
	defPrecFixed      = 6
)

// FormatOptions bundles the arguments to Format, spec.md §4.1.
type FormatOptions struct {
	Axis           int
	Value          float64
	Mode           Mode
	Precision      int
	IsAbsolute     bool
	ShowAsAbsolute bool
	Unit           string // desired unit; empty -> preferred -> native
}

// FormatResult is the rendered text plus the unit it was rendered in.
type FormatResult struct {
	Text string
	Unit string
}

// Format implements spec.md §4.1's default formatter: normalise the
// absolute/relative form of the input value onto the one requested for
// display, resolve the display unit against the native one, convert, and
// render with the selected precision.
func (b *Base) Format(opts FormatOptions) (FormatResult, error) {
	self := b.self
	nw := self.NWorldAxes()
	if opts.Axis < 0 || opts.Axis >= nw {
		return FormatResult{}, Wrap(ErrInvalidAxis, "axis %d out of range [0,%d)", opts.Axis, nw)
	}

	value := opts.Value
	if opts.IsAbsolute != opts.ShowAsAbsolute {
		b.fmtWorldScratch = ensureLen(b.fmtWorldScratch, nw)
		for i := range b.fmtWorldScratch {
			b.fmtWorldScratch[i] = 0
		}
		b.fmtWorldScratch[opts.Axis] = value
		var out []float64
		var err error
		if opts.IsAbsolute {
			out, err = b.MakeWorldRelative(b.fmtWorldScratch)
		} else {
			out, err = b.MakeWorldAbsolute(b.fmtWorldScratch)
		}
		if err != nil {
			return FormatResult{}, err
		}
		value = out[opts.Axis]
	}

	native := self.WorldAxisUnits()[opts.Axis]
	preferred := self.PreferredWorldAxisUnits()[opts.Axis]

	wantUnit := opts.Unit
	if wantUnit == "" {
		wantUnit = preferred
	}
	if wantUnit == "" {
		wantUnit = native
	}

	if !units.Compatible(wantUnit, native) {
		return FormatResult{}, Wrap(ErrIncompatibleUnit, "axis %d: requested unit %q incompatible with native unit %q", opts.Axis, wantUnit, native)
	}
	factor, err := units.ScaleFactor(native, wantUnit)
	if err != nil {
		return FormatResult{}, Wrap(ErrIncompatibleUnit, "axis %d: %v", opts.Axis, err)
	}
	value *= factor

	mode := opts.Mode
	if mode == Default {
		mode = Scientific
	}
	prec := opts.Precision
	var text string
	switch mode {
	case Fixed:
		if prec < 0 {
			prec = defPrecFixed
		}
		text = strconv.FormatFloat(value, 'f', prec, 64)
	default: // Scientific
		if prec < 0 {
			prec = defPrecScientific
		}
		text = strconv.FormatFloat(value, 'e', prec, 64)
	}

	return FormatResult{Text: text, Unit: wantUnit}, nil
}

