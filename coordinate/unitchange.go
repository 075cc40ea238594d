package coordinate

import "github.com/skyproj/wcscoord/units"

// UnitScaleFactors implements the scale-factor half of spec.md §4.1's
// "Unit change" algorithm: f[i] = old_scale(i) / new_scale(i). It reports
// IncompatibleUnit if any pair has mismatched dimension or an unknown
// unit. Concrete sub-coordinates call this from their own
// SetWorldAxisUnits (which must also scatter the factors into its own
// increment/reference-value fields and store the new unit strings).
func UnitScaleFactors(oldUnits, newUnits []string) ([]float64, error) {
	if err := checkLen(len(newUnits), len(oldUnits), "units vector"); err != nil {
		return nil, err
	}
	factors := make([]float64, len(oldUnits))
	for i := range oldUnits {
		f, err := units.ScaleFactor(oldUnits[i], newUnits[i])
		if err != nil {
			return nil, Wrap(ErrIncompatibleUnit, "axis %d: %v", i, err)
		}
		factors[i] = f
	}
	return factors, nil
}

// SameUnits reports whether two unit-string vectors are identical
// element-wise — the fast path spec.md §4.1 calls for before doing any
// unit-algebra work at all.
func SameUnits(a, b []string) bool {
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
