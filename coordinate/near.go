package coordinate

import (
	"strconv"

	"github.com/skyproj/wcscoord/units"
)

// DoNearPixel implements spec.md §4.1's axis-descriptor near-equality
// check. It compares kind, axis counts and transform shape exactly, then
// for each selected axis compares unit dimension, reference value,
// increment, reference pixel and the corresponding row/column of the
// linear transform under the relative tolerance tol.
func (b *Base) DoNearPixel(other Coordinate, theseAxes, otherAxes []bool, tol float64) (bool, string) {
	self := b.self

	if self.Kind() != other.Kind() {
		return false, "coordinate kinds differ"
	}
	if self.NPixelAxes() != other.NPixelAxes() {
		return false, "pixel axis counts differ"
	}
	if self.NWorldAxes() != other.NWorldAxes() {
		return false, "world axis counts differ"
	}
	pcA, pcB := self.LinearTransform(), other.LinearTransform()
	ra, ca := pcA.Dims()
	rb, cb := pcB.Dims()
	if ra != rb || ca != cb {
		return false, "linear transform shapes differ"
	}

	if err := checkLen(len(theseAxes), self.NWorldAxes(), "theseAxes"); err != nil {
		return false, err.Error()
	}
	if err := checkLen(len(otherAxes), other.NWorldAxes(), "otherAxes"); err != nil {
		return false, err.Error()
	}

	refA, refB := self.ReferenceValue(), other.ReferenceValue()
	incA, incB := self.Increment(), other.Increment()
	rpA, rpB := self.ReferencePixel(), other.ReferencePixel()
	unitsA, unitsB := self.WorldAxisUnits(), other.WorldAxisUnits()

	for i := 0; i < self.NWorldAxes(); i++ {
		if !theseAxes[i] || !otherAxes[i] {
			continue
		}
		if units.Dimension(unitsA[i]) != units.Dimension(unitsB[i]) {
			return false, "axis unit dimensions differ at axis " + strconv.Itoa(i)
		}
		if !near(refA[i], refB[i], tol) {
			return false, "reference value differs at axis " + strconv.Itoa(i)
		}
		if !near(incA[i], incB[i], tol) {
			return false, "increment differs at axis " + strconv.Itoa(i)
		}
		if i < len(rpA) && i < len(rpB) && !near(rpA[i], rpB[i], tol) {
			return false, "reference pixel differs at axis " + strconv.Itoa(i)
		}
		for j := 0; j < ca; j++ {
			if !near(pcA.At(i, j), pcB.At(i, j), tol) {
				return false, "linear transform row differs at axis " + strconv.Itoa(i)
			}
		}
		for j := 0; j < ra; j++ {
			if !near(pcA.At(j, i), pcB.At(j, i), tol) {
				return false, "linear transform column differs at axis " + strconv.Itoa(i)
			}
		}
	}
	return true, ""
}

// Near is DoNearPixel with every axis selected on both sides — the common
// case of comparing two whole coordinates.
func (b *Base) Near(other Coordinate, tol float64) (bool, string) {
	these := allTrue(b.self.NWorldAxes())
	those := allTrue(other.NWorldAxes())
	return b.DoNearPixel(other, these, those, tol)
}

func allTrue(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

