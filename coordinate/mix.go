package coordinate

// MixInput bundles the arguments to ToMix (spec.md §4.1). WorldMin/WorldMax
// are the "world-mix ranges" — unused by the default decoupled algorithm,
// present only because coupled overrides (DirectionCoordinate) need them to
// disambiguate a one-to-many spherical inverse.
type MixInput struct {
	WorldIn   []float64
	PixelIn   []float64
	WorldAxes []bool
	PixelAxes []bool
	WorldMin  []float64
	WorldMax  []float64
}

// MixOutput is the result of ToMix.
type MixOutput struct {
	WorldOut []float64
	PixelOut []float64
}

// ToMix implements the default (decoupled) mixed pixel/world solve,
// spec.md §4.1. Coupled sub-coordinates (Direction) must define their own
// ToMix method to shadow this one.
func (b *Base) ToMix(in MixInput) (MixOutput, error) {
	nw := b.self.NWorldAxes()
	np := b.self.NPixelAxes()

	if err := checkLen(len(in.WorldAxes), nw, "world axis selector"); err != nil {
		return MixOutput{}, err
	}
	if err := checkLen(len(in.PixelAxes), np, "pixel axis selector"); err != nil {
		return MixOutput{}, err
	}
	if err := checkLen(len(in.WorldIn), nw, "worldIn"); err != nil {
		return MixOutput{}, err
	}
	if err := checkLen(len(in.PixelIn), np, "pixelIn"); err != nil {
		return MixOutput{}, err
	}

	if nw != np {
		// The per-axis "exactly one of world/pixel" contract only makes
		// sense when the two selectors line up index-for-index; every
		// concrete sub-coordinate in this module has nw == np, so this
		// is a configuration error rather than a reachable runtime path.
		return MixOutput{}, Wrap(ErrInvalidMixSelection, "ToMix requires nWorldAxes == nPixelAxes (%d != %d)", nw, np)
	}
	for i := 0; i < nw; i++ {
		if in.WorldAxes[i] == in.PixelAxes[i] {
			return MixOutput{}, Wrap(ErrInvalidMixSelection, "axis %d must be exactly one of world or pixel", i)
		}
	}

	b.mixWorldScratch = ensureLen(b.mixWorldScratch, nw)
	b.mixPixelScratch = ensureLen(b.mixPixelScratch, np)

	// Step 1: world -> pixel using reference value for unselected axes.
	copy(b.mixWorldScratch, b.self.ReferenceValue())
	for i := 0; i < nw; i++ {
		if in.WorldAxes[i] {
			b.mixWorldScratch[i] = in.WorldIn[i]
		}
	}
	pOut, err := b.self.ToPixel(copyVec(b.mixWorldScratch))
	if err != nil {
		return MixOutput{}, err
	}
	for i := 0; i < np; i++ {
		if in.PixelAxes[i] {
			pOut[i] = in.PixelIn[i]
		}
	}

	// Step 2: pixel -> world using reference pixel for unselected axes.
	copy(b.mixPixelScratch, b.self.ReferencePixel())
	for i := 0; i < np; i++ {
		if in.PixelAxes[i] {
			b.mixPixelScratch[i] = in.PixelIn[i]
		}
	}
	wOut, err := b.self.ToWorld(copyVec(b.mixPixelScratch))
	if err != nil {
		return MixOutput{}, err
	}
	for i := 0; i < nw; i++ {
		if in.WorldAxes[i] {
			wOut[i] = in.WorldIn[i]
		}
	}

	return MixOutput{WorldOut: wOut, PixelOut: pOut}, nil
}
