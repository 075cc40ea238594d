package coordinate

// MakeWorldAbsolute and its siblings implement spec.md §4.1's
// "absolute <-> relative" conversions: v <- v + referenceValue() (or minus,
// or the pixel analogues with referencePixel()).
func (b *Base) MakeWorldAbsolute(world []float64) ([]float64, error) {
	ref := b.self.ReferenceValue()
	if err := checkLen(len(world), len(ref), "world vector"); err != nil {
		return nil, err
	}
	out := make([]float64, len(world))
	for i := range world {
		out[i] = world[i] + ref[i]
	}
	return out, nil
}

func (b *Base) MakeWorldRelative(world []float64) ([]float64, error) {
	ref := b.self.ReferenceValue()
	if err := checkLen(len(world), len(ref), "world vector"); err != nil {
		return nil, err
	}
	out := make([]float64, len(world))
	for i := range world {
		out[i] = world[i] - ref[i]
	}
	return out, nil
}

func (b *Base) MakePixelAbsolute(pixel []float64) ([]float64, error) {
	ref := b.self.ReferencePixel()
	if err := checkLen(len(pixel), len(ref), "pixel vector"); err != nil {
		return nil, err
	}
	out := make([]float64, len(pixel))
	for i := range pixel {
		out[i] = pixel[i] + ref[i]
	}
	return out, nil
}

func (b *Base) MakePixelRelative(pixel []float64) ([]float64, error) {
	ref := b.self.ReferencePixel()
	if err := checkLen(len(pixel), len(ref), "pixel vector"); err != nil {
		return nil, err
	}
	out := make([]float64, len(pixel))
	for i := range pixel {
		out[i] = pixel[i] - ref[i]
	}
	return out, nil
}
