package coordinate

import "gonum.org/v1/gonum/mat"

// ToWorldMany is the default bulk forward transform, spec.md §4.1.
// pixel is N_p x T column-major (gonum's Dense is row-major internally,
// but we address it by column via mat.Col/SetCol so the "column is a
// point" contract holds regardless of storage order).
func (b *Base) ToWorldMany(pixel *mat.Dense) (*mat.Dense, []int, error) {
	np, t := pixel.Dims()
	if want := b.self.NPixelAxes(); np != want {
		return nil, nil, Wrap(ErrDimensionMismatch, "pixel matrix has %d rows, want %d", np, want)
	}
	nw := b.self.NWorldAxes()
	world := mat.NewDense(nw, t, nil)

	var failures []int
	var firstErr error

	lastPix := make([]float64, np)
	lastWorld := make([]float64, nw)
	pixCol := make([]float64, np)

	for col := 0; col < t; col++ {
		mat.Col(pixCol, col, pixel)

		same := col != 0
		if same {
			for k := 0; k < np; k++ {
				if !near(pixCol[k], lastPix[k], DefaultTolerance) {
					same = false
					break
				}
			}
		}

		if same {
			world.SetCol(col, lastWorld)
		} else {
			w, err := b.self.ToWorld(pixCol)
			if err != nil {
				failures = append(failures, col)
				if firstErr == nil {
					firstErr = err
				}
			} else {
				world.SetCol(col, w)
				copy(lastWorld, w)
			}
		}
		copy(lastPix, pixCol)
	}

	if len(failures) > 0 {
		b.self.SetLastError(firstErr.Error())
	}
	return world, failures, nil
}

// ToPixelMany is the symmetric inverse of ToWorldMany.
func (b *Base) ToPixelMany(world *mat.Dense) (*mat.Dense, []int, error) {
	nw, t := world.Dims()
	if want := b.self.NWorldAxes(); nw != want {
		return nil, nil, Wrap(ErrDimensionMismatch, "world matrix has %d rows, want %d", nw, want)
	}
	np := b.self.NPixelAxes()
	pixel := mat.NewDense(np, t, nil)

	var failures []int
	var firstErr error

	lastWorld := make([]float64, nw)
	lastPix := make([]float64, np)
	worldCol := make([]float64, nw)

	for col := 0; col < t; col++ {
		mat.Col(worldCol, col, world)

		same := col != 0
		if same {
			for k := 0; k < nw; k++ {
				if !near(worldCol[k], lastWorld[k], DefaultTolerance) {
					same = false
					break
				}
			}
		}

		if same {
			pixel.SetCol(col, lastPix)
		} else {
			p, err := b.self.ToPixel(worldCol)
			if err != nil {
				failures = append(failures, col)
				if firstErr == nil {
					firstErr = err
				}
			} else {
				pixel.SetCol(col, p)
				copy(lastPix, p)
			}
		}
		copy(lastWorld, worldCol)
	}

	if len(failures) > 0 {
		b.self.SetLastError(firstErr.Error())
	}
	return pixel, failures, nil
}
