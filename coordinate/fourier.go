package coordinate

import "fmt"

// FourierAxis is the (name, unit, canonical-input-unit) triple spec.md
// §4.2 describes for the Fourier-transform partner of a world axis.
type FourierAxis struct {
	Name             string
	Unit             string
	CanonicalInUnit  string
}

// FourierPartner computes the Fourier-transform partner axis descriptor
// for a given sub-coordinate kind, axis index, input unit and axis name.
// Stokes and System kinds have no Fourier partner (ErrNoFourier); a
// Direction axis index outside {0,1} is ErrInvalidAxis.
func FourierPartner(kind Kind, axis int, inUnit, axisName string) (FourierAxis, error) {
	switch kind {
	case Stokes, System:
		return FourierAxis{}, Wrap(ErrNoFourier, "kind %s has no Fourier partner", kind)
	case Direction:
		if axis != 0 && axis != 1 {
			return FourierAxis{}, Wrap(ErrInvalidAxis, "direction axis %d out of range {0,1}", axis)
		}
		if inUnit == "rad" {
			if axis == 0 {
				return FourierAxis{Name: "UU", Unit: "lambda", CanonicalInUnit: "rad"}, nil
			}
			return FourierAxis{Name: "VV", Unit: "lambda", CanonicalInUnit: "rad"}, nil
		}
	case Linear, Spectral, Tabular:
		switch inUnit {
		case "Hz":
			return FourierAxis{Name: "Time", Unit: "s", CanonicalInUnit: "Hz"}, nil
		case "s":
			return FourierAxis{Name: "Frequency", Unit: "Hz", CanonicalInUnit: "s"}, nil
		}
	}
	return FourierAxis{
		Name:            fmt.Sprintf("Inverse(%s)", axisName),
		Unit:            fmt.Sprintf("1/%s", inUnit),
		CanonicalInUnit: inUnit,
	}, nil
}
