package coordinate

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure kinds in spec.md §7. Callers check the
// kind of a failure with errors.Is against these, e.g.
// errors.Is(err, coordinate.ErrInvalidAxis).
var (
	ErrDimensionMismatch    = errors.New("dimension mismatch")
	ErrInvalidAxis          = errors.New("invalid axis")
	ErrInvalidPermutation   = errors.New("invalid permutation")
	ErrInvalidIncrement     = errors.New("invalid increment")
	ErrInvalidMixSelection  = errors.New("invalid mix selection")
	ErrIncompatibleUnit     = errors.New("incompatible unit")
	ErrConversionFailure    = errors.New("conversion failure")
	ErrFITSCollision        = errors.New("fits collision")
	ErrFITSInconsistent     = errors.New("fits inconsistent")
	ErrFITSUnknownProjection = errors.New("fits unknown projection")
	ErrNoFourier            = errors.New("no fourier partner")
)

// Wrap produces an error carrying both a human-readable message and a
// sentinel kind that errors.Is can match against.
func Wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), sentinel)
}
