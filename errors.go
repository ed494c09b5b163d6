package procgen

import "errors"

var (
	// ErrDegenerateVector is returned when normalizing a vector of zero length.
	ErrDegenerateVector = errors.New("degenerate vector")
	// ErrSingularMatrix is returned when inverting a matrix whose determinant
	// magnitude is below the inversion tolerance.
	ErrSingularMatrix = errors.New("singular matrix")
	// ErrIndexOutOfRange is returned by component and cell accessors.
	ErrIndexOutOfRange = errors.New("index out of range")
)
