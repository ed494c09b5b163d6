package field

import "errors"

var (
	// ErrChannelMismatch is returned when combining fields whose channel
	// counts or dimensions differ.
	ErrChannelMismatch = errors.New("channel mismatch")
	// ErrBadDimensions is returned when a grid is allocated with a
	// non-positive dimension or channel count.
	ErrBadDimensions = errors.New("bad dimensions")
)

// ErrBadLayerCount is returned by fractal generators asked for less than one layer.
var ErrBadLayerCount = errors.New("layer count must be at least 1")
