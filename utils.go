package procgen

import "github.com/chewxy/math32"

// DtoR32 converts degrees to radians in single precision.
func DtoR32(degrees float32) float32 {
	return (math32.Pi / 180) * degrees
}

// Clamp x between a and b, assume a <= b
func Clamp(x, a, b float64) float64 {
	if x < a {
		return a
	}
	if x > b {
		return b
	}
	return x
}
