/*

Integer 2D/3D Vectors

*/

package procgen

import "gonum.org/v1/gonum/spatial/r3"

// V2i is a 2D integer vector. Fields use it for dimensions (width, height)
// and cell coordinates.
type V2i [2]int

// V3i is a 3D integer vector. Fields use it for dimensions (width, height, depth)
// and cell coordinates.
type V3i [3]int

// Product returns the product of the components, the cell count
// of a grid with dimensions a.
func (a V2i) Product() int { return a[0] * a[1] }

// Product returns the product of the components, the cell count
// of a grid with dimensions a.
func (a V3i) Product() int { return a[0] * a[1] * a[2] }

// RightShift shifts every component right by n bits, halving the
// resolution n times. Components never drop below 1.
func (a V2i) RightShift(n uint) V2i {
	return V2i{max(a[0]>>n, 1), max(a[1]>>n, 1)}
}

// RightShift shifts every component right by n bits, halving the
// resolution n times. Components never drop below 1.
func (a V3i) RightShift(n uint) V3i {
	return V3i{max(a[0]>>n, 1), max(a[1]>>n, 1), max(a[2]>>n, 1)}
}

// Mod returns the floored modulo of each component by m, always in [0, m).
func (a V2i) Mod(m V2i) V2i {
	return V2i{imod(a[0], m[0]), imod(a[1], m[1])}
}

// Mod returns the floored modulo of each component by m, always in [0, m).
func (a V3i) Mod(m V3i) V3i {
	return V3i{imod(a[0], m[0]), imod(a[1], m[1]), imod(a[2], m[2])}
}

// Positive returns true if all components are greater than zero.
func (a V2i) Positive() bool { return a[0] > 0 && a[1] > 0 }

// Positive returns true if all components are greater than zero.
func (a V3i) Positive() bool { return a[0] > 0 && a[1] > 0 && a[2] > 0 }

// ToR3 converts V3i (integer) to r3.Vec (float).
func (a V3i) ToR3() r3.Vec {
	return r3.Vec{X: float64(a[0]), Y: float64(a[1]), Z: float64(a[2])}
}

func imod(x, m int) int {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}
