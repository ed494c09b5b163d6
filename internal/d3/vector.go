package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Element-wise r3.Vec routines used by the mesh and algebra packages.
// gonum's r3 package covers the linear algebra, these cover the rest.

// MinElem return a vector with the minimum components of two vectors.
func MinElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), Z: math.Min(a.Z, b.Z)}
}

// MaxElem return a vector with the maximum components of two vectors.
func MaxElem(a, b r3.Vec) r3.Vec {
	return r3.Vec{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y), Z: math.Max(a.Z, b.Z)}
}

// Clamp clamps each component of x between the components of a and b.
func Clamp(x, a, b r3.Vec) r3.Vec {
	return r3.Vec{
		X: clamp(x.X, a.X, b.X),
		Y: clamp(x.Y, a.Y, b.Y),
		Z: clamp(x.Z, a.Z, b.Z),
	}
}

func CeilElem(a r3.Vec) r3.Vec {
	return r3.Vec{
		X: math.Ceil(a.X),
		Y: math.Ceil(a.Y),
		Z: math.Ceil(a.Z),
	}
}

func FloorElem(a r3.Vec) r3.Vec {
	return r3.Vec{
		X: math.Floor(a.X),
		Y: math.Floor(a.Y),
		Z: math.Floor(a.Z),
	}
}

// ModElem returns the floored modulo of each component of a by m.
// Results are always in [0, m) for positive m.
func ModElem(a, m r3.Vec) r3.Vec {
	return r3.Vec{
		X: mod(a.X, m.X),
		Y: mod(a.Y, m.Y),
		Z: mod(a.Z, m.Z),
	}
}

// Lerp interpolates linearly from a to b. t=0 returns a, t=1 returns b.
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Vec{
		X: (1-t)*a.X + t*b.X,
		Y: (1-t)*a.Y + t*b.Y,
		Z: (1-t)*a.Z + t*b.Z,
	}
}

// Mean returns the arithmetic mean of the vectors. It returns
// the zero vector for an empty argument.
func Mean(vs ...r3.Vec) r3.Vec {
	if len(vs) == 0 {
		return r3.Vec{}
	}
	var sum r3.Vec
	for _, v := range vs {
		sum = r3.Add(sum, v)
	}
	return r3.Scale(1/float64(len(vs)), sum)
}

// Clamp x between a and b, assume a <= b
func clamp(x, a, b float64) float64 {
	return math.Min(b, math.Max(x, a))
}

func mod(x, m float64) float64 {
	return x - m*math.Floor(x/m)
}

type Set []r3.Vec

// Min return the minimum components of a set of vectors.
func (a Set) Min() r3.Vec {
	vmin := a[0]
	for _, v := range a[1:] {
		vmin = MinElem(vmin, v)
	}
	return vmin
}

// Max return the maximum components of a set of vectors.
func (a Set) Max() r3.Vec {
	vmax := a[0]
	for _, v := range a[1:] {
		vmax = MaxElem(vmax, v)
	}
	return vmax
}
