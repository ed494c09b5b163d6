package d2

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

func EqualWithin(a, b r2.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// Clamp clamps each component of x between the components of a and b.
func Clamp(x, a, b r2.Vec) r2.Vec {
	return r2.Vec{
		X: clamp(x.X, a.X, b.X),
		Y: clamp(x.Y, a.Y, b.Y),
	}
}

func CeilElem(a r2.Vec) r2.Vec {
	return r2.Vec{
		X: math.Ceil(a.X),
		Y: math.Ceil(a.Y),
	}
}

func FloorElem(a r2.Vec) r2.Vec {
	return r2.Vec{
		X: math.Floor(a.X),
		Y: math.Floor(a.Y),
	}
}

// ModElem returns the floored modulo of each component of a by m.
func ModElem(a, m r2.Vec) r2.Vec {
	return r2.Vec{
		X: a.X - m.X*math.Floor(a.X/m.X),
		Y: a.Y - m.Y*math.Floor(a.Y/m.Y),
	}
}

// Lerp interpolates linearly from a to b. t=0 returns a, t=1 returns b.
func Lerp(a, b r2.Vec, t float64) r2.Vec {
	return r2.Vec{
		X: (1-t)*a.X + t*b.X,
		Y: (1-t)*a.Y + t*b.Y,
	}
}

// SignedArea returns the shoelace sum of the closed polyline formed by vs,
// computed as the sum of (x[i+1]-x[i])*(y[i+1]+y[i]). Counter-clockwise
// polylines (y axis pointing up) return a negative value.
func SignedArea(vs []r2.Vec) float64 {
	var sum float64
	for i := range vs {
		a := vs[i]
		b := vs[(i+1)%len(vs)]
		sum += (b.X - a.X) * (b.Y + a.Y)
	}
	return sum
}

// Clamp x between a and b, assume a <= b
func clamp(x, a, b float64) float64 {
	return math.Min(b, math.Max(x, a))
}

// Clamp1 clamps x to [-1, 1], the domain of math.Acos.
func Clamp1(x float64) float64 { return clamp(x, -1, 1) }
