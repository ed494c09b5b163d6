package procgen

import (
	"fmt"
	"math"

	"github.com/soypat/procgen/internal/d2"
	"github.com/soypat/procgen/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec4 is a 4D vector. Like r2.Vec and r3.Vec it is a value type,
// operations return new vectors.
type Vec4 struct {
	X, Y, Z, W float64
}

// Vec4From3 extends v with a fourth component w. Positions use
// w=1 and directions w=0.
func Vec4From3(v r3.Vec, w float64) Vec4 {
	return Vec4{X: v.X, Y: v.Y, Z: v.Z, W: w}
}

// Vec3 drops the W component.
func (v Vec4) Vec3() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

// Get returns the i'th component of v, where x, y, z and w
// map to indices 0 through 3.
func (v Vec4) Get(i int) (float64, error) {
	switch i {
	case 0:
		return v.X, nil
	case 1:
		return v.Y, nil
	case 2:
		return v.Z, nil
	case 3:
		return v.W, nil
	}
	return 0, fmt.Errorf("component %d of 4D vector: %w", i, ErrIndexOutOfRange)
}

// Add4 returns the vector sum of p and q.
func Add4(p, q Vec4) Vec4 {
	return Vec4{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z, W: p.W + q.W}
}

// Sub4 returns the vector sum of p and -q.
func Sub4(p, q Vec4) Vec4 {
	return Vec4{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z, W: p.W - q.W}
}

// Scale4 returns the vector p scaled by f.
func Scale4(f float64, p Vec4) Vec4 {
	return Vec4{X: f * p.X, Y: f * p.Y, Z: f * p.Z, W: f * p.W}
}

// Dot4 returns the dot product p·q.
func Dot4(p, q Vec4) float64 {
	return p.X*q.X + p.Y*q.Y + p.Z*q.Z + p.W*q.W
}

// Norm4 returns the Euclidean norm of p.
func Norm4(p Vec4) float64 {
	return math.Sqrt(Dot4(p, p))
}

// Lerp4 interpolates linearly from a to b.
func Lerp4(a, b Vec4, t float64) Vec4 {
	return Add4(Scale4(1-t, a), Scale4(t, b))
}

// Unit2 returns the unit vector colinear to v. It fails with
// ErrDegenerateVector if v has zero length.
func Unit2(v r2.Vec) (r2.Vec, error) {
	n := r2.Norm(v)
	if n == 0 || math.IsNaN(n) {
		return r2.Vec{}, ErrDegenerateVector
	}
	return r2.Scale(1/n, v), nil
}

// Unit3 returns the unit vector colinear to v. It fails with
// ErrDegenerateVector if v has zero length.
func Unit3(v r3.Vec) (r3.Vec, error) {
	n := r3.Norm(v)
	if n == 0 || math.IsNaN(n) {
		return r3.Vec{}, ErrDegenerateVector
	}
	return r3.Scale(1/n, v), nil
}

// Unit4 returns the unit vector colinear to v. It fails with
// ErrDegenerateVector if v has zero length.
func Unit4(v Vec4) (Vec4, error) {
	n := Norm4(v)
	if n == 0 || math.IsNaN(n) {
		return Vec4{}, ErrDegenerateVector
	}
	return Scale4(1/n, v), nil
}

// Component2 returns the i'th component of v (0 is x, 1 is y).
func Component2(v r2.Vec, i int) (float64, error) {
	switch i {
	case 0:
		return v.X, nil
	case 1:
		return v.Y, nil
	}
	return 0, fmt.Errorf("component %d of 2D vector: %w", i, ErrIndexOutOfRange)
}

// Component3 returns the i'th component of v (0 is x, 1 is y, 2 is z).
func Component3(v r3.Vec, i int) (float64, error) {
	switch i {
	case 0:
		return v.X, nil
	case 1:
		return v.Y, nil
	case 2:
		return v.Z, nil
	}
	return 0, fmt.Errorf("component %d of 3D vector: %w", i, ErrIndexOutOfRange)
}

// Lerp3 interpolates linearly from a to b.
func Lerp3(a, b r3.Vec, t float64) r3.Vec { return d3.Lerp(a, b, t) }

// Lerp2 interpolates linearly from a to b.
func Lerp2(a, b r2.Vec, t float64) r2.Vec { return d2.Lerp(a, b, t) }

// Floor3 floors every component of v.
func Floor3(v r3.Vec) r3.Vec { return d3.FloorElem(v) }

// Ceil3 rounds every component of v up.
func Ceil3(v r3.Vec) r3.Vec { return d3.CeilElem(v) }

// Mod3 returns the floored modulo of every component of v by the
// corresponding component of m. Negative inputs wrap into [0, m).
func Mod3(v, m r3.Vec) r3.Vec { return d3.ModElem(v, m) }

// Clamp3 clamps every component of v between lo and hi.
func Clamp3(v, lo, hi r3.Vec) r3.Vec { return d3.Clamp(v, lo, hi) }

// Floor2 floors every component of v.
func Floor2(v r2.Vec) r2.Vec { return d2.FloorElem(v) }

// Ceil2 rounds every component of v up.
func Ceil2(v r2.Vec) r2.Vec { return d2.CeilElem(v) }

// Mod2 returns the floored modulo of every component of v by m.
func Mod2(v, m r2.Vec) r2.Vec { return d2.ModElem(v, m) }

// Clamp2 clamps every component of v between lo and hi.
func Clamp2(v, lo, hi r2.Vec) r2.Vec { return d2.Clamp(v, lo, hi) }
