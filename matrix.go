package procgen

import (
	"fmt"
	"math"
	"strings"

	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultInverseTolerance is the determinant magnitude below which
// Mat4.Inverse reports ErrSingularMatrix.
const DefaultInverseTolerance = 1e-12

// Mat4 is a 4x4 matrix of float32 values stored in column-major order,
// the layout expected by graphics APIs. Use Get and Set to access elements
// by row and column. The zero value is the zero matrix, use Identity
// for the identity transform.
type Mat4 [16]float32

// Identity returns the 4x4 identity matrix.
func Identity() Mat4 {
	return Mat4{
		0:  1,
		5:  1,
		10: 1,
		15: 1,
	}
}

// NewMat4 returns a matrix populated with 16 values given in row-major
// form, which is how matrices are usually written in source code.
func NewMat4(rowMajor [16]float32) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m.Set(r, c, rowMajor[r*4+c])
		}
	}
	return m
}

// Get returns the element at row r and column c.
func (m Mat4) Get(r, c int) float32 { return m[c*4+r] }

// Set sets the element at row r and column c.
func (m *Mat4) Set(r, c int, v float32) { m[c*4+r] = v }

// Mul returns the matrix product m*b. Applying the result to a vector
// is equivalent to applying b first and then m.
func (m Mat4) Mul(b Mat4) Mat4 {
	var p Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var dot float32
			for i := 0; i < 4; i++ {
				dot += m.Get(r, i) * b.Get(i, c)
			}
			p.Set(r, c, dot)
		}
	}
	return p
}

// MulVec4 returns the product m*v.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	in := [4]float64{v.X, v.Y, v.Z, v.W}
	var out [4]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r] += float64(m.Get(r, c)) * in[c]
		}
	}
	return Vec4{X: out[0], Y: out[1], Z: out[2], W: out[3]}
}

// MulPosition transforms a position (w=1). No perspective divide is performed.
func (m Mat4) MulPosition(v r3.Vec) r3.Vec {
	return m.MulVec4(Vec4From3(v, 1)).Vec3()
}

// MulDirection transforms a direction (w=0), ignoring translation.
func (m Mat4) MulDirection(v r3.Vec) r3.Vec {
	return m.MulVec4(Vec4From3(v, 0)).Vec3()
}

// Transpose returns the transpose of m.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			t.Set(c, r, m.Get(r, c))
		}
	}
	return t
}

// 2x2 minors of the top two rows (a) and bottom two rows (b) used by
// both Det and Inverse.
type minors struct {
	a0, a1, a2, a3, a4, a5 float64
	b0, b1, b2, b3, b4, b5 float64
}

func (m Mat4) minors() minors {
	g := func(r, c int) float64 { return float64(m.Get(r, c)) }
	return minors{
		a0: g(0, 0)*g(1, 1) - g(0, 1)*g(1, 0),
		a1: g(0, 0)*g(1, 2) - g(0, 2)*g(1, 0),
		a2: g(0, 0)*g(1, 3) - g(0, 3)*g(1, 0),
		a3: g(0, 1)*g(1, 2) - g(0, 2)*g(1, 1),
		a4: g(0, 1)*g(1, 3) - g(0, 3)*g(1, 1),
		a5: g(0, 2)*g(1, 3) - g(0, 3)*g(1, 2),
		b0: g(2, 0)*g(3, 1) - g(2, 1)*g(3, 0),
		b1: g(2, 0)*g(3, 2) - g(2, 2)*g(3, 0),
		b2: g(2, 0)*g(3, 3) - g(2, 3)*g(3, 0),
		b3: g(2, 1)*g(3, 2) - g(2, 2)*g(3, 1),
		b4: g(2, 1)*g(3, 3) - g(2, 3)*g(3, 1),
		b5: g(2, 2)*g(3, 3) - g(2, 3)*g(3, 2),
	}
}

func (k minors) det() float64 {
	return k.a0*k.b5 - k.a1*k.b4 + k.a2*k.b3 + k.a3*k.b2 - k.a4*k.b1 + k.a5*k.b0
}

// Det returns the determinant of m computed in float64.
func (m Mat4) Det() float64 { return m.minors().det() }

// Inverse returns the inverse of m such that m.Mul(inv) is the identity.
// It fails with ErrSingularMatrix if the determinant magnitude is
// below DefaultInverseTolerance.
func (m Mat4) Inverse() (Mat4, error) {
	return m.InverseEps(DefaultInverseTolerance)
}

// InverseEps is like Inverse with a custom singularity tolerance.
func (m Mat4) InverseEps(eps float64) (Mat4, error) {
	k := m.minors()
	det := k.det()
	if math.Abs(det) < eps || math.IsNaN(det) || math.IsInf(det, 0) {
		return Mat4{}, fmt.Errorf("determinant %g: %w", det, ErrSingularMatrix)
	}
	g := func(r, c int) float64 { return float64(m.Get(r, c)) }
	d := 1 / det
	var inv Mat4
	set := func(r, c int, v float64) { inv.Set(r, c, float32(v*d)) }
	set(0, 0, +g(1, 1)*k.b5-g(1, 2)*k.b4+g(1, 3)*k.b3)
	set(0, 1, -g(0, 1)*k.b5+g(0, 2)*k.b4-g(0, 3)*k.b3)
	set(0, 2, +g(3, 1)*k.a5-g(3, 2)*k.a4+g(3, 3)*k.a3)
	set(0, 3, -g(2, 1)*k.a5+g(2, 2)*k.a4-g(2, 3)*k.a3)
	set(1, 0, -g(1, 0)*k.b5+g(1, 2)*k.b2-g(1, 3)*k.b1)
	set(1, 1, +g(0, 0)*k.b5-g(0, 2)*k.b2+g(0, 3)*k.b1)
	set(1, 2, -g(3, 0)*k.a5+g(3, 2)*k.a2-g(3, 3)*k.a1)
	set(1, 3, +g(2, 0)*k.a5-g(2, 2)*k.a2+g(2, 3)*k.a1)
	set(2, 0, +g(1, 0)*k.b4-g(1, 1)*k.b2+g(1, 3)*k.b0)
	set(2, 1, -g(0, 0)*k.b4+g(0, 1)*k.b2-g(0, 3)*k.b0)
	set(2, 2, +g(3, 0)*k.a4-g(3, 1)*k.a2+g(3, 3)*k.a0)
	set(2, 3, -g(2, 0)*k.a4+g(2, 1)*k.a2-g(2, 3)*k.a0)
	set(3, 0, -g(1, 0)*k.b3+g(1, 1)*k.b1-g(1, 2)*k.b0)
	set(3, 1, +g(0, 0)*k.b3-g(0, 1)*k.b1+g(0, 2)*k.b0)
	set(3, 2, -g(3, 0)*k.a3+g(3, 1)*k.a1-g(3, 2)*k.a0)
	set(3, 3, +g(2, 0)*k.a3-g(2, 1)*k.a1+g(2, 2)*k.a0)
	return inv, nil
}

// EqualWithin tests the equality of the matrices to within a tolerance.
func (m Mat4) EqualWithin(b Mat4, tol float32) bool {
	for i := range m {
		if math32.Abs(m[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

// Dense returns a gonum copy of m in float64 precision.
func (m Mat4) Dense() *mat.Dense {
	d := mat.NewDense(4, 4, nil)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			d.Set(r, c, float64(m.Get(r, c)))
		}
	}
	return d
}

func (m Mat4) String() string {
	var sb strings.Builder
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%.3g", m.Get(r, c))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Scale3D returns a matrix scaling each axis by the given factor.
func Scale3D(x, y, z float32) Mat4 {
	m := Identity()
	m.Set(0, 0, x)
	m.Set(1, 1, y)
	m.Set(2, 2, z)
	return m
}

// Translate3D returns a matrix that offsets positions by (x, y, z).
func Translate3D(x, y, z float32) Mat4 {
	m := Identity()
	m.Set(0, 3, x)
	m.Set(1, 3, y)
	m.Set(2, 3, z)
	return m
}

// Rotate3D returns the matrix rotating by degrees about axis, built with
// Rodrigues' formula. The axis is assumed to be of unit length.
func Rotate3D(axis r3.Vec, degrees float32) Mat4 {
	sin, cos := math32.Sincos(DtoR32(degrees))
	comp := 1 - cos
	x, y, z := float32(axis.X), float32(axis.Y), float32(axis.Z)
	m := Identity()
	m.Set(0, 0, comp*x*x+cos)
	m.Set(0, 1, comp*x*y-sin*z)
	m.Set(0, 2, comp*x*z+sin*y)
	m.Set(1, 0, comp*y*x+sin*z)
	m.Set(1, 1, comp*y*y+cos)
	m.Set(1, 2, comp*y*z-sin*x)
	m.Set(2, 0, comp*z*x-sin*y)
	m.Set(2, 1, comp*z*y+sin*x)
	m.Set(2, 2, comp*z*z+cos)
	return m
}

// Ortho returns an orthographic projection mapping the given box to
// normalized device coordinates. The OpenGL defaults are near=-1 and far=1.
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	m := Identity()
	m.Set(0, 0, 2/(right-left))
	m.Set(1, 1, 2/(top-bottom))
	m.Set(2, 2, 2/(near-far))
	m.Set(0, 3, -(right+left)/(right-left))
	m.Set(1, 3, -(top+bottom)/(top-bottom))
	m.Set(2, 3, (near+far)/(near-far))
	return m
}

// InverseOrtho returns the inverse of Ortho with the same arguments
// without computing a general inverse. It maps normalized device
// coordinates back to view space.
func InverseOrtho(left, right, bottom, top, near, far float32) Mat4 {
	m := Scale3D((right-left)*0.5, (top-bottom)*0.5, (near-far)*0.5)
	m.Set(0, 3, (right+left)*0.5)
	m.Set(1, 3, (top+bottom)*0.5)
	m.Set(2, 3, -(far+near)*0.5)
	return m
}

// FrustumPerspective returns a perspective projection for the given
// view frustum planes.
func FrustumPerspective(left, right, bottom, top, near, far float32) Mat4 {
	m := Identity()
	m.Set(0, 0, 2*near/(right-left))
	m.Set(1, 1, 2*near/(top-bottom))
	m.Set(2, 2, (near+far)/(near-far))
	m.Set(0, 2, (right+left)/(right-left))
	m.Set(1, 2, (top+bottom)/(top-bottom))
	m.Set(2, 3, 2*far*near/(near-far))
	m.Set(3, 2, -1)
	m.Set(3, 3, 0)
	return m
}

// FovPerspective returns a symmetric perspective projection with a
// vertical field of view of fovY degrees.
func FovPerspective(fovY, aspect, near, far float32) Mat4 {
	y := near * math32.Tan(fovY*math32.Pi/360)
	x := y * aspect
	return FrustumPerspective(-x, x, -y, y, near, far)
}

// LookAt returns the view matrix of an eye at from looking towards to.
// It fails with ErrDegenerateVector if from and to coincide or if up is
// parallel to the viewing direction.
func LookAt(from, to, up r3.Vec) (Mat4, error) {
	forward, err := Unit3(r3.Sub(to, from))
	if err != nil {
		return Mat4{}, fmt.Errorf("view direction: %w", err)
	}
	right, err := Unit3(r3.Cross(forward, up))
	if err != nil {
		return Mat4{}, fmt.Errorf("up vector: %w", err)
	}
	trueUp := r3.Cross(right, forward)
	rot := Identity()
	for c, v := range [3][3]float64{
		{right.X, trueUp.X, -forward.X},
		{right.Y, trueUp.Y, -forward.Y},
		{right.Z, trueUp.Z, -forward.Z},
	} {
		for r := 0; r < 3; r++ {
			rot.Set(r, c, float32(v[r]))
		}
	}
	return rot.Mul(Translate3D(float32(-from.X), float32(-from.Y), float32(-from.Z))), nil
}
