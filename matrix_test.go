package procgen_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/soypat/procgen"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func randomMat4(rng *rand.Rand) procgen.Mat4 {
	var m procgen.Mat4
	for i := range m {
		m[i] = float32(rng.Float64()*4 - 2)
	}
	return m
}

func TestInverse(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	id := procgen.Identity()
	for i := 0; i < 100; i++ {
		m := randomMat4(rng)
		if math.Abs(m.Det()) < 0.5 {
			continue // Poorly conditioned.
		}
		inv, err := m.Inverse()
		if err != nil {
			t.Fatal(err)
		}
		if got := m.Mul(inv); !got.EqualWithin(id, 1e-4) {
			t.Errorf("M*inv(M) not identity:\n%v", got)
		}
		if got := inv.Mul(m); !got.EqualWithin(id, 1e-4) {
			t.Errorf("inv(M)*M not identity:\n%v", got)
		}
		// Compare against gonum.
		var want mat.Dense
		if err := want.Inverse(m.Dense()); err != nil {
			t.Fatal(err)
		}
		if !mat.EqualApprox(inv.Dense(), &want, 1e-3) {
			t.Errorf("inverse disagrees with gonum:\n%v\nwant\n%v", inv, mat.Formatted(&want))
		}
	}
}

func TestDet(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 20; i++ {
		m := randomMat4(rng)
		want := mat.Det(m.Dense())
		if got := m.Det(); math.Abs(got-want) > 1e-9*math.Max(1, math.Abs(want)) {
			t.Errorf("got determinant %g, want %g", got, want)
		}
	}
}

func TestInverseSingular(t *testing.T) {
	for _, m := range []procgen.Mat4{
		{},
		procgen.Scale3D(1, 0, 1),
		procgen.NewMat4([16]float32{
			1, 2, 3, 4,
			2, 4, 6, 8,
			0, 1, 0, 1,
			1, 0, 1, 0,
		}),
	} {
		if _, err := m.Inverse(); !errors.Is(err, procgen.ErrSingularMatrix) {
			t.Errorf("got %v, want ErrSingularMatrix for\n%v", err, m)
		}
	}
}

func TestLayout(t *testing.T) {
	m := procgen.NewMat4([16]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	})
	// Column-major storage.
	if m[1] != 5 || m[4] != 2 {
		t.Errorf("unexpected storage order %v", [16]float32(m))
	}
	if m.Get(0, 3) != 4 || m.Transpose().Get(3, 0) != 4 {
		t.Error("Get or Transpose disagree with row-major constructor")
	}
	var want mat.Dense
	want.Mul(m.Dense(), m.Dense())
	if !mat.EqualApprox(m.Mul(m).Dense(), &want, 1e-6) {
		t.Errorf("product disagrees with gonum:\n%v", m.Mul(m))
	}
}

func TestTransforms(t *testing.T) {
	p := r3.Vec{X: 1, Y: 2, Z: 3}
	for _, test := range []struct {
		name string
		m    procgen.Mat4
		want r3.Vec
	}{
		{name: "translate", m: procgen.Translate3D(1, -1, 0.5), want: r3.Vec{X: 2, Y: 1, Z: 3.5}},
		{name: "scale", m: procgen.Scale3D(2, 3, -1), want: r3.Vec{X: 2, Y: 6, Z: -3}},
		{name: "rotate z", m: procgen.Rotate3D(r3.Vec{Z: 1}, 90), want: r3.Vec{X: -2, Y: 1, Z: 3}},
		{name: "rotate x", m: procgen.Rotate3D(r3.Vec{X: 1}, 180), want: r3.Vec{X: 1, Y: -2, Z: -3}},
		{
			name: "translate then rotate",
			m:    procgen.Rotate3D(r3.Vec{Z: 1}, 90).Mul(procgen.Translate3D(1, 0, 0)),
			want: r3.Vec{X: -2, Y: 2, Z: 3},
		},
	} {
		got := test.m.MulPosition(p)
		if r3.Norm(r3.Sub(got, test.want)) > 1e-5 {
			t.Errorf("%s: got %v, want %v", test.name, got, test.want)
		}
	}
	// Directions ignore translation.
	if got := procgen.Translate3D(5, 5, 5).MulDirection(p); got != p {
		t.Errorf("direction translated to %v", got)
	}
}

func TestOrtho(t *testing.T) {
	args := [6]float32{-2, 4, -1, 3, 0.5, 10}
	o := procgen.Ortho(args[0], args[1], args[2], args[3], args[4], args[5])
	inv := procgen.InverseOrtho(args[0], args[1], args[2], args[3], args[4], args[5])
	if got := o.Mul(inv); !got.EqualWithin(procgen.Identity(), 1e-6) {
		t.Errorf("Ortho*InverseOrtho not identity:\n%v", got)
	}
	general, err := o.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	if !general.EqualWithin(inv, 1e-5) {
		t.Errorf("InverseOrtho disagrees with Inverse:\n%v\n%v", inv, general)
	}
	corner := o.MulPosition(r3.Vec{X: 4, Y: 3, Z: -10})
	if r3.Norm(r3.Sub(corner, r3.Vec{X: 1, Y: 1, Z: 1})) > 1e-6 {
		t.Errorf("far corner maps to %v, want (1,1,1)", corner)
	}
}

func TestPerspective(t *testing.T) {
	const near, far = 1, 100
	p := procgen.FovPerspective(90, 1, near, far)
	for _, test := range []struct {
		z, ndc float64
	}{
		{z: -near, ndc: -1},
		{z: -far, ndc: 1},
	} {
		clip := p.MulVec4(procgen.Vec4{Z: test.z, W: 1})
		if got := clip.Z / clip.W; math.Abs(got-test.ndc) > 1e-5 {
			t.Errorf("z=%g maps to %g, want %g", test.z, got, test.ndc)
		}
	}
	// 90 degree field of view: the frustum edge at the near plane is at y=near.
	edge := p.MulVec4(procgen.Vec4{Y: near, Z: -near, W: 1})
	if got := edge.Y / edge.W; math.Abs(got-1) > 1e-5 {
		t.Errorf("frustum edge maps to y=%g, want 1", got)
	}
}

func TestLookAt(t *testing.T) {
	view, err := procgen.LookAt(r3.Vec{Z: 5}, r3.Vec{}, r3.Vec{Y: 1})
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		in, want r3.Vec
	}{
		{in: r3.Vec{}, want: r3.Vec{Z: -5}},
		{in: r3.Vec{X: 1}, want: r3.Vec{X: 1, Z: -5}},
		{in: r3.Vec{Y: 1, Z: 5}, want: r3.Vec{Y: 1}},
	} {
		got := view.MulPosition(test.in)
		if r3.Norm(r3.Sub(got, test.want)) > 1e-5 {
			t.Errorf("%v: got %v, want %v", test.in, got, test.want)
		}
	}
	if _, err := procgen.LookAt(r3.Vec{}, r3.Vec{}, r3.Vec{Y: 1}); !errors.Is(err, procgen.ErrDegenerateVector) {
		t.Errorf("got %v, want ErrDegenerateVector for coincident eye and target", err)
	}
	if _, err := procgen.LookAt(r3.Vec{}, r3.Vec{Y: 1}, r3.Vec{Y: 1}); !errors.Is(err, procgen.ErrDegenerateVector) {
		t.Errorf("got %v, want ErrDegenerateVector for parallel up", err)
	}
}
