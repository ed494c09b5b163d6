package terrain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/procgen"
	"github.com/soypat/procgen/field"
	"github.com/soypat/procgen/terrain"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ramp returns a terrain whose elevation at sample (x, z) is x+10*z.
func ramp(t *testing.T, w, d int, scales r3.Vec) *terrain.Terrain {
	t.Helper()
	f, err := field.NewField2(procgen.V2i{w, d}, 2)
	if err != nil {
		t.Fatal(err)
	}
	for p := range f.Cells() {
		f.Set(p[0], p[1], 1, float32(p[0]+10*p[1]))
	}
	tr, err := terrain.FromField(f, 1, scales)
	if err != nil {
		t.Fatal(err)
	}
	return tr
}

func TestFromField(t *testing.T) {
	tr := ramp(t, 4, 3, r3.Vec{X: 2, Y: 1, Z: 0.5})
	if tr.Width() != 4 || tr.Depth() != 3 {
		t.Fatalf("got %dx%d, want 4x3", tr.Width(), tr.Depth())
	}
	if tr.ScaledWidth() != 6 || tr.ScaledDepth() != 1 {
		t.Errorf("got scaled size %gx%g, want 6x1", tr.ScaledWidth(), tr.ScaledDepth())
	}
	got, err := tr.Get(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != 23 {
		t.Errorf("got elevation %g, want 23", got)
	}
	if _, err := tr.Get(4, 0); !errors.Is(err, procgen.ErrIndexOutOfRange) {
		t.Errorf("got error %v, want %v", err, procgen.ErrIndexOutOfRange)
	}
	if err := tr.Set(0, 0, 5); err != nil {
		t.Fatal(err)
	}
	if got, _ := tr.Get(0, 0); got != 5 {
		t.Errorf("got elevation %g after Set, want 5", got)
	}
}

func TestFromFieldErrors(t *testing.T) {
	thin, _ := field.NewField2(procgen.V2i{1, 5}, 1)
	if _, err := terrain.FromField(thin, 0, r3.Vec{X: 1, Y: 1, Z: 1}); !errors.Is(err, terrain.ErrTooSmall) {
		t.Errorf("got error %v, want %v", err, terrain.ErrTooSmall)
	}
	f, _ := field.NewField2(procgen.V2i{2, 2}, 1)
	if _, err := terrain.FromField(f, 1, r3.Vec{X: 1, Y: 1, Z: 1}); !errors.Is(err, procgen.ErrIndexOutOfRange) {
		t.Errorf("got error %v, want %v", err, procgen.ErrIndexOutOfRange)
	}
}

func TestLerp(t *testing.T) {
	tr := ramp(t, 4, 4, r3.Vec{X: 2, Y: 3, Z: 1})
	for _, test := range []struct {
		x, z float64
		want float64
	}{
		{x: 0, z: 0, want: 0},
		{x: 2, z: 0, want: 3},          // sample (1,0)
		{x: 1, z: 0, want: 1.5},        // halfway along x
		{x: 3, z: 1.5, want: 3 * 16.5}, // (1.5, 1.5)
		{x: 6, z: 3, want: 3 * 33},     // last sample
		{x: 100, z: 100, want: 3 * 33}, // clamped
		{x: -5, z: -5, want: 0},
	} {
		got := tr.Lerp(test.x, test.z)
		if math.Abs(got-test.want) > 1e-4 {
			t.Errorf("Lerp(%g, %g): got %g, want %g", test.x, test.z, got, test.want)
		}
	}
}

func TestToTrimesh(t *testing.T) {
	tr := ramp(t, 3, 4, r3.Vec{X: 1, Y: 0.1, Z: 2})
	m := tr.ToTrimesh(r2.Vec{X: 2, Y: 1})
	if m.VertexCount() != 12 || m.FaceCount() != 12 {
		t.Fatalf("got %d vertices and %d faces, want 12 and 12", m.VertexCount(), m.FaceCount())
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	last := m.Positions[11]
	if math.Abs(last.X-2) > 1e-9 || math.Abs(last.Y-3.2) > 1e-6 || math.Abs(last.Z-6) > 1e-9 {
		t.Errorf("got last vertex %v, want (2, 3.2, 6)", last)
	}
	if m.Texcoords[11] != (r2.Vec{X: 2, Y: 1}) {
		t.Errorf("got last texcoord %v, want (2, 1)", m.Texcoords[11])
	}
	for i := range m.Faces {
		if m.Triangle(i).Normal().Y <= 0 {
			t.Errorf("face %d does not face up", i)
		}
	}
	bb := m.Bounds()
	if bb.Min.X != 0 || bb.Max.X != tr.ScaledWidth() || bb.Max.Z != tr.ScaledDepth() {
		t.Errorf("got bounds %v, want X in [0,%g] and Z up to %g", bb, tr.ScaledWidth(), tr.ScaledDepth())
	}
}

func TestFlatArea(t *testing.T) {
	f, _ := field.NewField2(procgen.V2i{5, 5}, 1)
	tr, err := terrain.FromField(f, 0, r3.Vec{X: 0.5, Y: 1, Z: 0.25})
	if err != nil {
		t.Fatal(err)
	}
	m := tr.ToTrimesh(r2.Vec{X: 1, Y: 1})
	if got := m.Area(); math.Abs(got-2) > 1e-9 {
		t.Errorf("got area %g, want 2", got)
	}
}
