package mesh_test

import (
	"errors"
	"math"
	"testing"

	"github.com/soypat/procgen"
	"github.com/soypat/procgen/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

func faceArea(m *mesh.Quadmesh, i int) float64 {
	f := m.Faces[i]
	p := m.Positions
	area := r3.Norm(r3.Triangle{p[f[0]], p[f[1]], p[f[2]]}.Normal())
	if len(f) == 4 {
		area += r3.Norm(r3.Triangle{p[f[0]], p[f[2]], p[f[3]]}.Normal())
	}
	return area / 2
}

func maxFaceArea(m *mesh.Quadmesh) (max float64) {
	for i := range m.Faces {
		max = math.Max(max, faceArea(m, i))
	}
	return max
}

func TestSubdivideCube(t *testing.T) {
	m := mesh.QuadCube()
	areaBefore := maxFaceArea(m)
	err := m.Subdivide()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Validate(); err != nil {
		t.Fatal(err)
	}
	if m.FaceCount() != 24 || m.VertexCount() != 26 {
		t.Fatalf("got %d faces %d vertices, want 24 and 26", m.FaceCount(), m.VertexCount())
	}
	if got := maxFaceArea(m); got >= areaBefore {
		t.Errorf("max face area did not decrease: %g >= %g", got, areaBefore)
	}
	// Original corner (0,0,0) moves to (F + 2R)/3 with F=(1/3,1/3,1/3) and R=(1/6,1/6,1/6).
	if want := (r3.Vec{X: 2. / 9, Y: 2. / 9, Z: 2. / 9}); !vecEqual(m.Positions[0], want, tol) {
		t.Errorf("got corner %v, want %v", m.Positions[0], want)
	}
	// First face point follows all updated vertices and edge points.
	if want := (r3.Vec{X: .5, Y: .5}); !vecEqual(m.Positions[8+12], want, tol) {
		t.Errorf("got face point %v, want %v", m.Positions[20], want)
	}
	// Edge 0-2 is the first edge seen, shared by the -z and -x faces.
	if want := (r3.Vec{X: .125, Y: .5, Z: .125}); !vecEqual(m.Positions[8], want, tol) {
		t.Errorf("got edge point %v, want %v", m.Positions[8], want)
	}
	center := r3.Vec{X: .5, Y: .5, Z: .5}
	bb := m.Bounds()
	if bb.Min.X <= 0 || bb.Max.X >= 1 {
		t.Errorf("subdivided cube should shrink inside original bounds, got %v", bb)
	}
	for i, f := range m.Faces {
		p := m.Positions
		n := r3.Triangle{p[f[0]], p[f[1]], p[f[2]]}.Normal()
		if r3.Dot(n, r3.Sub(p[f[2]], center)) <= 0 {
			t.Errorf("face %d %v is wound inwards", i, f)
		}
	}

	// Output is closed and all quads: subdividing again must succeed.
	areaBefore = maxFaceArea(m)
	if err := m.Subdivide(); err != nil {
		t.Fatal(err)
	}
	if m.FaceCount() != 96 || m.VertexCount() != 98 {
		t.Fatalf("got %d faces %d vertices, want 96 and 98", m.FaceCount(), m.VertexCount())
	}
	if got := maxFaceArea(m); got >= areaBefore {
		t.Errorf("max face area did not decrease: %g >= %g", got, areaBefore)
	}
}

func TestSubdivideTetrahedron(t *testing.T) {
	m := mesh.Tetrahedron()
	if err := m.Subdivide(); err != nil {
		t.Fatal(err)
	}
	if m.FaceCount() != 12 || m.VertexCount() != 14 {
		t.Fatalf("got %d faces %d vertices, want 12 and 14", m.FaceCount(), m.VertexCount())
	}
	for i, f := range m.Faces {
		if len(f) != 4 {
			t.Errorf("face %d has %d vertices, want quads only", i, len(f))
		}
	}
	// Symmetric about the origin.
	if c := m.Centroid(); !vecEqual(c, r3.Vec{}, tol) {
		t.Errorf("got centroid %v, want origin", c)
	}
}

func TestSubdivideReproducible(t *testing.T) {
	subdivided := func() []r3.Vec {
		m := mesh.QuadCube()
		m.Transform(procgen.Rotate3D(r3.Unit(r3.Vec{X: 1, Y: 2, Z: 3}), 37))
		for range 3 {
			if err := m.Subdivide(); err != nil {
				t.Fatal(err)
			}
		}
		return m.Positions
	}
	want := subdivided()
	for run := 0; run < 20; run++ {
		got := subdivided()
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("run %d: vertex %d got %v, want bit-identical %v", run, i, got[i], want[i])
			}
		}
	}
}

func TestSubdivideIsolatedVertex(t *testing.T) {
	m := mesh.QuadCube()
	lonely := r3.Vec{X: 5, Y: 5, Z: 5}
	m.Positions = append(m.Positions, lonely)
	if err := m.Subdivide(); err != nil {
		t.Fatal(err)
	}
	if m.Positions[8] != lonely {
		t.Errorf("unreferenced vertex moved to %v", m.Positions[8])
	}
}

func TestSubdivideErrors(t *testing.T) {
	quad := []r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}, {Z: 1}, {Z: -1}}
	for _, test := range []struct {
		name  string
		faces [][]int
		want  error
	}{
		{name: "open", faces: [][]int{{0, 1, 2, 3}}, want: mesh.ErrOpenEdge},
		{name: "non-manifold", faces: [][]int{{0, 1, 2}, {1, 0, 4}, {0, 1, 5}}, want: mesh.ErrNonManifoldEdge},
		{name: "pentagon", faces: [][]int{{0, 1, 2, 3, 4}}, want: mesh.ErrUnsupportedFaceArity},
		{name: "bad index", faces: [][]int{{0, 1, 9}}, want: mesh.ErrBadIndex},
	} {
		m := mesh.NewQuadmesh(append([]r3.Vec(nil), quad...), test.faces)
		err := m.Subdivide()
		if !errors.Is(err, test.want) {
			t.Errorf("%s: got error %v, want %v", test.name, err, test.want)
		}
		if len(m.Positions) != len(quad) || len(m.Faces) != len(test.faces) {
			t.Errorf("%s: mesh modified on error", test.name)
		}
	}
}

func TestQuadmeshToTrimesh(t *testing.T) {
	m, err := mesh.QuadCube().ToTrimesh()
	if err != nil {
		t.Fatal(err)
	}
	if m.FaceCount() != 12 || m.VertexCount() != 8 {
		t.Fatalf("got %d faces %d vertices", m.FaceCount(), m.VertexCount())
	}
	if m.Faces[0] != [3]int{0, 2, 3} || m.Faces[1] != [3]int{0, 3, 1} {
		t.Errorf("quad split along wrong diagonal: %v %v", m.Faces[0], m.Faces[1])
	}
	if area := m.Area(); math.Abs(area-6) > tol {
		t.Errorf("got area %g, want 6", area)
	}
}
