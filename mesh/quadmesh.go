package mesh

import (
	"fmt"

	"github.com/soypat/procgen"
	"github.com/soypat/procgen/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quadmesh is an indexed polygon mesh whose faces are quads or triangles.
// It is the input and output representation of Catmull-Clark subdivision.
type Quadmesh struct {
	Positions []r3.Vec
	// Faces holds 3 or 4 vertex indices per face in counter-clockwise order.
	Faces [][]int

	bb       d3.Box
	centroid r3.Vec
}

// NewQuadmesh creates a quad mesh and calculates its bounds. The mesh takes
// ownership of both slices.
func NewQuadmesh(positions []r3.Vec, faces [][]int) *Quadmesh {
	m := &Quadmesh{Positions: positions, Faces: faces}
	m.CalculateBounds()
	return m
}

// VertexCount returns the number of vertices in the mesh.
func (m *Quadmesh) VertexCount() int { return len(m.Positions) }

// FaceCount returns the number of faces in the mesh.
func (m *Quadmesh) FaceCount() int { return len(m.Faces) }

// Validate checks every face has 3 or 4 unique indices in range.
func (m *Quadmesh) Validate() error {
	for i, face := range m.Faces {
		if len(face) != 3 && len(face) != 4 {
			return fmt.Errorf("face %d has %d vertices: %w", i, len(face), ErrUnsupportedFaceArity)
		}
		if err := validateFace(face, len(m.Positions)); err != nil {
			return fmt.Errorf("face %d: %w", i, err)
		}
	}
	return nil
}

// CalculateBounds recomputes the bounding box and centroid of the mesh.
func (m *Quadmesh) CalculateBounds() {
	m.bb = d3.BoundingBox(m.Positions)
	m.centroid = m.bb.Center()
}

// Bounds returns the bounding box as of the last call to CalculateBounds.
func (m *Quadmesh) Bounds() r3.Box { return r3.Box(m.bb) }

// Centroid returns the center of the bounding box as of the last call to CalculateBounds.
func (m *Quadmesh) Centroid() r3.Vec { return m.centroid }

// Transform applies t to every position. Bounds are not recalculated.
func (m *Quadmesh) Transform(t procgen.Mat4) {
	for i, p := range m.Positions {
		m.Positions[i] = t.MulPosition(p)
	}
}

// ToTrimesh returns a triangle mesh with the same vertices. Quads (a,b,c,d)
// are split along the a-c diagonal into (a,b,c) and (a,c,d). Positions are
// copied.
func (m *Quadmesh) ToTrimesh() (*Trimesh, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	faces := make([][3]int, 0, 2*len(m.Faces))
	for _, f := range m.Faces {
		faces = append(faces, [3]int{f[0], f[1], f[2]})
		if len(f) == 4 {
			faces = append(faces, [3]int{f[0], f[2], f[3]})
		}
	}
	positions := append([]r3.Vec(nil), m.Positions...)
	return NewTrimesh(positions, faces), nil
}
