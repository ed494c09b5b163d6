package mesh

import (
	"fmt"

	"github.com/soypat/procgen"
	"github.com/soypat/procgen/internal/d3"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Trimesh is an indexed triangle mesh. Faces index into Positions.
// Normals, Texcoords and Colors are optional vertex attributes: when
// non-nil they have the same length as Positions and are indexed
// identically.
//
// The bounding box and centroid are cached and only recomputed by
// CalculateBounds, which must be called after editing Positions.
type Trimesh struct {
	Positions []r3.Vec
	Faces     [][3]int
	Normals   []r3.Vec
	Texcoords []r2.Vec
	Colors    []r3.Vec

	bb       d3.Box
	centroid r3.Vec
}

// NewTrimesh creates a mesh from a position buffer and faces and calculates
// its bounds. The mesh takes ownership of both slices.
func NewTrimesh(positions []r3.Vec, faces [][3]int) *Trimesh {
	m := &Trimesh{Positions: positions, Faces: faces}
	m.CalculateBounds()
	return m
}

// VertexCount returns the number of vertices in the mesh.
func (m *Trimesh) VertexCount() int { return len(m.Positions) }

// FaceCount returns the number of triangles in the mesh.
func (m *Trimesh) FaceCount() int { return len(m.Faces) }

// Validate checks that face indices are valid and unique within each face
// and that every vertex attribute matches the vertex count.
func (m *Trimesh) Validate() error {
	n := len(m.Positions)
	for i, face := range m.Faces {
		if err := validateFace(face[:], n); err != nil {
			return fmt.Errorf("face %d: %w", i, err)
		}
	}
	if m.Normals != nil && len(m.Normals) != n {
		return fmt.Errorf("%d normals for %d vertices: %w", len(m.Normals), n, ErrAttributeLength)
	}
	if m.Texcoords != nil && len(m.Texcoords) != n {
		return fmt.Errorf("%d texture coordinates for %d vertices: %w", len(m.Texcoords), n, ErrAttributeLength)
	}
	if m.Colors != nil && len(m.Colors) != n {
		return fmt.Errorf("%d colors for %d vertices: %w", len(m.Colors), n, ErrAttributeLength)
	}
	return nil
}

// CalculateBounds recomputes the bounding box and centroid of the mesh.
// The centroid is the center of the bounding box.
func (m *Trimesh) CalculateBounds() {
	m.bb = d3.BoundingBox(m.Positions)
	m.centroid = m.bb.Center()
}

// Bounds returns the bounding box as of the last call to CalculateBounds.
func (m *Trimesh) Bounds() r3.Box { return r3.Box(m.bb) }

// Centroid returns the center of the bounding box as of the last call to CalculateBounds.
func (m *Trimesh) Centroid() r3.Vec { return m.centroid }

// Triangle returns the positions of the i'th face.
func (m *Trimesh) Triangle(i int) r3.Triangle {
	f := m.Faces[i]
	return r3.Triangle{m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]}
}

// Area returns the total surface area of the mesh.
func (m *Trimesh) Area() (area float64) {
	for i := range m.Faces {
		area += r3.Norm(m.Triangle(i).Normal())
	}
	return area / 2
}

// Transform applies t to every position (w=1) and the same matrix to
// every normal (w=0). Normals are not transformed by the inverse transpose
// nor renormalized, so non-uniform scaling distorts them. Bounds are not
// recalculated.
func (m *Trimesh) Transform(t procgen.Mat4) {
	for i, p := range m.Positions {
		m.Positions[i] = t.MulPosition(p)
	}
	for i, n := range m.Normals {
		m.Normals[i] = t.MulDirection(n)
	}
}

// SmoothFaces replaces the vertex normals with the average of the unit
// normals of the faces sharing each vertex. Contributions are not weighted
// by face area or corner angle. Degenerate faces contribute nothing and
// vertices whose accumulated normal is zero keep a zero normal.
func (m *Trimesh) SmoothFaces() {
	m.Normals = make([]r3.Vec, len(m.Positions))
	for i := range m.Faces {
		n, err := procgen.Unit3(m.Triangle(i).Normal())
		if err != nil {
			continue
		}
		for _, v := range m.Faces[i] {
			m.Normals[v] = r3.Add(m.Normals[v], n)
		}
	}
	for i, n := range m.Normals {
		if u, err := procgen.Unit3(n); err == nil {
			m.Normals[i] = u
		}
	}
}

// SeparateFaces gives every face its own three vertices so that each
// vertex normal equals its face normal (flat shading). Optional attributes
// are duplicated along with positions. Face indices are rewritten in
// place, invalidating vertex indices held by callers.
func (m *Trimesh) SeparateFaces() {
	nv := 3 * len(m.Faces)
	positions := make([]r3.Vec, 0, nv)
	normals := make([]r3.Vec, 0, nv)
	var texcoords []r2.Vec
	var colors []r3.Vec
	if m.Texcoords != nil {
		texcoords = make([]r2.Vec, 0, nv)
	}
	if m.Colors != nil {
		colors = make([]r3.Vec, 0, nv)
	}
	for i, face := range m.Faces {
		n, _ := procgen.Unit3(m.Triangle(i).Normal())
		for j, v := range face {
			positions = append(positions, m.Positions[v])
			normals = append(normals, n)
			if texcoords != nil {
				texcoords = append(texcoords, m.Texcoords[v])
			}
			if colors != nil {
				colors = append(colors, m.Colors[v])
			}
			m.Faces[i][j] = len(positions) - 1
		}
	}
	m.Positions = positions
	m.Normals = normals
	m.Texcoords = texcoords
	m.Colors = colors
	m.CalculateBounds()
}

// ReverseWinding flips the orientation of every face.
func (m *Trimesh) ReverseWinding() {
	for i := range m.Faces {
		m.Faces[i][1], m.Faces[i][2] = m.Faces[i][2], m.Faces[i][1]
	}
}

// SetColor sets a uniform color attribute for all vertices.
func (m *Trimesh) SetColor(rgb r3.Vec) {
	m.Colors = make([]r3.Vec, len(m.Positions))
	for i := range m.Colors {
		m.Colors[i] = rgb
	}
}

// Clone returns a deep copy of the mesh. The copy shares no buffers with m.
func (m *Trimesh) Clone() *Trimesh {
	c := &Trimesh{
		Positions: append([]r3.Vec(nil), m.Positions...),
		Faces:     append([][3]int(nil), m.Faces...),
		bb:        m.bb,
		centroid:  m.centroid,
	}
	if m.Normals != nil {
		c.Normals = append([]r3.Vec{}, m.Normals...)
	}
	if m.Texcoords != nil {
		c.Texcoords = append([]r2.Vec{}, m.Texcoords...)
	}
	if m.Colors != nil {
		c.Colors = append([]r3.Vec{}, m.Colors...)
	}
	return c
}

// ToQuadmesh returns a polygon mesh with a copy of m's positions whose
// faces are m's triangles. Attributes are not carried over.
func (m *Trimesh) ToQuadmesh() *Quadmesh {
	faces := make([][]int, len(m.Faces))
	for i, f := range m.Faces {
		faces[i] = []int{f[0], f[1], f[2]}
	}
	return NewQuadmesh(append([]r3.Vec(nil), m.Positions...), faces)
}

// Join returns a new mesh containing the vertices and faces of a followed
// by those of b. Normals are kept only if both meshes have them.
func Join(a, b *Trimesh) *Trimesh {
	positions := make([]r3.Vec, 0, len(a.Positions)+len(b.Positions))
	positions = append(positions, a.Positions...)
	positions = append(positions, b.Positions...)
	faces := make([][3]int, 0, len(a.Faces)+len(b.Faces))
	faces = append(faces, a.Faces...)
	base := len(a.Positions)
	for _, f := range b.Faces {
		faces = append(faces, [3]int{f[0] + base, f[1] + base, f[2] + base})
	}
	m := NewTrimesh(positions, faces)
	if a.Normals != nil && b.Normals != nil {
		m.Normals = make([]r3.Vec, 0, len(positions))
		m.Normals = append(m.Normals, a.Normals...)
		m.Normals = append(m.Normals, b.Normals...)
	}
	return m
}

// FlatPositions returns positions as a flat slice of 4-component
// homogeneous coordinates with w=1.
func (m *Trimesh) FlatPositions() []float32 { return flatten4(m.Positions, 1) }

// FlatNormals returns normals as a flat slice of 4-component
// vectors with w=0. It returns nil if the mesh has no normals.
func (m *Trimesh) FlatNormals() []float32 { return flatten4(m.Normals, 0) }

// FlatColors returns colors as a flat slice of RGBA values with alpha=1.
// It returns nil if the mesh has no colors.
func (m *Trimesh) FlatColors() []float32 { return flatten4(m.Colors, 1) }

// FlatTexcoords returns texture coordinates as a flat slice of UV pairs.
func (m *Trimesh) FlatTexcoords() []float32 {
	if m.Texcoords == nil {
		return nil
	}
	flat := make([]float32, 0, 2*len(m.Texcoords))
	for _, uv := range m.Texcoords {
		flat = append(flat, float32(uv.X), float32(uv.Y))
	}
	return flat
}

// FlatFaces returns the face indices as a flat slice, three per face.
func (m *Trimesh) FlatFaces() []uint32 {
	flat := make([]uint32, 0, 3*len(m.Faces))
	for _, f := range m.Faces {
		flat = append(flat, uint32(f[0]), uint32(f[1]), uint32(f[2]))
	}
	return flat
}

func flatten4(vs []r3.Vec, w float32) []float32 {
	if vs == nil {
		return nil
	}
	flat := make([]float32, 0, 4*len(vs))
	for _, v := range vs {
		flat = append(flat, float32(v.X), float32(v.Y), float32(v.Z), w)
	}
	return flat
}

func validateFace(face []int, vertexCount int) error {
	for i, v := range face {
		if v < 0 || v >= vertexCount {
			return fmt.Errorf("index %d not in [0,%d): %w", v, vertexCount, ErrBadIndex)
		}
		for _, w := range face[:i] {
			if v == w {
				return fmt.Errorf("index %d repeated: %w", v, ErrBadIndex)
			}
		}
	}
	return nil
}
