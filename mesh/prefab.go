package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// cubeSides lists for each side of the unit cube its outward normal and its
// four corners in counter-clockwise order seen from outside.
var cubeSides = [6]struct {
	normal  r3.Vec
	corners [4]r3.Vec
}{
	{normal: r3.Vec{Z: 1}, corners: [4]r3.Vec{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1}}},
	{normal: r3.Vec{Z: -1}, corners: [4]r3.Vec{{X: 1, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 0}}},
	{normal: r3.Vec{X: 1}, corners: [4]r3.Vec{{X: 1, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 1}}},
	{normal: r3.Vec{X: -1}, corners: [4]r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 0}}},
	{normal: r3.Vec{Y: 1}, corners: [4]r3.Vec{{X: 0, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0}}},
	{normal: r3.Vec{Y: -1}, corners: [4]r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 1}, {X: 0, Y: 0, Z: 1}}},
}

// Cube returns the unit cube spanning [0,1]³ as a flat shaded triangle
// mesh: 24 vertices, 4 per side with the side's normal, and 12 faces.
func Cube() *Trimesh {
	positions := make([]r3.Vec, 0, 24)
	normals := make([]r3.Vec, 0, 24)
	faces := make([][3]int, 0, 12)
	for _, side := range cubeSides {
		base := len(positions)
		positions = append(positions, side.corners[:]...)
		for range side.corners {
			normals = append(normals, side.normal)
		}
		faces = append(faces, [3]int{base, base + 1, base + 2}, [3]int{base, base + 2, base + 3})
	}
	m := NewTrimesh(positions, faces)
	m.Normals = normals
	return m
}

// QuadCube returns the unit cube spanning [0,1]³ as a closed quad mesh
// with 8 shared vertices and 6 faces. Vertex i is at (i&1, i>>1&1, i>>2&1).
func QuadCube() *Quadmesh {
	positions := make([]r3.Vec, 8)
	for i := range positions {
		positions[i] = r3.Vec{X: float64(i & 1), Y: float64(i >> 1 & 1), Z: float64(i >> 2 & 1)}
	}
	faces := [][]int{
		{0, 2, 3, 1}, // -z
		{4, 5, 7, 6}, // +z
		{0, 1, 5, 4}, // -y
		{2, 6, 7, 3}, // +y
		{0, 4, 6, 2}, // -x
		{1, 3, 7, 5}, // +x
	}
	return NewQuadmesh(positions, faces)
}

// Tetrahedron returns a closed regular tetrahedron inscribed in the cube
// spanning [-1,1]³ as a quad mesh of 4 triangles.
func Tetrahedron() *Quadmesh {
	positions := []r3.Vec{
		{X: 1, Y: 1, Z: 1},
		{X: 1, Y: -1, Z: -1},
		{X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1},
	}
	faces := [][]int{
		{0, 1, 2},
		{0, 3, 1},
		{0, 2, 3},
		{1, 3, 2},
	}
	return NewQuadmesh(positions, faces)
}
