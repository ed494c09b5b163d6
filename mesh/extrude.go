package mesh

import (
	"fmt"
	"slices"

	"github.com/soypat/procgen/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Extrude sweeps a simple 2D outline along +Z by height and returns the
// closed prism with outward facing triangles. The bottom cap lies on z=0.
// The outline may be given in either winding.
//
// Vertices are shared between the caps and the sides, so smoothing normals
// rounds the rims; call SeparateFaces for flat shading.
func Extrude(outline []r2.Vec, height float64) (*Trimesh, error) {
	n := len(outline)
	if n < 3 {
		return nil, fmt.Errorf("outline with %d vertices: %w", n, ErrTooFewVertices)
	}
	if !(height > 0) {
		return nil, fmt.Errorf("height %g: %w", height, ErrBadHeight)
	}
	loop := slices.Clone(outline)
	if d2.SignedArea(loop) > 0 {
		// Clockwise.
		slices.Reverse(loop)
	}
	positions := make([]r3.Vec, 2*n)
	for i, p := range loop {
		positions[i] = r3.Vec{X: p.X, Y: p.Y}
		positions[n+i] = r3.Vec{X: p.X, Y: p.Y, Z: height}
	}
	top, err := Triangulate(positions[n:], false)
	if err != nil {
		return nil, fmt.Errorf("extrusion cap: %w", err)
	}
	faces := make([][3]int, 0, 2*len(top.Faces)+2*n)
	for _, f := range top.Faces {
		faces = append(faces, [3]int{f[0] + n, f[1] + n, f[2] + n})
		faces = append(faces, [3]int{f[0], f[2], f[1]})
	}
	for i := range n {
		j := (i + 1) % n
		faces = append(faces, [3]int{i, j, n + j}, [3]int{i, n + j, n + i})
	}
	return NewTrimesh(positions, faces), nil
}
