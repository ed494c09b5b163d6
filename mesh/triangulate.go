package mesh

import (
	"fmt"
	"math"
	"slices"

	"github.com/soypat/procgen/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// earEpsilon is the tolerance for the convexity and containment tests of ear clipping.
const earEpsilon = 1e-4

// Triangulate splits a simple planar polygon into triangles by ear
// clipping. positions lists the polygon's vertices in order; the returned
// mesh has a copy of them and len(positions)-2 faces indexing them.
//
// The polygon is projected onto the axis plane that drops the largest
// component of the normal of its first three vertices and is processed in
// counter-clockwise order. If the input was clockwise, the faces are
// reversed back to match the input winding unless fixWinding is set, in
// which case the faces stay counter-clockwise in the projection plane.
//
// Self intersecting polygons fail with ErrNoEarFound or ErrNoValidAngle.
func Triangulate(positions []r3.Vec, fixWinding bool) (*Trimesh, error) {
	if len(positions) < 3 {
		return nil, fmt.Errorf("polygon with %d vertices: %w", len(positions), ErrTooFewVertices)
	}
	flat := flattenPolygon(positions)
	remaining := make([]int, len(flat))
	for i := range remaining {
		remaining[i] = i
	}
	reversed := d2.SignedArea(flat) >= 0
	if reversed {
		slices.Reverse(remaining)
	}

	faces := make([][3]int, 0, len(positions)-2)
	for len(remaining) > 2 {
		ear, err := findEar(flat, remaining)
		if err != nil {
			return nil, fmt.Errorf("%d vertices left of %d: %w", len(remaining), len(positions), err)
		}
		n := len(remaining)
		i, j, k := ear, (ear+1)%n, (ear+2)%n
		faces = append(faces, [3]int{remaining[i], remaining[j], remaining[k]})
		remaining = slices.Delete(remaining, j, j+1)
	}
	m := NewTrimesh(append([]r3.Vec(nil), positions...), faces)
	if reversed && !fixWinding {
		m.ReverseWinding()
	}
	return m, nil
}

// findEar returns the index into remaining of the first vertex i such
// that the triangle (i, i+1, i+2) is convex and contains no other
// remaining vertex.
func findEar(flat []r2.Vec, remaining []int) (int, error) {
	n := len(remaining)
	for i := 0; i < n; i++ {
		a := flat[remaining[i]]
		b := flat[remaining[(i+1)%n]]
		c := flat[remaining[(i+2)%n]]
		fro := r2.Sub(a, b)
		to := r2.Sub(c, b)
		if to.X*fro.Y-to.Y*fro.X < earEpsilon {
			if i == n-1 {
				return -1, ErrNoValidAngle
			}
			continue
		}
		if n == 3 {
			return i, nil
		}
		contained := false
		for l := 0; l < n-3 && !contained; l++ {
			p := flat[remaining[(i+3+l)%n]]
			contained = triangleContains(a, b, c, p)
		}
		if !contained {
			return i, nil
		}
	}
	return -1, ErrNoEarFound
}

// triangleContains reports whether p lies within the triangle abc using
// barycentric coordinates. Points on the boundary are contained.
func triangleContains(a, b, c, p r2.Vec) bool {
	v0 := r2.Sub(c, a)
	v1 := r2.Sub(b, a)
	v2 := r2.Sub(p, a)
	dot00 := r2.Dot(v0, v0)
	dot01 := r2.Dot(v0, v1)
	dot02 := r2.Dot(v0, v2)
	dot11 := r2.Dot(v1, v1)
	dot12 := r2.Dot(v1, v2)
	denom := dot00*dot11 - dot01*dot01
	if denom == 0 {
		return false
	}
	u := (dot11*dot02 - dot01*dot12) / denom
	v := (dot00*dot12 - dot01*dot02) / denom
	return u >= -earEpsilon && v >= -earEpsilon && u+v < 1+earEpsilon
}

// flattenPolygon projects positions onto the axis plane perpendicular to
// the dominant component of the normal of the first three vertices. X or Y
// is dropped only when strictly larger than both other components,
// otherwise Z is dropped.
func flattenPolygon(positions []r3.Vec) []r2.Vec {
	n := r3.Cross(r3.Sub(positions[0], positions[1]), r3.Sub(positions[2], positions[1]))
	nx, ny, nz := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	flat := make([]r2.Vec, len(positions))
	for i, p := range positions {
		switch {
		case nx > ny && nx > nz:
			flat[i] = r2.Vec{X: p.Y, Y: p.Z}
		case ny > nx && ny > nz:
			flat[i] = r2.Vec{X: p.X, Y: p.Z}
		default:
			flat[i] = r2.Vec{X: p.X, Y: p.Y}
		}
	}
	return flat
}
