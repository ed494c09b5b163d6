package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Weld merges vertices closer than tol to each other and returns the number
// of vertices removed. Each cluster keeps the position and attributes of its
// lowest indexed vertex. Faces that collapse onto fewer than three distinct
// vertices are dropped.
//
// A tol of 0 selects a tolerance of 1/256 of the shortest edge. Tolerances
// larger than half the longest edge fail with ErrBadTolerance.
func (m *Trimesh) Weld(tol float64) (removed int, err error) {
	if tol < 0 || math.IsNaN(tol) {
		return 0, fmt.Errorf("tolerance %g: %w", tol, ErrBadTolerance)
	}
	if len(m.Positions) == 0 {
		return 0, nil
	}
	minDist2 := math.Inf(1)
	maxDist2 := 0.0
	for i := range m.Faces {
		tri := m.Triangle(i)
		for j := range tri {
			side2 := r3.Norm2(r3.Sub(tri[(j+1)%3], tri[j]))
			minDist2 = math.Min(minDist2, side2)
			maxDist2 = math.Max(maxDist2, side2)
		}
	}
	if len(m.Faces) > 0 && tol > math.Sqrt(maxDist2)/2 {
		return 0, fmt.Errorf("tolerance %g too large, suggested %g: %w", tol, math.Sqrt(minDist2)/256, ErrBadTolerance)
	}
	if tol == 0 && len(m.Faces) > 0 {
		tol = math.Sqrt(minDist2) / 256
	}

	pts := make(weldVertices, len(m.Positions))
	for i, p := range m.Positions {
		pts[i] = weldVertex{Vec: p, index: i}
	}
	tree := kdtree.New(pts, false)
	remap := make([]int, len(m.Positions))
	for i := range remap {
		remap[i] = -1
	}
	var kept []int
	for i, p := range m.Positions {
		if remap[i] >= 0 {
			continue
		}
		newIdx := len(kept)
		kept = append(kept, i)
		remap[i] = newIdx
		keep := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keep, weldVertex{Vec: p, index: i})
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue
			}
			j := c.Comparable.(weldVertex).index
			if remap[j] < 0 {
				remap[j] = newIdx
			}
		}
	}
	removed = len(m.Positions) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	faces := m.Faces[:0]
	for _, f := range m.Faces {
		f = [3]int{remap[f[0]], remap[f[1]], remap[f[2]]}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			continue
		}
		faces = append(faces, f)
	}
	m.Faces = faces
	m.Positions = gather(m.Positions, kept)
	m.Normals = gather(m.Normals, kept)
	m.Colors = gather(m.Colors, kept)
	if m.Texcoords != nil {
		tex := make([]r2.Vec, len(kept))
		for i, k := range kept {
			tex[i] = m.Texcoords[k]
		}
		m.Texcoords = tex
	}
	m.CalculateBounds()
	return removed, nil
}

func gather(vs []r3.Vec, kept []int) []r3.Vec {
	if vs == nil {
		return nil
	}
	out := make([]r3.Vec, len(kept))
	for i, k := range kept {
		out[i] = vs[k]
	}
	return out
}

// weldVertex is a mesh position remembering its original vertex index.
type weldVertex struct {
	r3.Vec
	index int
}

// Compare implements the kdtree.Comparable interface.
func (v weldVertex) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	w := c.(weldVertex)
	switch d {
	case 0:
		return v.X - w.X
	case 1:
		return v.Y - w.Y
	case 2:
		return v.Z - w.Z
	}
	panic("illegal dimension")
}

// Dims implements the kdtree.Comparable interface.
func (v weldVertex) Dims() int { return 3 }

// Distance implements the kdtree.Comparable interface and returns the
// squared euclidean distance.
func (v weldVertex) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(v.Vec, c.(weldVertex).Vec))
}

type weldVertices []weldVertex

func (p weldVertices) Index(i int) kdtree.Comparable { return p[i] }
func (p weldVertices) Len() int                      { return len(p) }
func (p weldVertices) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p weldVertices) Pivot(d kdtree.Dim) int {
	pl := weldPlane{dim: d, vertices: p}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

type weldPlane struct {
	dim      kdtree.Dim
	vertices weldVertices
}

func (p weldPlane) Less(i, j int) bool {
	return p.vertices[i].Compare(p.vertices[j], p.dim) < 0
}
func (p weldPlane) Swap(i, j int) {
	p.vertices[i], p.vertices[j] = p.vertices[j], p.vertices[i]
}
func (p weldPlane) Len() int { return len(p.vertices) }
func (p weldPlane) Slice(start, end int) kdtree.SortSlicer {
	p.vertices = p.vertices[start:end]
	return p
}
