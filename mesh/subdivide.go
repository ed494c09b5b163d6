package mesh

import (
	"fmt"

	"github.com/soypat/procgen/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// subdivEdge is an undirected edge between two vertices and the faces that share it.
type subdivEdge struct {
	key    [2]int
	faces  [2]int
	nfaces int
	// point is the new edge point, index its position in the subdivided vertex buffer.
	point r3.Vec
	index int
}

// edgeKey returns the map key of the undirected edge a-b with the lower index first.
func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// Subdivide performs one pass of Catmull-Clark subdivision. Every triangle
// is replaced by 3 quads and every quad by 4. The new vertex buffer holds
// the updated original vertices first, followed by one point per edge and
// one point per face. Positions and faces are replaced and bounds
// recalculated.
//
// The mesh must be closed and manifold: an edge shared by more than two
// faces fails with ErrNonManifoldEdge and an edge on a single face with
// ErrOpenEdge. Vertices not referenced by any face are kept unchanged.
// On error the mesh is left untouched.
func (m *Quadmesh) Subdivide() error {
	if err := m.Validate(); err != nil {
		return err
	}
	nv := len(m.Positions)
	centroids := make([]r3.Vec, len(m.Faces))
	for i, face := range m.Faces {
		var c r3.Vec
		for _, v := range face {
			c = r3.Add(c, m.Positions[v])
		}
		centroids[i] = r3.Scale(1/float64(len(face)), c)
	}

	edgeMap := make(map[[2]int]int)
	var edges []subdivEdge
	for i, face := range m.Faces {
		for k := range face {
			key := edgeKey(face[k], face[(k+1)%len(face)])
			idx, ok := edgeMap[key]
			if !ok {
				idx = len(edges)
				edgeMap[key] = idx
				edges = append(edges, subdivEdge{key: key})
			}
			e := &edges[idx]
			if e.nfaces == 2 {
				return fmt.Errorf("edge %d-%d on faces %d, %d and %d: %w", key[0], key[1], e.faces[0], e.faces[1], i, ErrNonManifoldEdge)
			}
			e.faces[e.nfaces] = i
			e.nfaces++
		}
	}

	// Accumulate per-vertex sums of adjacent face centroids and edge midpoints.
	faceSum := make([]r3.Vec, nv)
	faceCount := make([]int, nv)
	for i, face := range m.Faces {
		for _, v := range face {
			faceSum[v] = r3.Add(faceSum[v], centroids[i])
			faceCount[v]++
		}
	}
	midSum := make([]r3.Vec, nv)
	midCount := make([]int, nv)
	// Edges are visited in creation order so the sums are reproducible.
	for idx := range edges {
		e := &edges[idx]
		key := e.key
		if e.nfaces != 2 {
			return fmt.Errorf("edge %d-%d on face %d: %w", key[0], key[1], e.faces[0], ErrOpenEdge)
		}
		p0, p1 := m.Positions[key[0]], m.Positions[key[1]]
		e.point = d3.Mean(p0, p1, centroids[e.faces[0]], centroids[e.faces[1]])
		e.index = nv + idx
		mid := d3.Mean(p0, p1)
		for _, v := range key {
			midSum[v] = r3.Add(midSum[v], mid)
			midCount[v]++
		}
	}

	positions := make([]r3.Vec, 0, nv+len(edges)+len(centroids))
	for v, p := range m.Positions {
		n := float64(faceCount[v])
		if n == 0 || midCount[v] == 0 {
			positions = append(positions, p)
			continue
		}
		F := r3.Scale(1/n, faceSum[v])
		R := r3.Scale(1/float64(midCount[v]), midSum[v])
		// (F + 2R + (n-3)P) / n
		sum := r3.Add(F, r3.Add(r3.Scale(2, R), r3.Scale(n-3, p)))
		positions = append(positions, r3.Scale(1/n, sum))
	}
	for _, e := range edges {
		positions = append(positions, e.point)
	}
	positions = append(positions, centroids...)

	faces := make([][]int, 0, 4*len(m.Faces))
	for i, face := range m.Faces {
		n := len(face)
		center := nv + len(edges) + i
		for k, corner := range face {
			next := face[(k+1)%n]
			prev := face[(k+n-1)%n]
			faces = append(faces, []int{
				corner,
				edges[edgeMap[edgeKey(corner, next)]].index,
				center,
				edges[edgeMap[edgeKey(prev, corner)]].index,
			})
		}
	}
	m.Positions = positions
	m.Faces = faces
	m.CalculateBounds()
	return nil
}
