// Package outline builds closed 2D outlines with rounded, chamfered and
// arced corners. Outlines feed the triangulator and mesh extrusion.
package outline

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/procgen/internal/d2"
	"gonum.org/v1/gonum/spatial/r2"
)

var (
	// ErrRelativeStart is returned when a relative vertex has no absolute vertex before it.
	ErrRelativeStart = errors.New("relative vertex needs an absolute reference")
	// ErrArcRadius is returned when an arc radius is shorter than half its chord.
	ErrArcRadius = errors.New("arc radius smaller than half the chord")
	// ErrTooFewVertices is returned for outlines with less than 3 vertices.
	ErrTooFewVertices = errors.New("outline needs at least 3 vertices")
	// ErrFacets is returned when a fillet or arc asks for less than one facet.
	ErrFacets = errors.New("fillet or arc needs at least one facet")
)

// tolerance under which consecutive vertices are considered equal.
const tolerance = 1e-9

// Builder accumulates the vertices of a closed outline. Vertices may be
// marked for smoothing or replaced by arcs; the operations are applied
// when Vertices is called.
type Builder struct {
	reverse bool
	vlist   []Vertex
}

// Vertex is an outline vertex being built.
type Vertex struct {
	relative bool    // vertex position is relative to previous vertex
	vtype    vType   // type of outline vertex
	vertex   r2.Vec  // vertex coordinates
	facets   int     // number of facets to create when smoothing
	radius   float64 // radius of smoothing (0 == none)
	err      error   // invalid smoothing or arc request
}

type vType int

const (
	vNormal vType = iota // normal vertex
	vSmooth              // smooth the vertex
	vArc                 // replace the segment ending at the vertex with an arc
)

// Rel positions the vertex relative to the prior vertex.
func (v *Vertex) Rel() *Vertex {
	v.relative = true
	return v
}

// Polar treats the vertex values as polar coordinates (r, theta).
func (v *Vertex) Polar() *Vertex {
	sin, cos := math.Sincos(v.vertex.Y)
	v.vertex = r2.Scale(v.vertex.X, r2.Vec{X: cos, Y: sin})
	return v
}

// Smooth rounds the corner at the vertex with an arc of the given radius
// made of facets segments. Corners too short for the radius stay sharp.
// A zero radius leaves the vertex unchanged; a non-zero radius with less
// than one facet makes Vertices fail with ErrFacets.
func (v *Vertex) Smooth(radius float64, facets int) *Vertex {
	if radius != 0 && facets < 1 {
		v.err = fmt.Errorf("smoothing with %d facets: %w", facets, ErrFacets)
		return v
	}
	if radius != 0 {
		v.radius = radius
		v.facets = facets
		v.vtype = vSmooth
	}
	return v
}

// Chamfer cuts the corner at the vertex with a single segment. On right
// angle corners the cut segment has length size.
func (v *Vertex) Chamfer(size float64) *Vertex {
	if size != 0 {
		v.radius = size * math.Sqrt2 / 2
		v.facets = 1
		v.vtype = vSmooth
	}
	return v
}

// Arc replaces the segment from the previous vertex to this one with a
// circular arc of facets segments. The sign of radius selects the side of
// the chord the arc bulges to. As with Smooth, less than one facet makes
// Vertices fail with ErrFacets.
func (v *Vertex) Arc(radius float64, facets int) *Vertex {
	if radius != 0 && facets < 1 {
		v.err = fmt.Errorf("arc with %d facets: %w", facets, ErrFacets)
		return v
	}
	if radius != 0 {
		v.radius = radius
		v.facets = facets
		v.vtype = vArc
	}
	return v
}

// Add appends an x,y vertex to the outline.
func (b *Builder) Add(x, y float64) *Vertex {
	return b.AddV2(r2.Vec{X: x, Y: y})
}

// AddV2 appends a vertex to the outline. The returned Vertex is valid
// until the next vertex is added.
func (b *Builder) AddV2(p r2.Vec) *Vertex {
	b.vlist = append(b.vlist, Vertex{vertex: p})
	return &b.vlist[len(b.vlist)-1]
}

// AddSet appends several plain vertices.
func (b *Builder) AddSet(ps []r2.Vec) {
	for _, p := range ps {
		b.AddV2(p)
	}
}

// Drop removes the last vertex.
func (b *Builder) Drop() {
	if len(b.vlist) > 0 {
		b.vlist = b.vlist[:len(b.vlist)-1]
	}
}

// Reverse makes Vertices return the vertices in reverse order.
func (b *Builder) Reverse() { b.reverse = !b.reverse }

// Vertices applies relative positioning, arcs and smoothing and returns the
// outline. The builder is left unchanged so Vertices may be called again.
// A closing vertex equal to the first one is dropped.
func (b *Builder) Vertices() ([]r2.Vec, error) {
	for i := range b.vlist {
		if err := b.vlist[i].err; err != nil {
			return nil, fmt.Errorf("vertex %d: %w", i, err)
		}
	}
	w := shape{vlist: append([]Vertex(nil), b.vlist...)}
	if err := w.relToAbs(); err != nil {
		return nil, err
	}
	if n := len(w.vlist); n > 1 && d2.EqualWithin(w.vlist[0].vertex, w.vlist[n-1].vertex, tolerance) {
		w.vlist = w.vlist[:n-1]
	}
	if len(w.vlist) < 3 {
		return nil, fmt.Errorf("%d vertices: %w", len(w.vlist), ErrTooFewVertices)
	}
	if err := w.createArcs(); err != nil {
		return nil, err
	}
	w.smoothVertices()
	n := len(w.vlist)
	v := make([]r2.Vec, n)
	for i, pv := range w.vlist {
		if b.reverse {
			v[n-1-i] = pv.vertex
		} else {
			v[i] = pv.vertex
		}
	}
	return v, nil
}

// shape is the working copy of a builder's vertices.
type shape struct {
	vlist []Vertex
}

func (o *shape) next(i int) *Vertex { return &o.vlist[(i+1)%len(o.vlist)] }

func (o *shape) prev(i int) *Vertex {
	if i == 0 {
		return &o.vlist[len(o.vlist)-1]
	}
	return &o.vlist[i-1]
}

// relToAbs converts relative vertices to absolute vertices.
func (o *shape) relToAbs() error {
	for i := range o.vlist {
		v := &o.vlist[i]
		if !v.relative {
			continue
		}
		if i == 0 {
			return ErrRelativeStart
		}
		v.vertex = r2.Add(v.vertex, o.vlist[i-1].vertex)
		v.relative = false
	}
	return nil
}

// createArcs replaces arc marked segments with facets.
func (o *shape) createArcs() error {
	for i := 0; i < len(o.vlist); i++ {
		if o.vlist[i].vtype != vArc {
			continue
		}
		inserted, err := o.arcVertex(i)
		if err != nil {
			return err
		}
		i += inserted
	}
	return nil
}

// arcVertex inserts the intermediate vertices of the arc ending at vertex i
// and returns how many were inserted.
func (o *shape) arcVertex(i int) (int, error) {
	v := &o.vlist[i]
	v.vtype = vNormal
	side := math.Copysign(1, v.radius)
	radius := math.Abs(v.radius)
	a := o.prev(i).vertex
	b := v.vertex
	// Normal to chord.
	ba := r2.Unit(r2.Sub(b, a))
	n := r2.Scale(side, r2.Vec{X: ba.Y, Y: -ba.X})
	mid := r2.Scale(0.5, r2.Add(a, b))
	dMid := r2.Norm(r2.Sub(mid, a))
	if radius < dMid {
		return 0, fmt.Errorf("radius %g for chord of %g: %w", radius, 2*dMid, ErrArcRadius)
	}
	dCenter := math.Sqrt(radius*radius - dMid*dMid)
	c := r2.Add(mid, r2.Scale(dCenter, n))
	ac := r2.Unit(r2.Sub(a, c))
	bc := r2.Unit(r2.Sub(b, c))
	dtheta := -side * math.Acos(d2.Clamp1(r2.Dot(ac, bc))) / float64(v.facets)
	rot := r2.NewRotation(dtheta, r2.Vec{})
	rv := rot.Rotate(r2.Sub(a, c))
	arc := make([]Vertex, v.facets-1)
	for j := range arc {
		arc[j] = Vertex{vertex: r2.Add(c, rv)}
		rv = rot.Rotate(rv)
	}
	o.vlist = append(o.vlist[:i], append(arc, o.vlist[i:]...)...)
	return len(arc), nil
}

// smoothVertices rounds every smooth marked corner.
func (o *shape) smoothVertices() {
	for i := 0; i < len(o.vlist); i++ {
		i += o.smoothVertex(i)
	}
}

// smoothVertex replaces corner i by the facets of its fillet and returns
// how many vertices were added.
func (o *shape) smoothVertex(i int) int {
	v := o.vlist[i]
	if v.vtype != vSmooth {
		return 0
	}
	vn := o.next(i).vertex
	vp := o.prev(i).vertex
	v0 := r2.Unit(r2.Sub(vp, v.vertex))
	v1 := r2.Unit(r2.Sub(vn, v.vertex))
	theta := math.Acos(d2.Clamp1(r2.Dot(v0, v1)))
	if theta == 0 || theta == math.Pi {
		// Degenerate or straight corner.
		o.vlist[i].vtype = vNormal
		return 0
	}
	// Distance from vertex to circle tangent.
	d1 := v.radius / math.Tan(theta/2)
	if d1 > r2.Norm(r2.Sub(vp, v.vertex)) || d1 > r2.Norm(r2.Sub(vn, v.vertex)) {
		// Radius is too large for the adjacent segments.
		o.vlist[i].vtype = vNormal
		return 0
	}
	p0 := r2.Add(v.vertex, r2.Scale(d1, v0))
	// Distance from vertex to circle center.
	dc := v.radius / math.Sin(theta/2)
	c := r2.Add(v.vertex, r2.Scale(dc, r2.Unit(r2.Add(v0, v1))))
	dtheta := math.Copysign(1, r2.Cross(v1, v0)) * (math.Pi - theta) / float64(v.facets)
	rot := r2.NewRotation(dtheta, r2.Vec{})
	rv := r2.Sub(p0, c)
	points := make([]Vertex, v.facets+1)
	for j := range points {
		points[j] = Vertex{vertex: r2.Add(c, rv)}
		rv = rot.Rotate(rv)
	}
	o.vlist = append(o.vlist[:i], append(points, o.vlist[i+1:]...)...)
	return v.facets
}

// Nagon returns the vertices of a regular n sided polygon of circumradius
// radius centered at the origin, counter-clockwise from (radius, 0).
func Nagon(n int, radius float64) ([]r2.Vec, error) {
	if n < 3 {
		return nil, fmt.Errorf("%d sides: %w", n, ErrTooFewVertices)
	}
	rot := r2.NewRotation(2*math.Pi/float64(n), r2.Vec{})
	v := make([]r2.Vec, n)
	p := r2.Vec{X: radius}
	for i := range v {
		v[i] = p
		p = rot.Rotate(p)
	}
	return v, nil
}
