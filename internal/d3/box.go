package d3

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// d3.Box is a 3d axis aligned bounding box.
type Box r3.Box

// BoundingBox returns the smallest box containing every vector in the set.
// The zero Box is returned for an empty set.
func BoundingBox(s Set) Box {
	if len(s) == 0 {
		return Box{}
	}
	return Box{Min: s.Min(), Max: s.Max()}
}

// Size returns the size of a 3d box.
func (a Box) Size() r3.Vec {
	return r3.Sub(a.Max, a.Min)
}

// Center returns the center of a 3d box.
func (a Box) Center() r3.Vec {
	return r3.Add(a.Min, r3.Scale(0.5, a.Size()))
}
