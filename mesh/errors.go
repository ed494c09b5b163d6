package mesh

import "errors"

var (
	// ErrNoEarFound is returned by Triangulate when a full pass over the
	// remaining polygon finds no ear. The polygon is likely self intersecting
	// or not planar.
	ErrNoEarFound = errors.New("no ear found")
	// ErrNoValidAngle is returned by Triangulate when the last candidate of a
	// pass has a reflex or degenerate interior angle.
	ErrNoValidAngle = errors.New("no valid angle")
	// ErrNonManifoldEdge is returned when an edge is shared by more than two faces.
	ErrNonManifoldEdge = errors.New("non-manifold edge")
	// ErrOpenEdge is returned by Subdivide when an edge belongs to a single face.
	ErrOpenEdge = errors.New("open edge")
	// ErrUnsupportedFaceArity is returned for faces that are neither triangles nor quads.
	ErrUnsupportedFaceArity = errors.New("unsupported face arity")
	// ErrTooFewVertices is returned when a polygon has less than 3 vertices.
	ErrTooFewVertices = errors.New("too few vertices")
	// ErrBadIndex is returned when a face references a vertex out of range
	// or references the same vertex twice.
	ErrBadIndex = errors.New("bad vertex index")
	// ErrAttributeLength is returned when a vertex attribute array length
	// does not match the vertex count.
	ErrAttributeLength = errors.New("vertex attribute length mismatch")
)

var (
	// ErrBadTolerance is returned by Weld when the tolerance is negative
	// or larger than half the longest edge.
	ErrBadTolerance = errors.New("bad weld tolerance")
	// ErrBadHeight is returned by Extrude for non-positive heights.
	ErrBadHeight = errors.New("extrusion height must be positive")
)
