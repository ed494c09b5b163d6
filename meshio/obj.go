package meshio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/soypat/procgen/mesh"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrSyntax is returned for malformed OBJ records.
var ErrSyntax = errors.New("obj syntax error")

// OBJ is the indexed geometry of a Wavefront OBJ file. Every distinct
// v/vt/vn reference found in a face becomes one vertex, so a position
// referenced with two different normals is split into two vertices.
type OBJ struct {
	Positions []r3.Vec
	// Normals and Texcoords are nil unless every vertex references one.
	Normals   []r3.Vec
	Texcoords []r2.Vec
	// Faces holds polygons of 3 or more vertex indices.
	Faces [][]int
}

// ReadOBJ parses the v, vn, vt and f records of an OBJ file. Other records
// such as o, g, s and usemtl are ignored. Face references are 1-based;
// negative references count back from the latest record.
func ReadOBJ(r io.Reader) (*OBJ, error) {
	var (
		freePositions []r3.Vec
		freeNormals   []r3.Vec
		freeTexcoords []r2.Vec
		faces         []faceRecord
	)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		var err error
		switch fields[0] {
		case "v":
			var v r3.Vec
			v, err = parseVec3(fields[1:])
			freePositions = append(freePositions, v)
		case "vn":
			var v r3.Vec
			v, err = parseVec3(fields[1:])
			freeNormals = append(freeNormals, v)
		case "vt":
			var v r2.Vec
			v, err = parseVec2(fields[1:])
			freeTexcoords = append(freeTexcoords, v)
		case "f":
			if len(fields) < 4 {
				err = fmt.Errorf("face with %d vertices: %w", len(fields)-1, ErrSyntax)
			}
			faces = append(faces, faceRecord{
				refs:   fields[1:],
				line:   line,
				counts: [3]int{len(freePositions), len(freeTexcoords), len(freeNormals)},
			})
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	obj := &OBJ{Faces: make([][]int, len(faces))}
	var normals []r3.Vec
	var texcoords []r2.Vec
	haveNormals, haveTexcoords := true, true
	refToVertex := make(map[[3]int]int)
	totals := [3]int{len(freePositions), len(freeTexcoords), len(freeNormals)}
	for i, face := range faces {
		obj.Faces[i] = make([]int, len(face.refs))
		for j, signature := range face.refs {
			ref, err := parseRef(signature, face.counts, totals)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", face.line, err)
			}
			vi, ok := refToVertex[ref]
			if !ok {
				vi = len(obj.Positions)
				refToVertex[ref] = vi
				obj.Positions = append(obj.Positions, freePositions[ref[0]])
				if ref[1] >= 0 {
					texcoords = append(texcoords, freeTexcoords[ref[1]])
				} else {
					haveTexcoords = false
				}
				if ref[2] >= 0 {
					normals = append(normals, freeNormals[ref[2]])
				} else {
					haveNormals = false
				}
			}
			obj.Faces[i][j] = vi
		}
	}
	if haveNormals && len(normals) > 0 {
		obj.Normals = normals
	}
	if haveTexcoords && len(texcoords) > 0 {
		obj.Texcoords = texcoords
	}
	return obj, nil
}

// faceRecord is an f record kept until all vertex data is read. counts
// holds the v, vt and vn record counts seen before it, which negative
// references are relative to.
type faceRecord struct {
	refs   []string
	line   int
	counts [3]int
}

// Trimesh converts the OBJ to a triangle mesh. Polygons with more than 3
// vertices are split by ear clipping, keeping their winding.
func (o *OBJ) Trimesh() (*mesh.Trimesh, error) {
	faces := make([][3]int, 0, len(o.Faces))
	for i, face := range o.Faces {
		if len(face) == 3 {
			faces = append(faces, [3]int{face[0], face[1], face[2]})
			continue
		}
		polygon := make([]r3.Vec, len(face))
		for j, v := range face {
			polygon[j] = o.Positions[v]
		}
		tri, err := mesh.Triangulate(polygon, false)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}
		for _, f := range tri.Faces {
			faces = append(faces, [3]int{face[f[0]], face[f[1]], face[f[2]]})
		}
	}
	m := mesh.NewTrimesh(append([]r3.Vec(nil), o.Positions...), faces)
	if o.Normals != nil {
		m.Normals = append([]r3.Vec(nil), o.Normals...)
	}
	if o.Texcoords != nil {
		m.Texcoords = append([]r2.Vec(nil), o.Texcoords...)
	}
	return m, m.Validate()
}

// Quadmesh converts the OBJ to a quad mesh. Faces must have 3 or 4 vertices.
func (o *OBJ) Quadmesh() (*mesh.Quadmesh, error) {
	faces := make([][]int, len(o.Faces))
	for i, face := range o.Faces {
		if len(face) != 3 && len(face) != 4 {
			return nil, fmt.Errorf("face %d has %d vertices: %w", i, len(face), mesh.ErrUnsupportedFaceArity)
		}
		faces[i] = append([]int(nil), face...)
	}
	m := mesh.NewQuadmesh(append([]r3.Vec(nil), o.Positions...), faces)
	return m, m.Validate()
}

// ReadTrimeshOBJ reads an OBJ file as a triangle mesh.
func ReadTrimeshOBJ(r io.Reader) (*mesh.Trimesh, error) {
	obj, err := ReadOBJ(r)
	if err != nil {
		return nil, err
	}
	return obj.Trimesh()
}

// ReadQuadmeshOBJ reads an OBJ file of triangles and quads as a quad mesh.
func ReadQuadmeshOBJ(r io.Reader) (*mesh.Quadmesh, error) {
	obj, err := ReadOBJ(r)
	if err != nil {
		return nil, err
	}
	return obj.Quadmesh()
}

// Object is a named mesh written as one OBJ object.
type Object struct {
	Name string
	Mesh *mesh.Trimesh
}

// WriteOBJ writes the objects into a single OBJ file. Position, texture
// coordinate and normal indices are each offset by the records of preceding
// objects. Normals and texture coordinates are written when present.
func WriteOBJ(w io.Writer, objects ...Object) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# Exported by procgen")
	base, tbase, nbase := 1, 1, 1
	for _, obj := range objects {
		m := obj.Mesh
		fmt.Fprintf(bw, "o %s\n", obj.Name)
		for _, p := range m.Positions {
			fmt.Fprintf(bw, "v %s %s %s\n", ftoa(p.X), ftoa(p.Y), ftoa(p.Z))
		}
		for _, uv := range m.Texcoords {
			fmt.Fprintf(bw, "vt %s %s\n", ftoa(uv.X), ftoa(uv.Y))
		}
		for _, n := range m.Normals {
			fmt.Fprintf(bw, "vn %s %s %s\n", ftoa(n.X), ftoa(n.Y), ftoa(n.Z))
		}
		for _, f := range m.Faces {
			bw.WriteString("f")
			for _, v := range f {
				bw.WriteByte(' ')
				bw.WriteString(faceRef(v, base, tbase, nbase, m.Texcoords != nil, m.Normals != nil))
			}
			bw.WriteByte('\n')
		}
		base += len(m.Positions)
		tbase += len(m.Texcoords)
		nbase += len(m.Normals)
	}
	return bw.Flush()
}

// WriteQuadmeshOBJ writes a single quad mesh object.
func WriteQuadmeshOBJ(w io.Writer, name string, m *mesh.Quadmesh) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# Exported by procgen")
	fmt.Fprintf(bw, "o %s\n", name)
	for _, p := range m.Positions {
		fmt.Fprintf(bw, "v %s %s %s\n", ftoa(p.X), ftoa(p.Y), ftoa(p.Z))
	}
	for _, f := range m.Faces {
		bw.WriteString("f")
		for _, v := range f {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(v + 1))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// faceRef formats the reference to vertex v of an object whose positions,
// texture coordinates and normals start at the given 1-based indices.
func faceRef(v, base, tbase, nbase int, texcoord, normal bool) string {
	s := strconv.Itoa(v + base)
	switch {
	case texcoord && normal:
		return s + "/" + strconv.Itoa(v+tbase) + "/" + strconv.Itoa(v+nbase)
	case texcoord:
		return s + "/" + strconv.Itoa(v+tbase)
	case normal:
		return s + "//" + strconv.Itoa(v+nbase)
	}
	return s
}

func ftoa(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func parseVec3(fields []string) (r3.Vec, error) {
	if len(fields) < 3 {
		return r3.Vec{}, fmt.Errorf("want 3 components, got %d: %w", len(fields), ErrSyntax)
	}
	var c [3]float64
	for i := range c {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("%w: %w", ErrSyntax, err)
		}
		c[i] = v
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

func parseVec2(fields []string) (r2.Vec, error) {
	if len(fields) < 2 {
		return r2.Vec{}, fmt.Errorf("want 2 components, got %d: %w", len(fields), ErrSyntax)
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	y, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return r2.Vec{}, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	return r2.Vec{X: x, Y: y}, nil
}

// parseRef parses a v, v/vt, v//vn or v/vt/vn face reference into 0-based
// indices. Absent texture coordinate or normal indices are -1. Negative
// references count back from counts, the records preceding the face, and
// every reference must fall within totals.
func parseRef(signature string, counts, totals [3]int) (ref [3]int, err error) {
	parts := strings.Split(signature, "/")
	if len(parts) > 3 {
		return ref, fmt.Errorf("face reference %q: %w", signature, ErrSyntax)
	}
	for i := range ref {
		ref[i] = -1
		if i >= len(parts) || parts[i] == "" {
			if i == 0 {
				return ref, fmt.Errorf("face reference %q without position: %w", signature, ErrSyntax)
			}
			continue
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return ref, fmt.Errorf("face reference %q: %w: %w", signature, ErrSyntax, err)
		}
		if n < 0 {
			n += counts[i]
		} else {
			n--
		}
		if n < 0 || n >= totals[i] {
			return ref, fmt.Errorf("face reference %q out of range: %w", signature, mesh.ErrBadIndex)
		}
		ref[i] = n
	}
	return ref, nil
}
