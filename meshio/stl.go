package meshio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/procgen"
	"github.com/soypat/procgen/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

const stlTriangleSize = 50

// stlMaxPrealloc bounds the face capacity reserved from the header count,
// which is not trusted before the triangles are read.
const stlMaxPrealloc = 1 << 16

var errBadSTLVertex = errors.New("STL vertex is NaN or infinite")

// WriteSTL writes the faces of m to w in binary STL format. Face normals
// are computed from the winding.
func WriteSTL(w io.Writer, m *mesh.Trimesh) error {
	if m.FaceCount() == 0 {
		return errors.New("empty mesh")
	}
	header := stlHeader{
		Count: uint32(m.FaceCount()),
	}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, &header); err != nil {
		return err
	}
	var (
		d stlTriangle
		b [stlTriangleSize]byte
	)
	for i := range m.Faces {
		tri := m.Triangle(i)
		n, _ := procgen.Unit3(tri.Normal()) // Degenerate faces get a zero normal.
		d.Normal = vecToF32(n)
		d.Vertex1 = vecToF32(tri[0])
		d.Vertex2 = vecToF32(tri[1])
		d.Vertex3 = vecToF32(tri[2])
		d.put(b[:])
		if _, err := bw.Write(b[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadSTL reads a binary STL file. Vertices with identical coordinates are
// merged so the result is an indexed mesh. Stored normals are ignored.
func ReadSTL(r io.Reader) (_ *mesh.Trimesh, readErr error) {
	var header stlHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, errors.New("encountered EOF while reading STL header")
		}
		return nil, fmt.Errorf("STL header read failed: %w", err)
	}
	if header.Count == 0 {
		return nil, errors.New("STL header indicates 0 triangles present")
	}
	var (
		buf       [stlTriangleSize]byte
		d         stlTriangle
		i         int
		positions []r3.Vec
		faces     = make([][3]int, 0, min(header.Count, stlMaxPrealloc))
		welded    = make(map[[3]float32]int)
	)
	defer func() {
		if readErr != nil {
			readErr = fmt.Errorf("%d/%d STL triangles read: %w", i, header.Count, readErr)
		}
	}()
	vertex := func(v [3]float32) int {
		idx, ok := welded[v]
		if !ok {
			idx = len(positions)
			welded[v] = idx
			positions = append(positions, r3.Vec{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])})
		}
		return idx
	}
	for i = 0; i < int(header.Count); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		d.get(buf[:])
		if bad3F32(d.Vertex1) || bad3F32(d.Vertex2) || bad3F32(d.Vertex3) {
			return nil, errBadSTLVertex
		}
		faces = append(faces, [3]int{vertex(d.Vertex1), vertex(d.Vertex2), vertex(d.Vertex3)})
	}
	return mesh.NewTrimesh(positions, faces), nil
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func (t stlTriangle) put(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func (t *stlTriangle) get(b []byte) {
	if len(b) < stlTriangleSize {
		panic("need length 50 to unmarshal stlTriangle")
	}
	get3F32(b, &t.Normal)
	get3F32(b[12:], &t.Vertex1)
	get3F32(b[24:], &t.Vertex2)
	get3F32(b[36:], &t.Vertex3)
}

func vecToF32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(f[2]))
}

func get3F32(b []byte, f *[3]float32) {
	_ = b[11] // early bounds check
	f[0] = math.Float32frombits(binary.LittleEndian.Uint32(b))
	f[1] = math.Float32frombits(binary.LittleEndian.Uint32(b[4:]))
	f[2] = math.Float32frombits(binary.LittleEndian.Uint32(b[8:]))
}

func bad3F32(f [3]float32) bool {
	return math32.IsNaN(f[0]) || math32.IsInf(f[0], 0) ||
		math32.IsNaN(f[1]) || math32.IsInf(f[1], 0) ||
		math32.IsNaN(f[2]) || math32.IsInf(f[2], 0)
}
