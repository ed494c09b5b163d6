// Package terrain builds heightmap meshes from scalar fields.
package terrain

import (
	"errors"
	"fmt"

	"github.com/soypat/procgen"
	"github.com/soypat/procgen/field"
	"github.com/soypat/procgen/mesh"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrTooSmall is returned for heightmaps with fewer than 2 samples along an axis.
var ErrTooSmall = errors.New("heightmap needs at least 2x2 samples")

// Terrain is a regular grid of elevations on the XZ plane. Sample (x, z)
// sits at (x*Scales.X, elevation*Scales.Y, z*Scales.Z).
type Terrain struct {
	heights *field.Field2
	Scales  r3.Vec
}

// FromField builds a terrain from channel c of f. The field's first axis
// maps to X and its second to Z. The elevations are copied.
func FromField(f *field.Field2, c int, scales r3.Vec) (*Terrain, error) {
	dims := f.Dims()
	if dims[0] < 2 || dims[1] < 2 {
		return nil, fmt.Errorf("%dx%d samples: %w", dims[0], dims[1], ErrTooSmall)
	}
	if c < 0 || c >= f.Channels() {
		return nil, fmt.Errorf("terrain from channel %d of %d: %w", c, f.Channels(), procgen.ErrIndexOutOfRange)
	}
	heights, err := field.NewField2(dims, 1)
	if err != nil {
		return nil, err
	}
	src, dst := f.Data(), heights.Data()
	for i := range dst {
		dst[i] = src[i*f.Channels()+c]
	}
	return &Terrain{heights: heights, Scales: scales}, nil
}

// Width is the number of samples along X.
func (t *Terrain) Width() int { return t.heights.Dims()[0] }

// Depth is the number of samples along Z.
func (t *Terrain) Depth() int { return t.heights.Dims()[1] }

// ScaledWidth is the extent of the terrain along X.
func (t *Terrain) ScaledWidth() float64 { return t.Scales.X * float64(t.Width()-1) }

// ScaledDepth is the extent of the terrain along Z.
func (t *Terrain) ScaledDepth() float64 { return t.Scales.Z * float64(t.Depth()-1) }

// Get returns the unscaled elevation of sample (x, z).
func (t *Terrain) Get(x, z int) (float64, error) {
	v, err := t.heights.Get(x, z, 0)
	return float64(v), err
}

// Set sets the unscaled elevation of sample (x, z).
func (t *Terrain) Set(x, z int, elevation float64) error {
	return t.heights.Set(x, z, 0, float32(elevation))
}

// Lerp returns the scaled elevation at world coordinates (x, z) by bilinear
// interpolation of the four surrounding samples. Coordinates outside the
// terrain are clamped to its edges.
func (t *Terrain) Lerp(x, z float64) float64 {
	v, err := t.heights.LerpClamped(r2.Vec{X: x / t.Scales.X, Y: z / t.Scales.Z}, 0)
	if err != nil {
		panic("bug: terrain heights must have a single channel")
	}
	return float64(v) * t.Scales.Y
}

// ToTrimesh returns the terrain surface as a triangle mesh with one vertex
// per sample and two upward facing triangles per cell. Texture coordinates
// span [0,texFactors.X] along X and [0,texFactors.Y] along Z.
func (t *Terrain) ToTrimesh(texFactors r2.Vec) *mesh.Trimesh {
	w, d := t.Width(), t.Depth()
	heights := t.heights.Data()
	positions := make([]r3.Vec, 0, w*d)
	texcoords := make([]r2.Vec, 0, w*d)
	for z := 0; z < d; z++ {
		for x := 0; x < w; x++ {
			positions = append(positions, r3.Vec{
				X: float64(x) * t.Scales.X,
				Y: float64(heights[z*w+x]) * t.Scales.Y,
				Z: float64(z) * t.Scales.Z,
			})
			texcoords = append(texcoords, r2.Vec{
				X: float64(x) / float64(w-1) * texFactors.X,
				Y: float64(z) / float64(d-1) * texFactors.Y,
			})
		}
	}
	faces := make([][3]int, 0, 2*(w-1)*(d-1))
	for z := 0; z < d-1; z++ {
		for x := 0; x < w-1; x++ {
			i := z*w + x
			faces = append(faces, [3]int{i, i + w, i + 1}, [3]int{i + w, i + w + 1, i + 1})
		}
	}
	m := mesh.NewTrimesh(positions, faces)
	m.Texcoords = texcoords
	return m
}
