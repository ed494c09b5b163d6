package field

import (
	"fmt"

	"github.com/soypat/procgen"
	"gonum.org/v1/gonum/spatial/r3"
)

// Field3 is a 3D grid of float32 values, a volume. Operations that change
// resolution allocate a new field.
type Field3 struct {
	Grid3[float32]
}

// NewField3 allocates a zeroed float volume.
func NewField3(dims procgen.V3i, channels int) (*Field3, error) {
	g, err := NewGrid3[float32](dims, channels)
	if err != nil {
		return nil, err
	}
	return &Field3{Grid3: *g}, nil
}

// Clone returns a copy of f that shares no memory with it.
func (f *Field3) Clone() *Field3 {
	c := *f
	c.data = append([]float32(nil), f.data...)
	return &c
}

// Add adds every value of o to the corresponding value of f. Both fields
// must have the same dimensions and channel count.
func (f *Field3) Add(o *Field3) error {
	if f.channels != o.channels || f.dims != o.dims {
		return fmt.Errorf("add %v/%d field to %v/%d field: %w", o.dims, o.channels, f.dims, f.channels, ErrChannelMismatch)
	}
	for i, v := range o.data {
		f.data[i] += v
	}
	return nil
}

// Modulate multiplies channel c of every cell by factor.
func (f *Field3) Modulate(factor float32, c int) error {
	if c < 0 || c >= f.channels {
		return fmt.Errorf("modulate channel %d of %d: %w", c, f.channels, procgen.ErrIndexOutOfRange)
	}
	for i := c; i < len(f.data); i += f.channels {
		f.data[i] *= factor
	}
	return nil
}

// LerpWrapped returns channel c trilinearly interpolated at the fractional
// cell coordinate p, wrapping around the volume in every axis.
func (f *Field3) LerpWrapped(p r3.Vec, c int) (float32, error) {
	if c < 0 || c >= f.channels {
		return 0, fmt.Errorf("interpolate channel %d of %d: %w", c, f.channels, procgen.ErrIndexOutOfRange)
	}
	return f.lerpWrapped(p.X, p.Y, p.Z, c), nil
}

// LerpClamped is like LerpWrapped but clamps coordinates to the volume faces.
func (f *Field3) LerpClamped(p r3.Vec, c int) (float32, error) {
	if c < 0 || c >= f.channels {
		return 0, fmt.Errorf("interpolate channel %d of %d: %w", c, f.channels, procgen.ErrIndexOutOfRange)
	}
	x0, x1, tx := clampedAxis(p.X, f.dims[0])
	y0, y1, ty := clampedAxis(p.Y, f.dims[1])
	z0, z1, tz := clampedAxis(p.Z, f.dims[2])
	return f.trilinear([2]int{x0, x1}, [2]int{y0, y1}, [2]int{z0, z1}, tx, ty, tz, c), nil
}

func (f *Field3) lerpWrapped(x, y, z float64, c int) float32 {
	x0, x1, tx := wrappedAxis(x, f.dims[0])
	y0, y1, ty := wrappedAxis(y, f.dims[1])
	z0, z1, tz := wrappedAxis(z, f.dims[2])
	return f.trilinear([2]int{x0, x1}, [2]int{y0, y1}, [2]int{z0, z1}, tx, ty, tz, c)
}

func (f *Field3) trilinear(xs, ys, zs [2]int, tx, ty, tz float32, c int) float32 {
	var face [2]float32
	for k, z := range zs {
		var row [2]float32
		for j, y := range ys {
			row[j] = lerp(f.data[f.index(xs[0], y, z, c)], f.data[f.index(xs[1], y, z, c)], tx)
		}
		face[k] = lerp(row[0], row[1], ty)
	}
	return lerp(face[0], face[1], tz)
}

// Resample returns a new volume with the given dimensions using wrapped
// trilinear interpolation. See Field2.Resample.
func (f *Field3) Resample(dims procgen.V3i) (*Field3, error) {
	dst, err := NewField3(dims, f.channels)
	if err != nil {
		return nil, err
	}
	scale := f.dims.ToR3()
	sx := scale.X / float64(dims[0])
	sy := scale.Y / float64(dims[1])
	sz := scale.Z / float64(dims[2])
	parallelRows(dims[2], func(start, end int) {
		for z := start; z < end; z++ {
			for y := 0; y < dims[1]; y++ {
				for x := 0; x < dims[0]; x++ {
					for c := 0; c < f.channels; c++ {
						dst.data[dst.index(x, y, z, c)] = f.lerpWrapped(float64(x)*sx, float64(y)*sy, float64(z)*sz, c)
					}
				}
			}
		}
	})
	return dst, nil
}

// ToBytes quantizes values in [0,1] to bytes as floor(v*255), clamped to [0,255].
func (f *Field3) ToBytes() *Grid3[uint8] {
	b := &Grid3[uint8]{dims: f.dims, channels: f.channels, data: make([]uint8, len(f.data))}
	quantize(b.data, f.data)
	return b
}

// ToFourChannel expands a single channel volume into RGBA, see Field2.ToFourChannel.
func (f *Field3) ToFourChannel(alpha float32) (*Field3, error) {
	if f.channels != 1 {
		return nil, fmt.Errorf("expand %d channel field to four: %w", f.channels, ErrChannelMismatch)
	}
	four, err := NewField3(f.dims, 4)
	if err != nil {
		return nil, err
	}
	for i, v := range f.data {
		copy(four.data[4*i:], []float32{v, v, v, alpha})
	}
	return four, nil
}

// Slice returns a copy of the z'th slice of the volume as a 2D field.
func (f *Field3) Slice(z int) (*Field2, error) {
	if z < 0 || z >= f.dims[2] {
		return nil, fmt.Errorf("slice %d of depth %d: %w", z, f.dims[2], procgen.ErrIndexOutOfRange)
	}
	s, err := NewField2(procgen.V2i{f.dims[0], f.dims[1]}, f.channels)
	if err != nil {
		return nil, err
	}
	n := len(s.data)
	copy(s.data, f.data[z*n:(z+1)*n])
	return s, nil
}
