package field

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/soypat/procgen"
	"gonum.org/v1/gonum/spatial/r2"
)

// Field2 is a 2D grid of float32 values, the working type of the noise
// generators. Operations that change resolution allocate a new field.
type Field2 struct {
	Grid2[float32]
}

// NewField2 allocates a zeroed float field.
func NewField2(dims procgen.V2i, channels int) (*Field2, error) {
	g, err := NewGrid2[float32](dims, channels)
	if err != nil {
		return nil, err
	}
	return &Field2{Grid2: *g}, nil
}

// Clone returns a copy of f that shares no memory with it.
func (f *Field2) Clone() *Field2 {
	c := *f
	c.data = append([]float32(nil), f.data...)
	return &c
}

// Add adds every value of o to the corresponding value of f. Both fields
// must have the same dimensions and channel count.
func (f *Field2) Add(o *Field2) error {
	if f.channels != o.channels || f.dims != o.dims {
		return fmt.Errorf("add %v/%d field to %v/%d field: %w", o.dims, o.channels, f.dims, f.channels, ErrChannelMismatch)
	}
	for i, v := range o.data {
		f.data[i] += v
	}
	return nil
}

// Modulate multiplies channel c of every cell by factor.
func (f *Field2) Modulate(factor float32, c int) error {
	if c < 0 || c >= f.channels {
		return fmt.Errorf("modulate channel %d of %d: %w", c, f.channels, procgen.ErrIndexOutOfRange)
	}
	for i := c; i < len(f.data); i += f.channels {
		f.data[i] *= factor
	}
	return nil
}

// Abs folds channel c around the midpoint of [0,1]: every value v becomes
// |2v-1|. Applied to a generated field, whose values are noise*0.5+0.5, it
// stores the magnitude of the noise instead.
func (f *Field2) Abs(c int) error {
	if c < 0 || c >= f.channels {
		return fmt.Errorf("abs of channel %d of %d: %w", c, f.channels, procgen.ErrIndexOutOfRange)
	}
	for i := c; i < len(f.data); i += f.channels {
		f.data[i] = math32.Abs(2*f.data[i] - 1)
	}
	return nil
}

// LerpWrapped returns channel c bilinearly interpolated at the fractional
// cell coordinate p. Coordinates wrap around the grid so that the cell
// after the last one in each axis is the first one.
func (f *Field2) LerpWrapped(p r2.Vec, c int) (float32, error) {
	if c < 0 || c >= f.channels {
		return 0, fmt.Errorf("interpolate channel %d of %d: %w", c, f.channels, procgen.ErrIndexOutOfRange)
	}
	return f.lerpWrapped(p.X, p.Y, c), nil
}

// LerpClamped is like LerpWrapped but clamps coordinates to the grid edges.
func (f *Field2) LerpClamped(p r2.Vec, c int) (float32, error) {
	if c < 0 || c >= f.channels {
		return 0, fmt.Errorf("interpolate channel %d of %d: %w", c, f.channels, procgen.ErrIndexOutOfRange)
	}
	x0, x1, tx := clampedAxis(p.X, f.dims[0])
	y0, y1, ty := clampedAxis(p.Y, f.dims[1])
	return f.bilinear(x0, x1, y0, y1, tx, ty, c), nil
}

func (f *Field2) lerpWrapped(x, y float64, c int) float32 {
	x0, x1, tx := wrappedAxis(x, f.dims[0])
	y0, y1, ty := wrappedAxis(y, f.dims[1])
	return f.bilinear(x0, x1, y0, y1, tx, ty, c)
}

func (f *Field2) bilinear(x0, x1, y0, y1 int, tx, ty float32, c int) float32 {
	d := f.data
	bottom := lerp(d[f.index(x0, y0, c)], d[f.index(x1, y0, c)], tx)
	top := lerp(d[f.index(x0, y1, c)], d[f.index(x1, y1, c)], tx)
	return lerp(bottom, top, ty)
}

// Resample returns a new field with the given dimensions. Destination
// cell i samples the source at i/dims*sourceDims with wrapped bilinear
// interpolation, so resampled noise still tiles seamlessly.
func (f *Field2) Resample(dims procgen.V2i) (*Field2, error) {
	dst, err := NewField2(dims, f.channels)
	if err != nil {
		return nil, err
	}
	sx := float64(f.dims[0]) / float64(dims[0])
	sy := float64(f.dims[1]) / float64(dims[1])
	parallelRows(dims[1], func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < dims[0]; x++ {
				for c := 0; c < f.channels; c++ {
					dst.data[dst.index(x, y, c)] = f.lerpWrapped(float64(x)*sx, float64(y)*sy, c)
				}
			}
		}
	})
	return dst, nil
}

// ToBytes quantizes values in [0,1] to bytes as floor(v*255), clamped to [0,255].
func (f *Field2) ToBytes() *Grid2[uint8] {
	b := &Grid2[uint8]{dims: f.dims, channels: f.channels, data: make([]uint8, len(f.data))}
	quantize(b.data, f.data)
	return b
}

// ToFourChannel expands a single channel field into an RGBA field with
// the value replicated into the color channels and a constant alpha.
func (f *Field2) ToFourChannel(alpha float32) (*Field2, error) {
	if f.channels != 1 {
		return nil, fmt.Errorf("expand %d channel field to four: %w", f.channels, ErrChannelMismatch)
	}
	four, err := NewField2(f.dims, 4)
	if err != nil {
		return nil, err
	}
	for i, v := range f.data {
		copy(four.data[4*i:], []float32{v, v, v, alpha})
	}
	return four, nil
}

func lerp(a, b, t float32) float32 { return (1-t)*a + t*b }

// wrappedAxis splits coordinate v into the two surrounding cell indices,
// wrapped to [0,n), and the fraction between them.
func wrappedAxis(v float64, n int) (i0, i1 int, t float32) {
	fl := math.Floor(v)
	i0 = imod(int(fl), n)
	return i0, (i0 + 1) % n, float32(v - fl)
}

// clampedAxis is like wrappedAxis with indices clamped to [0,n-1].
func clampedAxis(v float64, n int) (i0, i1 int, t float32) {
	fl := math.Floor(v)
	i0 = int(procgen.Clamp(fl, 0, float64(n-1)))
	i1 = int(procgen.Clamp(fl+1, 0, float64(n-1)))
	return i0, i1, float32(v - fl)
}

func quantize(dst []uint8, src []float32) {
	for i, v := range src {
		dst[i] = uint8(math32.Max(0, math32.Min(255, math32.Floor(v*255))))
	}
}

func imod(x, m int) int {
	r := x % m
	if r < 0 {
		r += m
	}
	return r
}
