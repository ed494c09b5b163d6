package field

import (
	"fmt"
	"iter"

	"github.com/soypat/procgen"
)

// ScalarField is implemented by every grid regardless of element type.
type ScalarField interface {
	// Channels returns the number of interleaved values per cell.
	Channels() int
	// Len returns the number of cells.
	Len() int
}

// Grid2 is a dense row-major 2D grid with interleaved channels. The value
// of channel c at cell (x,y) is stored at index (y*width+x)*channels+c.
type Grid2[T any] struct {
	dims     procgen.V2i
	channels int
	data     []T
}

// NewGrid2 allocates a zeroed grid.
func NewGrid2[T any](dims procgen.V2i, channels int) (*Grid2[T], error) {
	if !dims.Positive() || channels < 1 {
		return nil, fmt.Errorf("grid %v with %d channels: %w", dims, channels, ErrBadDimensions)
	}
	return &Grid2[T]{
		dims:     dims,
		channels: channels,
		data:     make([]T, dims.Product()*channels),
	}, nil
}

func (g *Grid2[T]) Dims() procgen.V2i { return g.dims }
func (g *Grid2[T]) Channels() int     { return g.channels }
func (g *Grid2[T]) Len() int          { return g.dims.Product() }

// Data returns the underlying buffer. It is shared with the grid.
func (g *Grid2[T]) Data() []T { return g.data }

func (g *Grid2[T]) index(x, y, c int) int {
	return (y*g.dims[0]+x)*g.channels + c
}

func (g *Grid2[T]) check(x, y, c int) error {
	if x < 0 || y < 0 || x >= g.dims[0] || y >= g.dims[1] || c < 0 || c >= g.channels {
		return fmt.Errorf("cell (%d,%d) channel %d of %v grid with %d channels: %w", x, y, c, g.dims, g.channels, procgen.ErrIndexOutOfRange)
	}
	return nil
}

// Get returns channel c of cell (x,y).
func (g *Grid2[T]) Get(x, y, c int) (T, error) {
	if err := g.check(x, y, c); err != nil {
		var zero T
		return zero, err
	}
	return g.data[g.index(x, y, c)], nil
}

// Set sets channel c of cell (x,y) to v.
func (g *Grid2[T]) Set(x, y, c int, v T) error {
	if err := g.check(x, y, c); err != nil {
		return err
	}
	g.data[g.index(x, y, c)] = v
	return nil
}

// Cells iterates over every cell coordinate in row-major order, x varying
// fastest. The sequence may be iterated any number of times.
func (g *Grid2[T]) Cells() iter.Seq[procgen.V2i] {
	return func(yield func(procgen.V2i) bool) {
		for y := 0; y < g.dims[1]; y++ {
			for x := 0; x < g.dims[0]; x++ {
				if !yield(procgen.V2i{x, y}) {
					return
				}
			}
		}
	}
}

// Grid3 is a dense 3D grid with interleaved channels stored slice by slice:
// the value of channel c at cell (x,y,z) is at
// ((z*height+y)*width+x)*channels+c.
type Grid3[T any] struct {
	dims     procgen.V3i
	channels int
	data     []T
}

// NewGrid3 allocates a zeroed grid.
func NewGrid3[T any](dims procgen.V3i, channels int) (*Grid3[T], error) {
	if !dims.Positive() || channels < 1 {
		return nil, fmt.Errorf("grid %v with %d channels: %w", dims, channels, ErrBadDimensions)
	}
	return &Grid3[T]{
		dims:     dims,
		channels: channels,
		data:     make([]T, dims.Product()*channels),
	}, nil
}

func (g *Grid3[T]) Dims() procgen.V3i { return g.dims }
func (g *Grid3[T]) Channels() int     { return g.channels }
func (g *Grid3[T]) Len() int          { return g.dims.Product() }

// Data returns the underlying buffer. It is shared with the grid.
func (g *Grid3[T]) Data() []T { return g.data }

func (g *Grid3[T]) index(x, y, z, c int) int {
	return ((z*g.dims[1]+y)*g.dims[0]+x)*g.channels + c
}

func (g *Grid3[T]) check(x, y, z, c int) error {
	if x < 0 || y < 0 || z < 0 || x >= g.dims[0] || y >= g.dims[1] || z >= g.dims[2] || c < 0 || c >= g.channels {
		return fmt.Errorf("cell (%d,%d,%d) channel %d of %v grid with %d channels: %w", x, y, z, c, g.dims, g.channels, procgen.ErrIndexOutOfRange)
	}
	return nil
}

// Get returns channel c of cell (x,y,z).
func (g *Grid3[T]) Get(x, y, z, c int) (T, error) {
	if err := g.check(x, y, z, c); err != nil {
		var zero T
		return zero, err
	}
	return g.data[g.index(x, y, z, c)], nil
}

// Set sets channel c of cell (x,y,z) to v.
func (g *Grid3[T]) Set(x, y, z, c int, v T) error {
	if err := g.check(x, y, z, c); err != nil {
		return err
	}
	g.data[g.index(x, y, z, c)] = v
	return nil
}

// Cells iterates over every cell coordinate slice by slice, x varying
// fastest and z slowest. The sequence may be iterated any number of times.
func (g *Grid3[T]) Cells() iter.Seq[procgen.V3i] {
	return func(yield func(procgen.V3i) bool) {
		for z := 0; z < g.dims[2]; z++ {
			for y := 0; y < g.dims[1]; y++ {
				for x := 0; x < g.dims[0]; x++ {
					if !yield(procgen.V3i{x, y, z}) {
						return
					}
				}
			}
		}
	}
}
