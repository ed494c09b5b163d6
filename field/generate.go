package field

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
	"github.com/soypat/procgen"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// WhiteNoise2 returns a field whose every value is independently uniform
// in [0,1). If rng is nil the global math/rand source is used.
func WhiteNoise2(dims procgen.V2i, channels int, rng *rand.Rand) (*Field2, error) {
	f, err := NewField2(dims, channels)
	if err != nil {
		return nil, err
	}
	fillRandom(f.data, rng)
	return f, nil
}

// WhiteNoise3 is the volume counterpart of WhiteNoise2.
func WhiteNoise3(dims procgen.V3i, channels int, rng *rand.Rand) (*Field3, error) {
	f, err := NewField3(dims, channels)
	if err != nil {
		return nil, err
	}
	fillRandom(f.data, rng)
	return f, nil
}

func fillRandom(data []float32, rng *rand.Rand) {
	rnd := rand.Float32
	if rng != nil {
		rnd = rng.Float32
	}
	for i := range data {
		data[i] = rnd()
	}
}

// FractalValueNoise2 sums layers white noise grids. Layer i has dims>>i
// cells per axis (at least 1), is upsampled to dims by wrapped bilinear
// resampling and weighted by OctaveWeights(layers)[i]. Values stay in [0,1)
// and the result tiles seamlessly.
func FractalValueNoise2(dims procgen.V2i, layers int, rng *rand.Rand) (*Field2, error) {
	if layers < 1 {
		return nil, fmt.Errorf("value noise with %d layers: %w", layers, ErrBadLayerCount)
	}
	sum, err := NewField2(dims, 1)
	if err != nil {
		return nil, err
	}
	for i, w := range OctaveWeights(layers) {
		layer, err := WhiteNoise2(dims.RightShift(uint(i)), 1, rng)
		if err != nil {
			return nil, err
		}
		if layer.dims != dims {
			layer, err = layer.Resample(dims)
			if err != nil {
				return nil, err
			}
		}
		if err := layer.Modulate(float32(w), 0); err != nil {
			return nil, err
		}
		if err := sum.Add(layer); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// FractalValueNoise3 is the volume counterpart of FractalValueNoise2.
func FractalValueNoise3(dims procgen.V3i, layers int, rng *rand.Rand) (*Field3, error) {
	if layers < 1 {
		return nil, fmt.Errorf("value noise with %d layers: %w", layers, ErrBadLayerCount)
	}
	sum, err := NewField3(dims, 1)
	if err != nil {
		return nil, err
	}
	for i, w := range OctaveWeights(layers) {
		layer, err := WhiteNoise3(dims.RightShift(uint(i)), 1, rng)
		if err != nil {
			return nil, err
		}
		if layer.dims != dims {
			layer, err = layer.Resample(dims)
			if err != nil {
				return nil, err
			}
		}
		if err := layer.Modulate(float32(w), 0); err != nil {
			return nil, err
		}
		if err := sum.Add(layer); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// PerlinNoise2 samples Perlin noise at (x*scale.X, y*scale.Y, 0.5) for
// every cell and stores it remapped from [-1,1] to [0,1].
func PerlinNoise2(dims procgen.V2i, scale r2.Vec) (*Field2, error) {
	return generate2(dims, func(x, y float64) float64 {
		return Perlin(r3.Vec{X: x * scale.X, Y: y * scale.Y, Z: 0.5})
	})
}

// FractalPerlinNoise2 is like PerlinNoise2 using FractalPerlin.
func FractalPerlinNoise2(dims procgen.V2i, scale r2.Vec, layers int) (*Field2, error) {
	if layers < 1 {
		return nil, fmt.Errorf("perlin noise with %d layers: %w", layers, ErrBadLayerCount)
	}
	return generate2(dims, func(x, y float64) float64 {
		return FractalPerlin(r3.Vec{X: x * scale.X, Y: y * scale.Y, Z: 0.5}, layers)
	})
}

// PerlinNoise3 samples Perlin noise at the scaled cell coordinate of every
// cell and stores it remapped to [0,1].
func PerlinNoise3(dims procgen.V3i, scale r3.Vec) (*Field3, error) {
	return generate3(dims, func(x, y, z float64) float64 {
		return Perlin(r3.Vec{X: x * scale.X, Y: y * scale.Y, Z: z * scale.Z})
	})
}

// FractalPerlinNoise3 is like PerlinNoise3 using FractalPerlin.
func FractalPerlinNoise3(dims procgen.V3i, scale r3.Vec, layers int) (*Field3, error) {
	if layers < 1 {
		return nil, fmt.Errorf("perlin noise with %d layers: %w", layers, ErrBadLayerCount)
	}
	return generate3(dims, func(x, y, z float64) float64 {
		return FractalPerlin(r3.Vec{X: x * scale.X, Y: y * scale.Y, Z: z * scale.Z}, layers)
	})
}

// SimplexNoise2 fills a field with layers octaves of OpenSimplex noise
// blended with OctaveWeights. Values are in [0,1). The same seed always
// produces the same field.
func SimplexNoise2(dims procgen.V2i, scale r2.Vec, layers int, seed int64) (*Field2, error) {
	if layers < 1 {
		return nil, fmt.Errorf("simplex noise with %d layers: %w", layers, ErrBadLayerCount)
	}
	noise := opensimplex.NewNormalized(seed)
	weights := OctaveWeights(layers)
	f, err := NewField2(dims, 1)
	if err != nil {
		return nil, err
	}
	parallelRows(dims[1], func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < dims[0]; x++ {
				var v float64
				freq := 1.0
				for _, w := range weights {
					v += w * noise.Eval2(float64(x)*scale.X*freq, float64(y)*scale.Y*freq)
					freq *= 0.5
				}
				f.data[f.index(x, y, 0)] = float32(v)
			}
		}
	})
	return f, nil
}

// SimplexNoise3 is the volume counterpart of SimplexNoise2.
func SimplexNoise3(dims procgen.V3i, scale r3.Vec, layers int, seed int64) (*Field3, error) {
	if layers < 1 {
		return nil, fmt.Errorf("simplex noise with %d layers: %w", layers, ErrBadLayerCount)
	}
	noise := opensimplex.NewNormalized(seed)
	weights := OctaveWeights(layers)
	f, err := NewField3(dims, 1)
	if err != nil {
		return nil, err
	}
	parallelRows(dims[2], func(start, end int) {
		for z := start; z < end; z++ {
			for y := 0; y < dims[1]; y++ {
				for x := 0; x < dims[0]; x++ {
					var v float64
					freq := 1.0
					for _, w := range weights {
						p := r3.Scale(freq, r3.Vec{X: float64(x) * scale.X, Y: float64(y) * scale.Y, Z: float64(z) * scale.Z})
						v += w * noise.Eval3(p.X, p.Y, p.Z)
						freq *= 0.5
					}
					f.data[f.index(x, y, z, 0)] = float32(v)
				}
			}
		}
	})
	return f, nil
}

// gradientDims is the lattice size of SlowPerlinNoise2 gradients. The
// noise repeats every 256 units.
var gradientDims = procgen.V2i{256, 256}

// SlowPerlinNoise2 evaluates gradient noise from a lattice of random unit
// gradients drawn from rng instead of the fixed permutation table. Cell
// (x,y) samples the lattice at (x,y)*scale. Values are remapped to [0,1].
func SlowPerlinNoise2(dims procgen.V2i, scale float64, rng *rand.Rand) (*Field2, error) {
	gradients, err := randomGradients2(rng)
	if err != nil {
		return nil, err
	}
	return generate2(dims, func(x, y float64) float64 {
		return gradientNoise2(gradients, r2.Vec{X: x * scale, Y: y * scale})
	})
}

// SlowFractalPerlinNoise2 sums layers octaves of the SlowPerlinNoise2
// lattice noise. Octave i is sampled at frequency scale*2^-i and weighted
// by OctaveWeights(layers)[i]. All octaves share one gradient lattice.
func SlowFractalPerlinNoise2(dims procgen.V2i, scale float64, layers int, rng *rand.Rand) (*Field2, error) {
	if layers < 1 {
		return nil, fmt.Errorf("slow perlin noise with %d layers: %w", layers, ErrBadLayerCount)
	}
	gradients, err := randomGradients2(rng)
	if err != nil {
		return nil, err
	}
	weights := OctaveWeights(layers)
	return generate2(dims, func(x, y float64) (sum float64) {
		freq := scale
		for _, w := range weights {
			sum += w * gradientNoise2(gradients, r2.Vec{X: x * freq, Y: y * freq})
			freq *= 0.5
		}
		return sum
	})
}

// randomGradients2 draws a gradientDims lattice of unit vectors with
// uniformly distributed angles.
func randomGradients2(rng *rand.Rand) (*Grid2[r2.Vec], error) {
	gradients, err := NewGrid2[r2.Vec](gradientDims, 1)
	if err != nil {
		return nil, err
	}
	rnd := rand.Float64
	if rng != nil {
		rnd = rng.Float64
	}
	for i := range gradients.data {
		sin, cos := math.Sincos(rnd() * 2 * math.Pi)
		gradients.data[i] = r2.Vec{X: cos, Y: sin}
	}
	return gradients, nil
}

// gradientNoise2 returns 2D gradient noise at p using a wrapped lattice of
// gradients. The result is in [-√2/2, √2/2].
func gradientNoise2(gradients *Grid2[r2.Vec], p r2.Vec) float64 {
	dims := gradients.dims
	x0, x1, _ := wrappedAxis(p.X, dims[0])
	y0, y1, _ := wrappedAxis(p.Y, dims[1])
	frac := r2.Sub(p, procgen.Floor2(p))
	dot := func(x, y int, offset r2.Vec) float64 {
		return r2.Dot(gradients.data[gradients.index(x, y, 0)], r2.Sub(frac, offset))
	}
	u, v := Fade(frac.X), Fade(frac.Y)
	bottom := mix(dot(x0, y0, r2.Vec{}), dot(x1, y0, r2.Vec{X: 1}), u)
	top := mix(dot(x0, y1, r2.Vec{Y: 1}), dot(x1, y1, r2.Vec{X: 1, Y: 1}), u)
	return mix(bottom, top, v)
}

// generate2 fills a single channel field with noise(x,y)*0.5+0.5.
func generate2(dims procgen.V2i, noise func(x, y float64) float64) (*Field2, error) {
	f, err := NewField2(dims, 1)
	if err != nil {
		return nil, err
	}
	parallelRows(dims[1], func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < dims[0]; x++ {
				f.data[f.index(x, y, 0)] = float32(noise(float64(x), float64(y))*0.5 + 0.5)
			}
		}
	})
	return f, nil
}

// generate3 fills a single channel volume with noise(x,y,z)*0.5+0.5.
func generate3(dims procgen.V3i, noise func(x, y, z float64) float64) (*Field3, error) {
	f, err := NewField3(dims, 1)
	if err != nil {
		return nil, err
	}
	parallelRows(dims[2], func(start, end int) {
		for z := start; z < end; z++ {
			for y := 0; y < dims[1]; y++ {
				for x := 0; x < dims[0]; x++ {
					f.data[f.index(x, y, z, 0)] = float32(noise(float64(x), float64(y), float64(z))*0.5 + 0.5)
				}
			}
		}
	})
	return f, nil
}
