package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// perm is Ken Perlin's reference permutation of 0..255 repeated twice so
// that hashing a lattice corner never indexes past the table.
var perm = func() (p [512]int) {
	base := [256]int{
		151, 160, 137, 91, 90, 15, 131, 13, 201, 95, 96, 53, 194, 233, 7, 225,
		140, 36, 103, 30, 69, 142, 8, 99, 37, 240, 21, 10, 23, 190, 6, 148,
		247, 120, 234, 75, 0, 26, 197, 62, 94, 252, 219, 203, 117, 35, 11, 32,
		57, 177, 33, 88, 237, 149, 56, 87, 174, 20, 125, 136, 171, 168, 68, 175,
		74, 165, 71, 134, 139, 48, 27, 166, 77, 146, 158, 231, 83, 111, 229, 122,
		60, 211, 133, 230, 220, 105, 92, 41, 55, 46, 245, 40, 244, 102, 143, 54,
		65, 25, 63, 161, 1, 216, 80, 73, 209, 76, 132, 187, 208, 89, 18, 169,
		200, 196, 135, 130, 116, 188, 159, 86, 164, 100, 109, 198, 173, 186, 3, 64,
		52, 217, 226, 250, 124, 123, 5, 202, 38, 147, 118, 126, 255, 82, 85, 212,
		207, 206, 59, 227, 47, 16, 58, 17, 182, 189, 28, 42, 223, 183, 170, 213,
		119, 248, 152, 2, 44, 154, 163, 70, 221, 153, 101, 155, 167, 43, 172, 9,
		129, 22, 39, 253, 19, 98, 108, 110, 79, 113, 224, 232, 178, 185, 112, 104,
		218, 246, 97, 228, 251, 34, 242, 193, 238, 210, 144, 12, 191, 179, 162, 241,
		81, 51, 145, 235, 249, 14, 239, 107, 49, 192, 214, 31, 181, 199, 106, 157,
		184, 84, 204, 176, 115, 121, 50, 45, 127, 4, 150, 254, 138, 236, 205, 93,
		222, 114, 67, 29, 24, 72, 243, 141, 128, 195, 78, 66, 215, 61, 156, 180,
	}
	copy(p[:256], base[:])
	copy(p[256:], base[:])
	return p
}()

// Perlin returns classic gradient noise at p, in [-1,1]. It is zero at
// every integer lattice point and repeats every 256 units in each axis.
func Perlin(p r3.Vec) float64 {
	fx, fy, fz := math.Floor(p.X), math.Floor(p.Y), math.Floor(p.Z)
	x, y, z := p.X-fx, p.Y-fy, p.Z-fz
	X, Y, Z := int(fx)&255, int(fy)&255, int(fz)&255
	u, v, w := Fade(x), Fade(y), Fade(z)

	hash := func(i, j, k int) int { return perm[perm[perm[i]+j]+k] }
	aaa := grad(hash(X, Y, Z), x, y, z)
	baa := grad(hash(X+1, Y, Z), x-1, y, z)
	aba := grad(hash(X, Y+1, Z), x, y-1, z)
	bba := grad(hash(X+1, Y+1, Z), x-1, y-1, z)
	aab := grad(hash(X, Y, Z+1), x, y, z-1)
	bab := grad(hash(X+1, Y, Z+1), x-1, y, z-1)
	abb := grad(hash(X, Y+1, Z+1), x, y-1, z-1)
	bbb := grad(hash(X+1, Y+1, Z+1), x-1, y-1, z-1)

	return mix(
		mix(mix(aaa, baa, u), mix(aba, bba, u), v),
		mix(mix(aab, bab, u), mix(abb, bbb, u), v),
		w,
	)
}

// FractalPerlin sums layers octaves of Perlin noise at p. Octave i is
// sampled at frequency 2^-i and weighted by OctaveWeights, so lower
// frequencies dominate and the result stays in [-1,1].
func FractalPerlin(p r3.Vec, layers int) (sum float64) {
	freq := 1.0
	for _, w := range OctaveWeights(layers) {
		sum += w * Perlin(r3.Scale(freq, p))
		freq *= 0.5
	}
	return sum
}

// OctaveWeights returns the blend weight of each of layers octaves:
// 2^i / (2^layers - 1). The weights sum to 1.
func OctaveWeights(layers int) []float64 {
	if layers < 1 {
		return nil
	}
	total := math.Ldexp(1, layers) - 1
	w := make([]float64, layers)
	for i := range w {
		w[i] = math.Ldexp(1, i) / total
	}
	return w
}

// Fade is Perlin's interpolation curve 6t⁵-15t⁴+10t³, with zero first and
// second derivatives at 0 and 1.
func Fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func mix(a, b, t float64) float64 { return a + t*(b-a) }

// grad returns the dot product of (x,y,z) with one of 12 cube edge
// directions selected by the low 4 bits of hash. The last 4 entries
// repeat directions so the selection is a cheap mask.
func grad(hash int, x, y, z float64) float64 {
	switch hash & 0xF {
	case 0x0:
		return x + y
	case 0x1:
		return -x + y
	case 0x2:
		return x - y
	case 0x3:
		return -x - y
	case 0x4:
		return x + z
	case 0x5:
		return -x + z
	case 0x6:
		return x - z
	case 0x7:
		return -x - z
	case 0x8:
		return y + z
	case 0x9:
		return -y + z
	case 0xA:
		return y - z
	case 0xB:
		return -y - z
	case 0xC:
		return y + x
	case 0xD:
		return -y + z
	case 0xE:
		return y - x
	default:
		return -y - z
	}
}
