package noise

// 2D simplex noise after Ken Perlin's reference algorithm. Values are
// deterministic per seed and bounded to [-1, 1].

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidInput = errors.New("invalid noise input")

var grad2 = [8][2]float64{
	{1, 1}, {-1, 1}, {1, -1}, {-1, -1},
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
}

// Sampler evaluates a seeded 2D scalar noise field. It is immutable after
// construction and safe for concurrent use.
type Sampler struct {
	perm [512]int
}

// New builds a sampler with a permutation table shuffled from the seed.
func New(seed int64) *Sampler {
	s := &Sampler{}

	var p [256]int
	for i := range p {
		p[i] = i
	}

	// Fisher-Yates shuffle driven by an LCG so identical seeds always
	// produce the identical table.
	state := seed
	for i := 255; i > 0; i-- {
		state = state*6364136223846793005 + 1442695040888963407
		j := int(uint64(state>>33) % uint64(i+1))
		p[i], p[j] = p[j], p[i]
	}

	for i := 0; i < 512; i++ {
		s.perm[i] = p[i&255]
	}
	return s
}

// Sample returns simplex noise at (x, z) in [-1, 1]. Non-finite inputs
// fail with ErrInvalidInput rather than propagating NaN into the field.
func (s *Sampler) Sample(x, z float64) (float64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, fmt.Errorf("%w: (%v, %v)", ErrInvalidInput, x, z)
	}
	return s.at(x, z), nil
}

func (s *Sampler) at(x, z float64) float64 {
	const (
		f2 = 0.36602540378443864676 // (sqrt(3) - 1) / 2
		g2 = 0.21132486540518711775 // (3 - sqrt(3)) / 6
	)

	// Skew into simplex cell space.
	skew := (x + z) * f2
	i := fastFloor(x + skew)
	j := fastFloor(z + skew)

	t := float64(i+j) * g2
	x0 := x - (float64(i) - t)
	z0 := z - (float64(j) - t)

	var i1, j1 int
	if x0 > z0 {
		i1 = 1
	} else {
		j1 = 1
	}

	x1 := x0 - float64(i1) + g2
	z1 := z0 - float64(j1) + g2
	x2 := x0 - 1.0 + 2.0*g2
	z2 := z0 - 1.0 + 2.0*g2

	ii := i & 255
	jj := j & 255
	gi0 := s.perm[ii+s.perm[jj]] & 7
	gi1 := s.perm[ii+i1+s.perm[jj+j1]] & 7
	gi2 := s.perm[ii+1+s.perm[jj+1]] & 7

	var n0, n1, n2 float64

	t0 := 0.5 - x0*x0 - z0*z0
	if t0 >= 0 {
		t0 *= t0
		n0 = t0 * t0 * dot2(grad2[gi0], x0, z0)
	}

	t1 := 0.5 - x1*x1 - z1*z1
	if t1 >= 0 {
		t1 *= t1
		n1 = t1 * t1 * dot2(grad2[gi1], x1, z1)
	}

	t2 := 0.5 - x2*x2 - z2*z2
	if t2 >= 0 {
		t2 *= t2
		n2 = t2 * t2 * dot2(grad2[gi2], x2, z2)
	}

	return 70.0 * (n0 + n1 + n2)
}

// Octave layers fractal octaves of noise, normalized back to [-1, 1].
// It requires at least one octave; the zero-octave sum has no defined
// normalization.
func (s *Sampler) Octave(x, z float64, octaves int, lacunarity, persistence float64) (float64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, fmt.Errorf("%w: (%v, %v)", ErrInvalidInput, x, z)
	}
	if octaves < 1 {
		return 0, fmt.Errorf("%w: octaves %d must be positive", ErrInvalidInput, octaves)
	}

	var total, maxAmplitude float64
	frequency := 1.0
	amplitude := 1.0
	for i := 0; i < octaves; i++ {
		total += s.at(x*frequency, z*frequency) * amplitude
		maxAmplitude += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	return total / maxAmplitude, nil
}

func fastFloor(v float64) int {
	n := int(v)
	if v < float64(n) {
		return n - 1
	}
	return n
}

func dot2(g [2]float64, x, z float64) float64 {
	return g[0]*x + g[1]*z
}
