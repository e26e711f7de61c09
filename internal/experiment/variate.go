package experiment

import (
	"math"
	"math/rand"
	"sync"
)

// VariateSource produces the random draws behind Thompson Sampling. It is
// seedable so bandit behavior is deterministic under test, and safe for
// concurrent use.
type VariateSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewVariateSource creates a source from the given seed.
func NewVariateSource(seed int64) *VariateSource {
	return &VariateSource{rng: rand.New(rand.NewSource(seed))}
}

// Normal draws a standard normal variate via the Box-Muller transform.
func (s *VariateSource) Normal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.normalLocked()
}

func (s *VariateSource) normalLocked() float64 {
	u1 := s.uniformLocked()
	u2 := s.uniformLocked()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// uniformLocked returns a uniform draw on (0, 1], avoiding log(0).
func (s *VariateSource) uniformLocked() float64 {
	return 1 - s.rng.Float64()
}

// Gamma draws from Gamma(shape, 1) using Marsaglia-Tsang rejection sampling.
// Shapes below 1 are handled by the boosting transform
// Gamma(shape) = Gamma(shape+1) * U^(1/shape).
func (s *VariateSource) Gamma(shape float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gammaLocked(shape)
}

func (s *VariateSource) gammaLocked(shape float64) float64 {
	if shape < 1 {
		return s.gammaLocked(shape+1) * math.Pow(s.uniformLocked(), 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := s.normalLocked()
		v := 1 + c*x
		v = v * v * v
		if v <= 0 {
			continue
		}
		u := s.uniformLocked()
		x2 := x * x
		if u < 1-0.0331*x2*x2 {
			return d * v
		}
		if math.Log(u) < 0.5*x2+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}

// Beta draws from Beta(alpha, beta) as X/(X+Y) with X~Gamma(alpha),
// Y~Gamma(beta).
func (s *VariateSource) Beta(alpha, beta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	x := s.gammaLocked(alpha)
	y := s.gammaLocked(beta)
	if x+y == 0 {
		return 0.5
	}
	return x / (x + y)
}
