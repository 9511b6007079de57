package telemetry

import "math/rand/v2"

// Rand is the source of uniform draws in [0,1).
type Rand interface {
	Float64() float64
}

// NewRand returns a seeded PCG source. Not safe for concurrent use; give
// each scheduler its own.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func uniform(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
