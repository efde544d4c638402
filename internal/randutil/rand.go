// Package randutil builds reproducible random sources for shuffling.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a PCG-backed *rand.Rand derived from seed. Equal seeds give
// equal shuffles.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// Seed returns *seed when set and a clock-derived seed otherwise. The
// second result reports whether the seed was chosen by the caller.
func Seed(seed *int64) (int64, bool) {
	if seed != nil {
		return *seed, true
	}
	return time.Now().UnixNano(), false
}

// splitmix spreads nearby seeds across the PCG state space.
func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
