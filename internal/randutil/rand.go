// Package randutil centralises how games derive their randomness so that a
// recorded seed replays the same toss order.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// rand/v2 needs two 64-bit seeds for PCG; both are derived from the one seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewTimeSeeded returns a generator seeded from the wall clock along with the
// seed used, so callers can log it for replay.
func NewTimeSeeded() (*rand.Rand, int64) {
	seed := time.Now().UnixNano()
	return New(seed), seed
}

// Permutation returns a uniformly random ordering of items. The input slice
// is left untouched.
func Permutation[T any](rng *rand.Rand, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// DeriveSeed produces an independent child seed, used when one parent seed
// drives many parallel games.
func DeriveSeed(parent int64, index int) int64 {
	return int64(mix(uint64(parent) + uint64(index)*goldenRatio64))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
