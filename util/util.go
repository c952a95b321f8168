// Package util provides the seeded random source scoped to a single run.
package util

import (
	"math/rand"
	"sync/atomic"
	"time"
)

// RNG encapsulates a random number generator and the seed it started from.
//
// An RNG is owned by exactly one run and is not safe for concurrent use.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

var seedCounter atomic.Int64

// NewSeed returns a fresh seed for runs without a fixed seed. Seeds differ
// between calls even within the same clock tick.
func NewSeed() int64 {
	return time.Now().UnixNano() ^ (seedCounter.Add(1) << 32)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	return r.rand.Float64()
}

// NormFloat64 returns a standard normally distributed number.
func (r *RNG) NormFloat64() float64 {
	return r.rand.NormFloat64()
}

// Uniform returns a pseudo-random number in [lo,hi).
func (r *RNG) Uniform(lo, hi float64) float64 {
	return lo + r.rand.Float64()*(hi-lo)
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	return r.rand.Perm(n)
}
