package testutil

import (
	"math/rand"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kmviz/distance"
	"github.com/hupe1980/kmviz/model"
)

// FourPoints is the two-pair dataset whose two-cluster manual run converges
// on (0, 0.5) and (10, 0.5).
func FourPoints() []model.Point {
	return []model.Point{
		model.Pt(0, 0), model.Pt(0, 1), model.Pt(10, 0), model.Pt(10, 1),
	}
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// UniformPoints returns n points with both coordinates in [lo, hi).
func (r *RNG) UniformPoints(n int, lo, hi float64) []model.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Point, n)
	for i := range out {
		out[i] = model.Pt(lo+r.rand.Float64()*(hi-lo), lo+r.rand.Float64()*(hi-lo))
	}
	return out
}

// Blobs returns perBlob points around each center, normally distributed
// with the given standard deviation. Points are grouped by center.
func (r *RNG) Blobs(centers []model.Point, perBlob int, stddev float64) []model.Point {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Point, 0, len(centers)*perBlob)
	for _, c := range centers {
		for i := 0; i < perBlob; i++ {
			out = append(out, model.Pt(
				c[0]+r.rand.NormFloat64()*stddev,
				c[1]+r.rand.NormFloat64()*stddev,
			))
		}
	}
	return out
}

// Duplicates returns n copies of p.
func Duplicates(p model.Point, n int) []model.Point {
	out := make([]model.Point, n)
	for i := range out {
		out[i] = p
	}
	return out
}

// AssertStepInvariants checks that every step has k centroids and k
// clusters, that every dataset position appears in exactly one cluster,
// that points match their positions, that each point sits in its nearest
// cluster (lowest index on ties), and that colors do not change between
// steps.
func AssertStepInvariants(t testing.TB, data []model.Point, k int, steps []model.Step) {
	t.Helper()
	require.NotEmpty(t, steps, "a run has at least one step")

	var colors []string
	for si, s := range steps {
		require.Len(t, s.Centroids, k, "step %d centroids", si)
		require.Len(t, s.Clusters, k, "step %d clusters", si)

		seen := make([]int, len(data))
		for c, cl := range s.Clusters {
			require.Len(t, cl.Points, len(cl.Indices), "step %d cluster %d", si, c)
			assert.True(t, sort.IntsAreSorted(cl.Indices), "step %d cluster %d indices ascending", si, c)
			for j, idx := range cl.Indices {
				require.True(t, idx >= 0 && idx < len(data), "step %d index %d out of range", si, idx)
				seen[idx]++
				assert.Equal(t, data[idx], cl.Points[j])
				nearest, _ := distance.Nearest(data[idx], s.Centroids)
				assert.Equal(t, nearest, c, "step %d point %d assigned to non-nearest cluster", si, idx)
			}
		}
		for idx, n := range seen {
			assert.Equal(t, 1, n, "step %d point %d appears %d times", si, idx, n)
		}

		stepColors := make([]string, k)
		for c, cl := range s.Clusters {
			stepColors[c] = cl.Color
		}
		if colors == nil {
			colors = stepColors
		} else {
			assert.Equal(t, colors, stepColors, "step %d colors", si)
		}
	}
}

// Inertia computes the sum of squared distances between each point and its
// cluster's centroid in s.
func Inertia(s model.Step) float64 {
	var sum float64
	for c, cl := range s.Clusters {
		for _, p := range cl.Points {
			sum += distance.SquaredL2(p, s.Centroids[c])
		}
	}
	return sum
}
