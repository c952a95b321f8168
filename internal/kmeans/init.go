package kmeans

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/kmviz/distance"
	"github.com/hupe1980/kmviz/model"
	"github.com/hupe1980/kmviz/util"
)

// maxBoundsRetries bounds resampling when a bounding-box draw collides with
// an already chosen centroid.
const maxBoundsRetries = 64

// Initialize returns the initial k centroids for cfg. Callers are expected to
// have validated cfg with Validate.
func Initialize(data []model.Point, cfg Config, rng *util.RNG) []model.Point {
	switch cfg.Method {
	case InitManual:
		return model.ClonePoints(cfg.Seeds)
	case InitRandom:
		// With one centroid per point, bounding-box draws would leave
		// clusters empty; sampling the dataset pins each point instead.
		if cfg.RandomPolicy == SampleBounds && cfg.K < len(data) {
			return randomBoundsInit(data, cfg.K, rng)
		}
		return randomDatasetInit(data, cfg.K, rng)
	case InitFarthestFirst:
		return farthestFirstInit(data, cfg.K, rng)
	default:
		return kmeansPlusPlusInit(data, cfg.K, rng)
	}
}

// randomDatasetInit samples k dataset points without replacement. Candidates
// coinciding with an already chosen centroid are deferred, and only used when
// the dataset has fewer than k distinct coordinates.
func randomDatasetInit(data []model.Point, k int, rng *util.RNG) []model.Point {
	centroids := make([]model.Point, 0, k)
	var deferred []int
	for _, idx := range rng.Perm(len(data)) {
		if len(centroids) == k {
			break
		}
		p := data[idx]
		if containsPoint(centroids, p) {
			deferred = append(deferred, idx)
			continue
		}
		centroids = append(centroids, p)
	}
	for _, idx := range deferred {
		if len(centroids) == k {
			break
		}
		centroids = append(centroids, data[idx])
	}
	return centroids
}

// randomBoundsInit samples k points uniformly inside the bounding box of data.
func randomBoundsInit(data []model.Point, k int, rng *util.RNG) []model.Point {
	b := model.Bounds(data)
	centroids := make([]model.Point, 0, k)
	for len(centroids) < k {
		var p model.Point
		for try := 0; try < maxBoundsRetries; try++ {
			p = model.Pt(rng.Uniform(b.Min[0], b.Max[0]), rng.Uniform(b.Min[1], b.Max[1]))
			if !containsPoint(centroids, p) {
				break
			}
		}
		centroids = append(centroids, p)
	}
	return centroids
}

// kmeansPlusPlusInit picks the first centroid uniformly, then each next one
// among the unchosen points with probability proportional to D(x)^2.
// Ref: https://theory.stanford.edu/~sergei/papers/kMeansPP-soda.pdf
func kmeansPlusPlusInit(data []model.Point, k int, rng *util.RNG) []model.Point {
	n := len(data)
	chosen := bitset.New(uint(n))
	centroids := make([]model.Point, 0, k)

	first := rng.Intn(n)
	chosen.Set(uint(first))
	centroids = append(centroids, data[first])
	dists := initialDistances(data, data[first])

	for len(centroids) < k {
		var total float64
		for i := range data {
			if !chosen.Test(uint(i)) {
				total += dists[i]
			}
		}

		idx := -1
		if total > 0 {
			target := rng.Float64() * total
			var cum float64
			last := -1
			for i := range data {
				if chosen.Test(uint(i)) || dists[i] == 0 {
					continue
				}
				last = i
				cum += dists[i]
				if target < cum {
					idx = i
					break
				}
			}
			if idx < 0 {
				// Rounding left target at the very end of the distribution.
				idx = last
			}
		} else {
			// Every unchosen point coincides with a centroid.
			idx = nthClear(chosen, rng.Intn(n-int(chosen.Count())))
		}

		chosen.Set(uint(idx))
		centroids = append(centroids, data[idx])
		updateDistances(data, dists, data[idx])
	}
	return centroids
}

// farthestFirstInit picks the first centroid uniformly, then repeatedly the
// unchosen point farthest from its nearest centroid (lowest index on ties).
func farthestFirstInit(data []model.Point, k int, rng *util.RNG) []model.Point {
	n := len(data)
	chosen := bitset.New(uint(n))
	centroids := make([]model.Point, 0, k)

	first := rng.Intn(n)
	chosen.Set(uint(first))
	centroids = append(centroids, data[first])
	dists := initialDistances(data, data[first])

	for len(centroids) < k {
		best := -1
		bestDist := -1.0
		for i := range data {
			if chosen.Test(uint(i)) {
				continue
			}
			if dists[i] > bestDist {
				best = i
				bestDist = dists[i]
			}
		}
		chosen.Set(uint(best))
		centroids = append(centroids, data[best])
		updateDistances(data, dists, data[best])
	}
	return centroids
}

func initialDistances(data []model.Point, c model.Point) []float64 {
	dists := make([]float64, len(data))
	for i, p := range data {
		dists[i] = distance.SquaredL2(p, c)
	}
	return dists
}

func updateDistances(data []model.Point, dists []float64, c model.Point) {
	for i, p := range data {
		if d := distance.SquaredL2(p, c); d < dists[i] {
			dists[i] = d
		}
	}
}

// nthClear returns the position of the n-th (0-based) clear bit.
func nthClear(b *bitset.BitSet, n int) int {
	var i uint
	for {
		next, ok := b.NextClear(i)
		if !ok {
			return -1
		}
		if n == 0 {
			return int(next)
		}
		n--
		i = next + 1
	}
}

func containsPoint(points []model.Point, p model.Point) bool {
	for _, q := range points {
		if q == p {
			return true
		}
	}
	return false
}
