package distance

import (
	"math"

	"github.com/paulmach/orb/planar"

	"github.com/hupe1980/kmviz/model"
)

// SquaredL2 calculates the squared Euclidean distance between two points.
func SquaredL2(a, b model.Point) float64 {
	return planar.DistanceSquared(a.Orb(), b.Orb())
}

// L2 calculates the Euclidean distance between two points.
func L2(a, b model.Point) float64 {
	return math.Sqrt(SquaredL2(a, b))
}

// Nearest returns the index of the centroid closest to p and the squared
// distance to it. Ties resolve to the lowest index, and a non-empty set of
// centroids always yields an index even when distances overflow. It returns
// -1 when centroids is empty.
func Nearest(p model.Point, centroids []model.Point) (int, float64) {
	if len(centroids) == 0 {
		return -1, math.Inf(1)
	}
	best, bestDist := 0, SquaredL2(p, centroids[0])
	for j := 1; j < len(centroids); j++ {
		// Strict comparison keeps the lowest index on ties.
		if d := SquaredL2(p, centroids[j]); d < bestDist {
			best = j
			bestDist = d
		}
	}
	return best, bestDist
}

// NearestDistance returns the squared distance from p to its closest centroid,
// or +Inf when centroids is empty.
func NearestDistance(p model.Point, centroids []model.Point) float64 {
	_, d := Nearest(p, centroids)
	return d
}
