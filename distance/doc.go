// Package distance provides the planar distance calculations used by the
// k-means engine.
//
// Only squared Euclidean distance is supported. Square roots are never taken
// on the hot path; comparisons on squared distances order points identically.
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	idx, d := distance.Nearest(p, centroids)
package distance
