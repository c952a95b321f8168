// Package kmeans implements the step engine behind kmviz: Lloyd's algorithm
// over a 2-D point set, recording every assignment as an Iteration.
//
// A run moves through the states
//
//	Initializing -> Assigning -> Updating -> (Assigning | Converged | Exhausted)
//
// Initialization supports random sampling (dataset points or the bounding
// box), caller supplied seeds, k-means++ and farthest-first. Assignment picks
// the nearest centroid by squared Euclidean distance, breaking ties toward the
// lowest cluster index. Update moves each centroid to the mean of its members;
// empty clusters either keep their position or are reseeded to the point
// farthest from the surviving centroids, as configured for the whole run.
//
// The package is pure: given the same data, Config and RNG seed it produces
// the same Result.
package kmeans
