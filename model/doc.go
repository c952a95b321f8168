// Package model defines the data types exchanged with the k-means step engine.
//
// # Geometry
//
//   - Point: an immutable (x, y) pair, encoded on the wire as [x, y]
//   - Bound: the axis-aligned bounding box of a point set (orb.Bound)
//
// # Results
//
//   - Cluster: the points currently assigned to one cluster index plus its color
//   - Clusters: clusters ordered by index, encoded as an object keyed by index
//   - Step: one immutable snapshot of centroids and clusters
//   - Run: the ordered Steps of one invocation plus convergence metadata
//
// Point identity is positional: two points with the same coordinates at
// different dataset positions are distinct members.
package model
