// Package dataset supplies the 2-D point sets the engine clusters.
//
// A Provider produces an ordered, finite point set on demand. The built-in
// providers draw from a seeded generator so that a dataset can be reproduced
// from its seed:
//
//   - StandardNormal: both coordinates ~ N(0, 1), the visualizer's default
//   - Uniform: uniform inside an orb.Bound
//   - Blobs: isotropic Gaussian blobs around fixed centers
//
// ReadCSV loads a point set from CSV.
//
// Providers are not safe for concurrent use; give each goroutine its own.
package dataset
