// Package kmviz computes the step-by-step history of K-Means clustering on
// 2-D point sets.
//
// An Engine turns a Request (dataset, cluster count, initialization method
// and, for manual mode, the seed centroids) into a model.Run: the ordered
// Steps of Lloyd's algorithm from the first assignment until convergence or
// the iteration cap. Every Step holds the centroids used for that
// assignment and the points of each cluster together with a display color
// that depends only on the cluster index.
//
// # Quick Start
//
//	engine, _ := kmviz.New(kmviz.WithSeed(42))
//	run, err := engine.Run(ctx, kmviz.Request{
//	    Data:        points,
//	    NumClusters: 3,
//	    InitMethod:  kmviz.InitKMeansPlusPlus,
//	})
//	for i, step := range run.Steps {
//	    fmt.Println(i, step.Centroids)
//	}
//
// # Initialization
//
//   - "kmeans++" (default): D² weighted seeding
//   - "random": k distinct dataset points, or uniform in the bounding box
//     with WithRandomPolicy(SampleBounds)
//   - "manual": the caller's centroids, in the order given
//   - "farthest_first": greedy max-min seeding
//
// # Determinism
//
// Each run draws from its own random source. WithSeed fixes the seed so that
// identical requests produce identical runs; manual runs never consume
// randomness. Deterministic runs can be memoized with WithCache.
//
// # Errors
//
// Invalid requests fail before any iteration with an error matching
// ErrInvalidConfiguration (as a *ConfigError) or ErrEmptyDataset.
// Non-convergence is not an error: see model.Run.Converged.
package kmviz
