// Package testutil provides testing utilities for kmviz.
//
// This package is intended for use in tests and benchmarks only.
// It provides fixtures, seeded point generators, and assertions for the
// invariants every Run must satisfy.
//
// # Random Points
//
//	rng := testutil.NewRNG(seed)
//	points := rng.UniformPoints(100, -1, 1)
//	blobs := rng.Blobs(centers, 30, 0.2)
//
// # Invariants
//
//	testutil.AssertStepInvariants(t, data, k, run.Steps)
package testutil
