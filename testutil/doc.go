// Package testutil provides testing utilities for meshkit.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random number generator, random point clouds and a
// set of small reference meshes.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(100, 2)       // uniform in [0, 1)^2
//	m := rng.RandomTriangles(pts, 50)      // TRI3 soup over pts
//
// # Fixtures
//
//	grid := testutil.QuadGrid(2, 2, 0)     // 2x2 QUAD4 grid at x offset 0
//	hex := testutil.UnitHex()              // one HEX8 cell
package testutil
