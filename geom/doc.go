// Package geom defines the geometric predicates used by the mesh algorithms
// and ships Planar, a straight-sided implementation.
//
// Polygon operations work on planar rings: Intersect and Subtract decompose
// non-convex rings into triangles and clip convex pieces, so results come
// back as disjoint convex polygons.
package geom
