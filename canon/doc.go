// Package canon computes canonical signatures of element node tuples.
//
// A signature is the lexicographically smallest image of a tuple under the
// automorphism group selected by a Mode. Groups are fixed per element type
// and tabulated once at package initialization: cyclic (rotational) and
// dihedral (chiral) groups for polygons, 12/24 permutations for the
// tetrahedron, 24/48 for the hexahedron. Tables of high-order types are
// induced from their corner tables. PGON rings and SPLINE paths get one
// table per arity up to MaxPolySize.
//
// PHED and longer PGON or SPLINE tuples have no table; Of falls back to
// Unordered and reports it. Callers that need orientation use
// RequireOriented and check the returned mode.
package canon
