// Package topology derives sub-entities, boundaries and adjacency from a
// mesh.
//
// Descend enumerates the sub-entities of every highest-dimensional element
// through fixed per-type templates and groups them by canonical signature.
// The equivalence mode is always explicit: canon.Chiral matches faces that
// neighbors traverse in opposite directions, canon.Rotational keeps them
// apart, canon.Unordered compares node sets.
//
// The neighbor graph is a gonum undirected graph keyed by element id;
// components are numbered by their smallest element id.
package topology
