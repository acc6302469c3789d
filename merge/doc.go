// Package merge fuses nodes that lie within a tolerance of each other.
//
// Candidate pairs come from an R-tree over the referenced nodes; clusters
// are the connected components of the proximity graph. MergeNodes never
// applies a cluster whose diameter exceeds the tolerance or whose collapse
// would degenerate an element: such clusters are returned in Diagnostics
// and the rest of the merge proceeds.
package merge
