// Package combine overlays meshes.
//
// Aggregate concatenates any meshes. The geometric operations (Fuse,
// Intersect, Subtract, Split and Conformize) work on the 2-D cells of meshes
// in 2-D space. An operand holding any element of another dimension is
// refused with a mesh.DimensionError.
//
// Every geometric operation follows the same pipeline. Candidate cell pairs
// come from an R-tree over cell bounding boxes. Each cell keeps the part of
// its area not claimed by an earlier overlapping cell, and that part is cut
// by every later overlapping cell through geom.Predicates. Cells that
// overlap nothing pass through with their original type and node order.
// New nodes are deduplicated with merge.MergeNodes, nodes lying inside
// another cell's edge are inserted into it, and the blocks are rebuilt with
// fields and groups inherited from the parent cells.
//
// A field whose parents disagree is reported in Diagnostics.Conflicts and
// set to NaN unless a Reduction is configured.
package combine
