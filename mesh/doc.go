// Package mesh provides the unstructured mesh container.
//
// A Mesh is a CoordStore plus one ElementBlock per ElementType. Access comes
// in three tiers:
//
//   - *Mesh owns its blocks and a handle on its coordinates.
//   - View is a read-only borrow.
//   - *ViewMut is an exclusive mutable borrow (Mesh.BorrowMut). It may change
//     fields, groups, families, coordinates and node numbering, but never the
//     shape of a block.
//
// All three implement Reader. Structural changes (Extract, RenumberCells,
// Prune and every algorithm in the sibling packages) read a Reader and return
// a new *Mesh. Derived meshes share coordinates copy-on-write: the buffer is
// copied only when a holder asks for exclusive access while other holders
// exist.
//
// # Element Types
//
// Node ordering of high-order types: SEG3 [a b mid]; SEG4 [a b m_a m_b];
// TRI6 corners then mid-edges 01,12,20; TRI7 adds the centre; QUAD8 corners
// then mid-edges 01,12,23,30; QUAD9 adds the centre; TET10 corners then
// edges 01,12,20,03,13,23; HEX8 bottom face 0-3 then top 4-7; HEX21 corners,
// edges 01,12,23,30,45,56,67,74,04,15,26,37, then the body centre. PHED
// connectivity lists its faces separated by FaceSeparator.
package mesh
