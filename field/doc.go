// Package field computes per-element scalar fields.
//
// An Expr evaluates to one value per element of a block. Leaves read a
// stored field, a constant, a centroid coordinate or the element measure;
// Binary and Apply combine them arithmetically. Assign writes the result
// through a mesh.ViewMut:
//
//	v, _ := m.BorrowMut()
//	defer v.Release()
//
//	density := field.Div(field.Named("mass"), field.Measure(geom.Default()))
//	err := field.Assign(v, "rho", density, mesh.D2)
//
// The selector package compares expressions with Compare and Where.
package field
