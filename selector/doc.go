// Package selector builds composable element selections.
//
// A Selector narrows a mesh.IDSet. Leaves test element types, ids, groups,
// families, field values, centroids or node positions; Compare and Where
// test field.Expr expressions; And, Or and Not combine them. Select runs a selector over a whole mesh:
//
//	ids, sub, err := selector.Select(m, selector.And(
//		selector.Dimensions(mesh.D2),
//		selector.Field("rho", selector.OpGreaterThan, 1),
//	))
package selector
