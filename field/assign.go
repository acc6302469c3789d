package field

import (
	"github.com/hupe1980/meshkit/geom"
	"github.com/hupe1980/meshkit/mesh"
)

// Evaluate returns e over every block of r of dimension dim, keyed by type.
func Evaluate(r mesh.Reader, e Expr, dim mesh.Dimension) (map[mesh.ElementType][]float64, error) {
	out := make(map[mesh.ElementType][]float64)

	for _, et := range r.Types() {
		if et.Dimension() != dim {
			continue
		}

		vals, err := e.Eval(r, et)
		if err != nil {
			return nil, err
		}

		out[et] = vals
	}

	return out, nil
}

// Assign stores e as the field name on every block of dimension dim. Every
// block is evaluated before the first write, so a failing expression leaves
// the mesh unchanged.
func Assign(v *mesh.ViewMut, name string, e Expr, dim mesh.Dimension) error {
	vals, err := Evaluate(v, e, dim)
	if err != nil {
		return err
	}

	for _, et := range v.Types() {
		if x, ok := vals[et]; ok {
			if err := v.AssignField(et, name, x); err != nil {
				return err
			}
		}
	}

	return nil
}

// AssignMeasure stores the measure of every element of the mesh's
// topological dimension as the field name. An empty mesh is left alone.
func AssignMeasure(v *mesh.ViewMut, p geom.Predicates, name string) error {
	d := mesh.TopologicalDimension(v)
	if d < 0 {
		return nil
	}

	return Assign(v, name, Measure(p), d)
}
