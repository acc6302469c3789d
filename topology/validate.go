package topology

import (
	"errors"

	"github.com/hupe1980/meshkit/canon"
	"github.com/hupe1980/meshkit/geom"
	"github.com/hupe1980/meshkit/mesh"
)

// Validate checks src structurally and topologically. It reports
// non-manifold codimension-1 sub-entities, lower-dimensional elements that
// are not a sub-entity of any highest-dimensional element, and degenerate
// elements. Problems are joined into one error.
func Validate(src mesh.Reader, mode canon.Mode, pred geom.Predicates) error {
	if err := mesh.Validate(src); err != nil {
		return err
	}

	d := mesh.TopologicalDimension(src)
	if d < mesh.D0 {
		return nil
	}

	var errs []error

	if d >= mesh.D1 {
		desc, err := Descend(src, mode)
		if desc == nil {
			return err
		}

		errs = append(errs, err)
	}

	for t := mesh.D0; t < d; t++ {
		var lower []mesh.ElementID
		for id := range mesh.ElementsOfDim(src, t) {
			lower = append(lower, id)
		}

		if len(lower) == 0 {
			continue
		}

		// Non-manifold faces were reported above.
		desc, err := Descend(src, mode, WithTarget(t))
		if desc == nil {
			return err
		}

		for _, id := range lower {
			nodes, _ := mesh.Element(src, id)
			if _, ok := desc.Lookup(id.Type, nodes); !ok {
				errs = append(errs, &mesh.ValidityError{Op: "validate", Element: id, Nodes: nodes, Detail: "orphan element"})
			}
		}
	}

	at := geom.ReaderPoints(src)

	for id, nodes := range mesh.Elements(src) {
		if geom.Degenerate(pred, id.Type, nodes, at) {
			errs = append(errs, &mesh.ValidityError{Op: "validate", Element: id, Nodes: nodes, Detail: "degenerate element"})
		}
	}

	return errors.Join(errs...)
}
