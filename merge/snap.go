package merge

import (
	"github.com/hupe1980/meshkit/mesh"
	"github.com/hupe1980/meshkit/spatial"
)

// SnapResult is the outcome of Snap.
type SnapResult struct {
	// Mesh is subject over its snapped coordinates.
	Mesh *mesh.Mesh
	// Moved counts the nodes placed onto a reference node.
	Moved int
	// Diagnostics lists the nodes with more than one reference candidate
	// and the moves refused because they would collapse an element.
	Diagnostics Diagnostics
}

// Snap moves every referenced node of subject onto the referenced node of
// reference within eps, when there is exactly one. Nodes with several
// candidates stay in place and are reported. A move that would make an
// incident element degenerate is refused and reported as a ValidityError.
// subject is left untouched.
func Snap(subject, reference mesh.Reader, eps float64, opts ...Option) (*SnapResult, error) {
	const op = "snap"

	o := applyOptions(opts)

	if subject.SpaceDim() != reference.SpaceDim() {
		return nil, &mesh.DimensionError{Op: op, SpaceDim: subject.SpaceDim(), Detail: "reference has a different space dimension"}
	}

	refs := mesh.UsedNodes(reference)
	idx := spatial.NewPointIndex(reference.SpaceDim(), len(refs), func(i int) []float64 { return reference.Coord(refs[i]) })

	dim := subject.SpaceDim()
	flat := append([]float64(nil), subject.Coords().Data()...)
	res := &SnapResult{}

	pos := make([][]float64, subject.NumNodes())
	for i := range pos {
		pos[i] = flat[i*dim : (i+1)*dim]
	}

	incident := elementsByNode(subject)

	for _, v := range mesh.UsedNodes(subject) {
		cands := idx.Within(subject.Coord(v), eps)

		switch len(cands) {
		case 0:
			continue
		case 1:
			p := reference.Coord(refs[cands[0]])

			if rej := o.checkMove(subject, v, p, pos, incident); rej != nil {
				rej.Op = op
				res.Diagnostics.Rejected = append(res.Diagnostics.Rejected, rej)

				continue
			}

			copy(pos[v], p)
			res.Moved++
		default:
			nodes := make([]int, len(cands))
			for i, c := range cands {
				nodes[i] = refs[c]
			}

			amb := &mesh.ToleranceAmbiguityError{Op: op, Nodes: nodes, Diameter: diameter(reference, nodes), Tolerance: eps}
			if o.strict {
				return nil, amb
			}

			res.Diagnostics.Ambiguous = append(res.Diagnostics.Ambiguous, amb)
		}
	}

	cs, err := mesh.NewCoordStore(dim, flat)
	if err != nil {
		return nil, err
	}

	if res.Mesh, err = mesh.WithCoords(subject, cs); err != nil {
		return nil, err
	}

	return res, nil
}
