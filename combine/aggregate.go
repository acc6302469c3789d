package combine

import (
	"slices"

	"github.com/hupe1980/meshkit/mesh"
)

// Aggregate concatenates meshes without looking at geometry. Node and
// element indices of each input are offset by the sizes of the inputs
// before it; coincident nodes and overlapping elements are kept. Fields
// missing from any block of a type are dropped and reported.
func Aggregate(meshes ...mesh.Reader) (*Result, error) {
	const op = "aggregate"

	if len(meshes) == 0 {
		return nil, &mesh.StructuralError{Op: op, Detail: "no meshes"}
	}

	dim := meshes[0].SpaceDim()

	var (
		flat    []float64
		offsets = make([]int, len(meshes))
		parts   = make(map[mesh.ElementType][]mesh.BlockPart)
		owners  = make(map[mesh.ElementType][]int)
	)

	for k, m := range meshes {
		if m.SpaceDim() != dim {
			return nil, &mesh.DimensionError{Op: op, SpaceDim: m.SpaceDim(), Detail: "inputs have different space dimensions"}
		}

		offsets[k] = len(flat) / dim
		flat = append(flat, m.Coords().Data()...)

		for _, et := range m.Types() {
			b, _ := m.Block(et)
			parts[et] = append(parts[et], mesh.BlockPart{Block: b, NodeOffset: offsets[k]})
			owners[et] = append(owners[et], k)
		}
	}

	res := &Result{Provenance: make(map[mesh.ElementID][]Parent)}
	blocks := make([]*mesh.ElementBlock, 0, len(parts))

	for _, et := range mesh.AllTypes {
		ps, ok := parts[et]
		if !ok {
			continue
		}

		b, dropped, err := mesh.ConcatBlocks(ps)
		if err != nil {
			return nil, err
		}

		res.Diagnostics.Dropped = append(res.Diagnostics.Dropped, dropped...)
		blocks = append(blocks, b)

		next := 0

		for i, p := range ps {
			for j := range p.Block.Len() {
				out := mesh.ElementID{Type: et, Index: next}
				res.Provenance[out] = []Parent{{Operand: owners[et][i], ID: mesh.ElementID{Type: et, Index: j}}}
				next++
			}
		}
	}

	slices.Sort(res.Diagnostics.Dropped)
	res.Diagnostics.Dropped = slices.Compact(res.Diagnostics.Dropped)

	cs, err := mesh.NewCoordStore(dim, flat)
	if err != nil {
		return nil, err
	}

	out, err := mesh.New(cs, blocks, mesh.WithName(meshes[0].Name()), mesh.WithDescription(meshes[0].Description()))
	if err != nil {
		cs.Release()
		return nil, err
	}

	res.Mesh = out

	return res, nil
}
