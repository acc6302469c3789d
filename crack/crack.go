package crack

import (
	"fmt"
	"slices"

	"github.com/hupe1980/meshkit/canon"
	"github.com/hupe1980/meshkit/mesh"
	"github.com/hupe1980/meshkit/topology"
)

// Result is the outcome of Crack.
type Result struct {
	// Mesh is the cracked mesh. Its first nodes are the source nodes.
	Mesh *mesh.Mesh
	// Origin maps every node appended by the crack to the source node it
	// duplicates, in append order.
	Origin []int
	// Ignored counts cut elements on the boundary of the source, which
	// separate nothing.
	Ignored int
}

// Crack disconnects the highest-dimensional elements of src across the
// codimension-1 elements of cut. cut uses the node numbering of src, for
// example a selection of a descending mesh of src.
//
// For every node of cut, the elements around it are split into the
// connected components that remain once the cut faces are removed from the
// neighbor graph. The component holding the smallest element keeps the
// node; each other component gets its own duplicate. Lower-dimensional
// elements of src keep the original nodes. A non-manifold src fails with a
// mesh.ValidityError.
func Crack(src, cut mesh.Reader, mode canon.Mode) (*Result, error) {
	const op = "crack"

	desc, err := topology.Descend(src, mode)
	if err != nil {
		return nil, err
	}

	if d := mesh.TopologicalDimension(cut); d >= 0 && d != desc.TargetDim() {
		return nil, &mesh.DimensionError{Op: op, SpaceDim: cut.SpaceDim(), TopoDim: d, Detail: fmt.Sprintf("cut must have dimension %s", desc.TargetDim())}
	}

	gr := topology.FromDescent(desc)
	res := &Result{}

	for id, nodes := range mesh.Elements(cut) {
		face, ok := desc.Lookup(id.Type, nodes)
		if !ok {
			return nil, &mesh.StructuralError{Op: op, Detail: fmt.Sprintf("cut element %s %v is not a face of the mesh", id, nodes)}
		}

		refs := desc.Parents(face)
		if len(refs) < 2 {
			res.Ignored++
			continue
		}

		for i := range refs {
			for j := i + 1; j < len(refs); j++ {
				gr.Unlink(refs[i].Parent, refs[j].Parent)
			}
		}
	}

	around := make(map[int][]mesh.ElementID)

	for _, id := range desc.Elements() {
		nodes, _ := mesh.Element(src, id)
		for _, v := range nodes {
			if v != mesh.FaceSeparator {
				around[v] = append(around[v], id)
			}
		}
	}

	tuples := make(map[mesh.ElementID][]int)
	tuple := func(id mesh.ElementID) []int {
		t, ok := tuples[id]
		if !ok {
			nodes, _ := mesh.Element(src, id)
			t = slices.Clone(nodes)
			tuples[id] = t
		}

		return t
	}

	next := src.NumNodes()

	for _, v := range mesh.UsedNodes(cut) {
		elems := slices.Compact(around[v])
		if len(elems) < 2 {
			continue
		}

		comps := gr.Subgraph(elems).Components()
		for _, comp := range comps[1:] {
			for _, id := range comp {
				t := tuple(id)
				for k, n := range t {
					if n == v {
						t[k] = next
					}
				}
			}

			res.Origin = append(res.Origin, v)
			next++
		}
	}

	cs := src.Coords().Share()
	points := make([][]float64, len(res.Origin))

	for i, v := range res.Origin {
		points[i] = src.Coord(v)
	}

	if _, err := cs.Append(points...); err != nil {
		cs.Release()
		return nil, err
	}

	blocks := make([]*mesh.ElementBlock, 0, len(src.Types()))

	for _, et := range src.Types() {
		b, _ := src.Block(et)

		repl := make(map[int][]int)
		for id, t := range tuples {
			if id.Type == et {
				repl[id.Index] = t
			}
		}

		nb, err := b.WithElements(repl)
		if err != nil {
			cs.Release()
			return nil, err
		}

		blocks = append(blocks, nb)
	}

	out, err := mesh.New(cs, blocks, mesh.WithName(src.Name()), mesh.WithDescription(src.Description()))
	if err != nil {
		cs.Release()
		return nil, err
	}

	res.Mesh = out

	return res, nil
}
