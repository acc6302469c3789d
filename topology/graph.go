package topology

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/hupe1980/meshkit/canon"
	"github.com/hupe1980/meshkit/mesh"
)

// Graph is the adjacency graph of the elements of one dimension. Two
// elements are adjacent when they share a sub-entity.
type Graph struct {
	ids   []mesh.ElementID
	index map[mesh.ElementID]int64
	g     *simple.UndirectedGraph
}

func newGraph(ids []mesh.ElementID) *Graph {
	gr := &Graph{
		ids:   ids,
		index: make(map[mesh.ElementID]int64, len(ids)),
		g:     simple.NewUndirectedGraph(),
	}

	for i, id := range ids {
		gr.index[id] = int64(i)
		gr.g.AddNode(simple.Node(i))
	}

	return gr
}

// Neighbors builds the adjacency graph of the highest-dimensional elements
// of src. WithTarget selects the dimension of the shared sub-entities;
// the default is codimension 1. Non-manifold sub-entities fail with the
// ValidityError of Descend; use FromDescent to build the graph anyway.
func Neighbors(src mesh.Reader, mode canon.Mode, opts ...Option) (*Graph, error) {
	desc, err := Descend(src, mode, opts...)
	if err != nil {
		return nil, err
	}

	return FromDescent(desc), nil
}

// FromDescent links every pair of source elements sharing a sub-entity of
// desc.
func FromDescent(desc *Descent) *Graph {
	gr := newGraph(desc.Elements())

	for id := range mesh.Elements(desc.mesh) {
		refs := desc.parents[id]
		for i := range refs {
			for j := i + 1; j < len(refs); j++ {
				gr.Link(refs[i].Parent, refs[j].Parent)
			}
		}
	}

	return gr
}

// Len returns the number of elements in the graph.
func (gr *Graph) Len() int { return len(gr.ids) }

// Elements returns the elements of the graph in id order.
func (gr *Graph) Elements() []mesh.ElementID { return slices.Clone(gr.ids) }

// NumEdges returns the number of adjacent pairs.
func (gr *Graph) NumEdges() int { return gr.g.Edges().Len() }

// Link makes a and b adjacent. Unknown ids and self links are ignored.
func (gr *Graph) Link(a, b mesh.ElementID) {
	x, okA := gr.index[a]
	y, okB := gr.index[b]

	if !okA || !okB || x == y {
		return
	}

	gr.g.SetEdge(simple.Edge{F: simple.Node(x), T: simple.Node(y)})
}

// Unlink removes the adjacency between a and b.
func (gr *Graph) Unlink(a, b mesh.ElementID) {
	x, okA := gr.index[a]
	y, okB := gr.index[b]

	if okA && okB {
		gr.g.RemoveEdge(x, y)
	}
}

// Adjacent reports whether a and b share a sub-entity.
func (gr *Graph) Adjacent(a, b mesh.ElementID) bool {
	x, okA := gr.index[a]
	y, okB := gr.index[b]

	return okA && okB && gr.g.HasEdgeBetween(x, y)
}

// Neighbors returns the elements adjacent to id in id order.
func (gr *Graph) Neighbors(id mesh.ElementID) []mesh.ElementID {
	x, ok := gr.index[id]
	if !ok {
		return nil
	}

	return gr.collect(gr.g.From(x))
}

// Subgraph returns the graph induced by ids.
func (gr *Graph) Subgraph(ids []mesh.ElementID) *Graph {
	keep := slices.Clone(ids)
	slices.SortFunc(keep, mesh.ElementID.Compare)
	keep = slices.Compact(keep)

	sub := newGraph(keep)

	for _, a := range keep {
		for _, b := range gr.Neighbors(a) {
			if a.Compare(b) < 0 {
				sub.Link(a, b)
			}
		}
	}

	return sub
}

// Components partitions the elements into connected components. Each
// component is sorted and components are ordered by their smallest element.
func (gr *Graph) Components() [][]mesh.ElementID {
	cc := topo.ConnectedComponents(gr.g)
	out := make([][]mesh.ElementID, 0, len(cc))

	for _, c := range cc {
		ids := make([]mesh.ElementID, len(c))
		for i, n := range c {
			ids[i] = gr.ids[n.ID()]
		}

		slices.SortFunc(ids, mesh.ElementID.Compare)
		out = append(out, ids)
	}

	slices.SortFunc(out, func(a, b []mesh.ElementID) int { return a[0].Compare(b[0]) })

	return out
}

func (gr *Graph) collect(it graph.Nodes) []mesh.ElementID {
	out := make([]mesh.ElementID, 0, it.Len())
	for it.Next() {
		out = append(out, gr.ids[it.Node().ID()])
	}

	slices.SortFunc(out, mesh.ElementID.Compare)

	return out
}

// ConnectedComponents partitions the highest-dimensional elements of src
// into connected components.
func ConnectedComponents(src mesh.Reader, mode canon.Mode, opts ...Option) ([][]mesh.ElementID, error) {
	gr, err := Neighbors(src, mode, opts...)
	if err != nil {
		return nil, err
	}

	return gr.Components(), nil
}

// ComponentMeshes extracts each component as a mesh whose coordinates hold
// only the nodes it references.
func ComponentMeshes(src mesh.Reader, components [][]mesh.ElementID) ([]*mesh.Mesh, error) {
	out := make([]*mesh.Mesh, 0, len(components))

	for _, c := range components {
		sub, err := mesh.Extract(src, mesh.NewIDSet(c...))
		if err != nil {
			return nil, err
		}

		pruned, _ := mesh.Prune(sub)
		sub.Coords().Release()

		out = append(out, pruned)
	}

	return out, nil
}
