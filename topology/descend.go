package topology

import (
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/meshkit/canon"
	"github.com/hupe1980/meshkit/mesh"
)

// ParentRef links a sub-entity to an element containing it.
type ParentRef struct {
	// Parent is the containing element.
	Parent mesh.ElementID
	// Local is the position of the sub-entity in the parent's template list.
	Local int
	// Reversed is set when the parent traverses the sub-entity against the
	// orientation stored in the descending mesh.
	Reversed bool
}

// Descent is a descending mesh plus the adjacency between its elements and
// the source elements they were extracted from.
type Descent struct {
	mesh     *mesh.Mesh
	source   mesh.Dimension
	target   mesh.Dimension
	mode     canon.Mode
	elements []mesh.ElementID
	parents  map[mesh.ElementID][]ParentRef
	children map[mesh.ElementID][]mesh.ElementID
	index    map[canon.Signature]mesh.ElementID
}

type occurrence struct {
	parent mesh.ElementID
	local  int
	sub    mesh.SubEntity
}

type group struct {
	id    mesh.ElementID
	nodes []int
}

// Descend extracts the sub-entities of the highest-dimensional elements of
// src. Equivalent sub-entities under mode collapse into one element of the
// returned descending mesh, which shares the coordinates of src. Output
// elements are numbered per type in first-encounter order, and each keeps
// the node order of its first parent.
//
// Codimension-1 sub-entities with more than two parents are kept, never
// merged or dropped, and reported as a joined ValidityError. The descent is
// returned along with that error so callers can still inspect it.
func Descend(src mesh.Reader, mode canon.Mode, opts ...Option) (*Descent, error) {
	const op = "descend"

	o := applyOptions(opts)

	d := mesh.TopologicalDimension(src)
	if d < mesh.D1 {
		return nil, &mesh.DimensionError{Op: op, SpaceDim: src.SpaceDim(), TopoDim: d, Detail: "nothing to descend from"}
	}

	t := d - 1
	if o.hasTarget {
		t = o.target
	}

	if t < mesh.D0 || t >= d {
		return nil, &mesh.DimensionError{Op: op, SpaceDim: src.SpaceDim(), TopoDim: d, Detail: fmt.Sprintf("cannot descend to %s", t)}
	}

	var (
		occs     []occurrence
		elements []mesh.ElementID
	)

	for id, nodes := range mesh.ElementsOfDim(src, d) {
		subs, err := mesh.SubEntities(id.Type, nodes, t)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", op, id, err)
		}

		elements = append(elements, id)
		for k, s := range subs {
			occs = append(occs, occurrence{parent: id, local: k, sub: s})
		}
	}

	sigs, err := signatures(occs, mode, o.parallelism)
	if err != nil {
		return nil, err
	}

	desc := &Descent{
		source:   d,
		target:   t,
		mode:     mode,
		elements: elements,
		parents:  make(map[mesh.ElementID][]ParentRef),
		children: make(map[mesh.ElementID][]mesh.ElementID, len(elements)),
		index:    make(map[canon.Signature]mesh.ElementID),
	}

	groups := make(map[canon.Signature]group)
	tuples := make(map[mesh.ElementType][][]int)

	for i, oc := range occs {
		g, seen := groups[sigs[i]]
		if !seen {
			et := oc.sub.Type
			g = group{id: mesh.ElementID{Type: et, Index: len(tuples[et])}, nodes: oc.sub.Nodes}
			groups[sigs[i]] = g
			tuples[et] = append(tuples[et], oc.sub.Nodes)
			desc.index[sigs[i]] = g.id
		}

		desc.parents[g.id] = append(desc.parents[g.id], ParentRef{
			Parent:   oc.parent,
			Local:    oc.local,
			Reversed: seen && canon.Reversed(oc.sub.Type, g.nodes, oc.sub.Nodes),
		})
		desc.children[oc.parent] = append(desc.children[oc.parent], g.id)
	}

	blocks := make([]*mesh.ElementBlock, 0, len(tuples))

	for _, et := range mesh.AllTypes {
		ts, ok := tuples[et]
		if !ok {
			continue
		}

		b, err := blockOf(et, ts)
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, b)
	}

	out, err := mesh.WithBlocks(src, blocks)
	if err != nil {
		return nil, err
	}

	desc.mesh = out

	return desc, desc.Err()
}

// signatures computes one signature per occurrence, optionally on a bounded
// worker pool. Each worker writes a disjoint range of the result.
func signatures(occs []occurrence, mode canon.Mode, parallelism int) ([]canon.Signature, error) {
	out := make([]canon.Signature, len(occs))

	fill := func(lo, hi int) {
		for i := lo; i < hi; i++ {
			out[i], _ = canon.Of(occs[i].sub.Type, occs[i].sub.Nodes, mode)
		}
	}

	if parallelism < 2 || len(occs) < 2*parallelism {
		fill(0, len(occs))
		return out, nil
	}

	var g errgroup.Group

	g.SetLimit(parallelism)

	chunk := (len(occs) + parallelism - 1) / parallelism
	for lo := 0; lo < len(occs); lo += chunk {
		hi := min(lo+chunk, len(occs))

		g.Go(func() error {
			fill(lo, hi)
			return nil
		})
	}

	return out, g.Wait()
}

func blockOf(et mesh.ElementType, tuples [][]int) (*mesh.ElementBlock, error) {
	if et.IsPoly() {
		return mesh.NewElementBlock(et, mesh.PolyFromTuples(tuples))
	}

	flat := make([]int, 0, len(tuples)*et.NumNodes())
	for _, t := range tuples {
		flat = append(flat, t...)
	}

	conn, err := mesh.NewRegular(et.NumNodes(), flat)
	if err != nil {
		return nil, err
	}

	return mesh.NewElementBlock(et, conn)
}

// Mesh returns the descending mesh.
func (d *Descent) Mesh() *mesh.Mesh { return d.mesh }

// SourceDim returns the dimension of the elements that were descended.
func (d *Descent) SourceDim() mesh.Dimension { return d.source }

// TargetDim returns the dimension of the descending mesh.
func (d *Descent) TargetDim() mesh.Dimension { return d.target }

// Mode returns the equivalence mode used for grouping.
func (d *Descent) Mode() canon.Mode { return d.mode }

// Elements returns the source elements in id order.
func (d *Descent) Elements() []mesh.ElementID { return slices.Clone(d.elements) }

// Parents returns the source elements containing sub-entity id.
func (d *Descent) Parents(id mesh.ElementID) []ParentRef {
	return slices.Clone(d.parents[id])
}

// Children returns the sub-entities of a source element in template order.
func (d *Descent) Children(parent mesh.ElementID) []mesh.ElementID {
	return slices.Clone(d.children[parent])
}

// Lookup returns the sub-entity equivalent to (et, nodes) under the descent
// mode.
func (d *Descent) Lookup(et mesh.ElementType, nodes []int) (mesh.ElementID, bool) {
	sig, _ := canon.Of(et, nodes, d.mode)
	id, ok := d.index[sig]

	return id, ok
}

// WithParents returns the sub-entities that have exactly n parents.
func (d *Descent) WithParents(n int) *mesh.IDSet {
	out := mesh.NewIDSet()

	for id := range mesh.Elements(d.mesh) {
		if len(d.parents[id]) == n {
			out.Add(id)
		}
	}

	return out
}

// Boundary returns the sub-entities with exactly one parent.
func (d *Descent) Boundary() *mesh.IDSet { return d.WithParents(1) }

// NonManifold returns the codimension-1 sub-entities shared by more than
// two elements, in id order.
func (d *Descent) NonManifold() []mesh.ElementID {
	if d.target != d.source-1 {
		return nil
	}

	var out []mesh.ElementID

	for id := range mesh.Elements(d.mesh) {
		if len(d.parents[id]) > 2 {
			out = append(out, id)
		}
	}

	return out
}

// Err reports every non-manifold sub-entity as a ValidityError.
func (d *Descent) Err() error {
	var errs []error

	for _, id := range d.NonManifold() {
		nodes, _ := mesh.Element(d.mesh, id)
		errs = append(errs, &mesh.ValidityError{
			Op:      "descend",
			Element: id,
			Nodes:   nodes,
			Detail:  fmt.Sprintf("non-manifold: shared by %d elements", len(d.parents[id])),
		})
	}

	return errors.Join(errs...)
}

// Boundary returns the codimension-1 sub-entities of src with exactly one
// parent, oriented like their parent. The result shares the coordinates of
// src. A non-manifold src yields no mesh and the ValidityError of Descend.
func Boundary(src mesh.Reader, mode canon.Mode, opts ...Option) (*mesh.Mesh, error) {
	desc, err := Descend(src, mode, opts...)
	if err != nil {
		return nil, err
	}

	return mesh.Extract(desc.mesh, desc.Boundary())
}
