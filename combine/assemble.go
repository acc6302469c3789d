package combine

import (
	"maps"
	"math"
	"slices"

	"github.com/hupe1980/meshkit/geom"
	"github.com/hupe1980/meshkit/merge"
	"github.com/hupe1980/meshkit/mesh"
	"github.com/hupe1980/meshkit/spatial"
)

// finish deduplicates the nodes of the collected cells, resolves hanging
// nodes and builds the result mesh.
func (c *combiner) finish() (*Result, error) {
	tmp := mesh.NewBuilder(2)
	for i := 0; i < len(c.coords); i += 2 {
		tmp.AddNode(c.coords[i], c.coords[i+1])
	}

	for _, cl := range c.cells {
		tmp.AddElement(cl.et, cl.nodes...)
	}

	raw, err := tmp.Build()
	if err != nil {
		return nil, err
	}
	defer func() { _ = raw.Release() }()

	mopts := []merge.Option{merge.WithPredicates(c.o.pred)}
	if c.o.strict {
		mopts = append(mopts, merge.WithStrict())
	}

	merged, err := merge.MergeNodes(raw, c.o.tolerance, mopts...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = merged.Mesh.Release() }()

	for _, cl := range c.cells {
		for i, n := range cl.nodes {
			cl.nodes[i] = merged.NodeMap[n]
		}
	}

	c.conform(merged.Mesh)

	if c.o.triangulate {
		c.triangulate(merged.Mesh)
	}

	res := &Result{
		Provenance:  make(map[mesh.ElementID][]Parent, len(c.cells)),
		Diagnostics: Diagnostics{Merge: merged.Diagnostics},
	}

	out := mesh.NewBuilder(2, mesh.WithName(c.inputs[0].Name()), mesh.WithDescription(c.inputs[0].Description()))
	for i := range merged.Mesh.NumNodes() {
		out.AddNode(merged.Mesh.Coord(i)...)
	}

	names := c.fieldNames()
	values := make(map[mesh.ElementType]map[string][]float64)

	for _, cl := range c.cells {
		id := out.AddElement(cl.et, cl.nodes...)
		res.Provenance[id] = cl.parents

		if len(names) > 0 && values[id.Type] == nil {
			values[id.Type] = make(map[string][]float64, len(names))
		}

		for _, name := range names {
			values[id.Type][name] = append(values[id.Type][name], c.fieldValue(id, name, cl.parents, &res.Diagnostics))
		}

		for _, g := range c.groupsOf(cl.parents) {
			out.AddToGroup(g, id)
		}
	}

	for et, fields := range values {
		for name, vals := range fields {
			out.SetField(et, name, vals)
		}
	}

	if res.Mesh, err = out.Build(); err != nil {
		return nil, err
	}

	return res, nil
}

// conform inserts into every cell edge the nodes lying on it, so that
// neighboring cells share complete edges. Cells that gain nodes become PGON.
func (c *combiner) conform(r mesh.Reader) {
	used := mesh.UsedNodes(r)
	idx := spatial.NewPointIndex(2, len(used), func(i int) []float64 { return r.Coord(used[i]) })

	for _, cl := range c.cells {
		corners := mesh.CornerNodes(cl.et, cl.nodes)
		ring := make([]int, 0, len(corners))
		grown := false

		for k, a := range corners {
			ring = append(ring, a)

			hits := c.hanging(r, idx, used, corners, a, corners[(k+1)%len(corners)])
			if len(hits) > 0 {
				ring = append(ring, hits...)
				grown = true
			}
		}

		if grown {
			cl.et = mesh.Pgon
			cl.nodes = ring
			cl.reshaped = true
		}
	}
}

// hanging returns the nodes strictly inside segment a-b, ordered from a to b.
func (c *combiner) hanging(r mesh.Reader, idx *spatial.PointIndex, used, skip []int, a, b int) []int {
	pa, pb := r.Coord(a), r.Coord(b)
	length := geom.Distance(pa, pb)
	tol := c.o.tolerance

	if length <= tol {
		return nil
	}

	mid := []float64{(pa[0] + pb[0]) / 2, (pa[1] + pb[1]) / 2}

	type hit struct {
		node int
		t    float64
	}

	var hits []hit

	for _, i := range idx.Within(mid, length/2+tol) {
		v := used[i]
		if slices.Contains(skip, v) {
			continue
		}

		pv := r.Coord(v)
		if geom.Distance(pv, pa) <= tol || geom.Distance(pv, pb) <= tol {
			continue
		}

		if geom.SegmentDistance(geom.Point{X: pv[0], Y: pv[1]}, geom.Point{X: pa[0], Y: pa[1]}, geom.Point{X: pb[0], Y: pb[1]}) > tol {
			continue
		}

		t := ((pv[0]-pa[0])*(pb[0]-pa[0]) + (pv[1]-pa[1])*(pb[1]-pa[1])) / (length * length)
		hits = append(hits, hit{node: v, t: t})
	}

	slices.SortFunc(hits, func(x, y hit) int {
		switch {
		case x.t < y.t:
			return -1
		case x.t > y.t:
			return 1
		default:
			return x.node - y.node
		}
	})

	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.node
	}

	return out
}

// triangulate replaces every reshaped cell by TRI3 cells.
func (c *combiner) triangulate(r mesh.Reader) {
	out := make([]*cell, 0, len(c.cells))

	for _, cl := range c.cells {
		if !cl.reshaped || cl.et == mesh.Tri3 {
			out = append(out, cl)
			continue
		}

		corners := mesh.CornerNodes(cl.et, cl.nodes)
		for _, t := range geom.RingOf(cl.et, cl.nodes, r.Coord).Triangulate(c.o.pred.Tolerance()) {
			out = append(out, &cell{
				et:       mesh.Tri3,
				nodes:    []int{corners[t[0]], corners[t[1]], corners[t[2]]},
				parents:  cl.parents,
				reshaped: true,
			})
		}
	}

	c.cells = out
}

// fieldNames returns the fields of every 2-D input block.
func (c *combiner) fieldNames() []string {
	names := make(map[string]struct{})

	for _, r := range c.inputs {
		for _, et := range r.Types() {
			if et.Dimension() != mesh.D2 {
				continue
			}

			b, _ := r.Block(et)
			for _, name := range b.FieldNames() {
				names[name] = struct{}{}
			}
		}
	}

	return slices.Sorted(maps.Keys(names))
}

// fieldValue returns the value of field name for an output cell. Parents
// without the field are skipped; a cell without any such parent gets NaN.
func (c *combiner) fieldValue(id mesh.ElementID, name string, parents []Parent, diag *Diagnostics) float64 {
	var vals []float64

	for _, p := range parents {
		b, _ := c.inputs[p.Operand].Block(p.ID.Type)
		if f, ok := b.Field(name); ok {
			vals = append(vals, f[p.ID.Index])
		}
	}

	if len(vals) == 0 {
		return math.NaN()
	}

	for _, v := range vals[1:] {
		if v != vals[0] {
			diag.Conflicts = append(diag.Conflicts, Conflict{Element: id, Field: name, Values: vals})
			return c.o.reduction.apply(vals)
		}
	}

	return vals[0]
}

func (c *combiner) groupsOf(parents []Parent) []string {
	var out []string

	for _, p := range parents {
		b, _ := c.inputs[p.Operand].Block(p.ID.Type)
		out = append(out, b.GroupsOf(p.ID.Index)...)
	}

	slices.Sort(out)

	return slices.Compact(out)
}
