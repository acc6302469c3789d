package merge

import (
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/hupe1980/meshkit/geom"
	"github.com/hupe1980/meshkit/mesh"
	"github.com/hupe1980/meshkit/spatial"
)

// Diagnostics collects the clusters a merge or snap refused to apply.
type Diagnostics struct {
	Ambiguous []*mesh.ToleranceAmbiguityError
	Rejected  []*mesh.ValidityError
}

// Len returns the number of refused clusters.
func (d Diagnostics) Len() int { return len(d.Ambiguous) + len(d.Rejected) }

// Err joins every diagnostic into one error, or returns nil.
func (d Diagnostics) Err() error {
	errs := make([]error, 0, d.Len())
	for _, e := range d.Ambiguous {
		errs = append(errs, e)
	}

	for _, e := range d.Rejected {
		errs = append(errs, e)
	}

	return errors.Join(errs...)
}

// Result is the outcome of MergeNodes.
type Result struct {
	// Mesh is the merged mesh with pruned coordinates.
	Mesh *mesh.Mesh
	// NodeMap maps every source node to its node in Mesh, or -1 when the
	// node was unreferenced and pruned.
	NodeMap []int
	// Merged lists the applied clusters in source node indices.
	Merged [][]int
	// Diagnostics lists the clusters that were not applied.
	Diagnostics Diagnostics
}

// Duplicates returns the clusters of referenced nodes that are transitively
// within eps of each other. Each cluster is sorted and clusters are ordered
// by their smallest node.
func Duplicates(src mesh.Reader, eps float64) [][]int {
	used := mesh.UsedNodes(src)
	idx := spatial.NewPointIndex(src.SpaceDim(), len(used), func(i int) []float64 { return src.Coord(used[i]) })

	g := simple.NewUndirectedGraph()
	for i := range used {
		g.AddNode(simple.Node(i))
	}

	for i, n := range used {
		for _, j := range idx.Within(src.Coord(n), eps) {
			if j > i {
				g.SetEdge(simple.Edge{F: simple.Node(i), T: simple.Node(j)})
			}
		}
	}

	var out [][]int

	for _, c := range topo.ConnectedComponents(g) {
		if len(c) < 2 {
			continue
		}

		cluster := make([]int, len(c))
		for k, node := range c {
			cluster[k] = used[node.ID()]
		}

		slices.Sort(cluster)
		out = append(out, cluster)
	}

	slices.SortFunc(out, func(a, b []int) int { return a[0] - b[0] })

	return out
}

// MergeNodes collapses every cluster of nodes within eps onto one
// representative and returns a new mesh with pruned coordinates. src and
// any storage it shares are left untouched.
//
// A cluster whose diameter exceeds eps is reported as a
// ToleranceAmbiguityError and left alone. A cluster whose collapse would
// make an element degenerate is reported as a ValidityError and left alone.
// With WithStrict the first ambiguous cluster aborts the merge instead.
func MergeNodes(src mesh.Reader, eps float64, opts ...Option) (*Result, error) {
	const op = "merge nodes"

	o := applyOptions(opts)

	if eps < 0 {
		return nil, &mesh.StructuralError{Op: op, Detail: fmt.Sprintf("negative tolerance %g", eps)}
	}

	n := src.NumNodes()
	dim := src.SpaceDim()

	// target[i] is the node i collapses onto; pos holds tentative positions.
	target := make([]int, n)
	for i := range target {
		target[i] = i
	}

	pos := make([][]float64, n)
	for i := range n {
		pos[i] = src.Coord(i)
	}

	at := func(i int) []float64 { return pos[i] }
	incident := elementsByNode(src)

	res := &Result{}

	for _, cluster := range Duplicates(src, eps) {
		if d := diameter(src, cluster); d > eps {
			amb := &mesh.ToleranceAmbiguityError{Op: op, Nodes: cluster, Diameter: d, Tolerance: eps}
			if o.strict {
				return nil, amb
			}

			res.Diagnostics.Ambiguous = append(res.Diagnostics.Ambiguous, amb)

			continue
		}

		rep := cluster[0]
		repPos := src.Coord(rep)

		if o.representative == Centroid {
			repPos = centroid(src, cluster, dim)
		}

		if rej := o.check(src, cluster, rep, repPos, target, pos, incident); rej != nil {
			rej.Op = op
			res.Diagnostics.Rejected = append(res.Diagnostics.Rejected, rej)

			continue
		}

		for _, c := range cluster {
			target[c] = rep
		}

		pos[rep] = repPos
		res.Merged = append(res.Merged, cluster)
	}

	flat := make([]float64, 0, n*dim)
	for i := range n {
		flat = append(flat, at(i)...)
	}

	cs, err := mesh.NewCoordStore(dim, flat)
	if err != nil {
		return nil, err
	}

	blocks := make([]*mesh.ElementBlock, 0, len(src.Types()))

	for _, et := range src.Types() {
		b, _ := src.Block(et)

		nb, err := mesh.RemapNodes(b, target)
		if err != nil {
			return nil, err
		}

		blocks = append(blocks, nb)
	}

	merged, err := mesh.New(cs, blocks, mesh.WithName(src.Name()), mesh.WithDescription(src.Description()))
	if err != nil {
		return nil, err
	}

	pruned, remap := mesh.Prune(merged)
	cs.Release()

	res.Mesh = pruned
	res.NodeMap = make([]int, n)

	for i := range n {
		res.NodeMap[i] = remap[target[i]]
	}

	return res, nil
}

// check returns a ValidityError when collapsing cluster onto rep at repPos
// would make a currently valid element degenerate.
func (o options) check(src mesh.Reader, cluster []int, rep int, repPos []float64, target []int, pos [][]float64, incident map[int][]mesh.ElementID) *mesh.ValidityError {
	in := make(map[int]bool, len(cluster))
	for _, c := range cluster {
		in[c] = true
	}

	var affected []mesh.ElementID

	for _, c := range cluster {
		affected = append(affected, incident[c]...)
	}

	slices.SortFunc(affected, mesh.ElementID.Compare)
	affected = slices.Compact(affected)

	before := func(i int) []float64 { return pos[i] }
	after := func(i int) []float64 {
		if i == rep {
			return repPos
		}

		return pos[i]
	}

	for _, id := range affected {
		nodes, _ := mesh.Element(src, id)

		cur := mapNodes(nodes, func(v int) int { return target[v] })
		if geom.Degenerate(o.pred, id.Type, cur, before) {
			continue
		}

		next := mapNodes(cur, func(v int) int {
			if in[v] {
				return rep
			}

			return v
		})

		if geom.Degenerate(o.pred, id.Type, next, after) {
			return &mesh.ValidityError{
				Element: id,
				Nodes:   next,
				Detail:  fmt.Sprintf("merging cluster %v would collapse the element", cluster),
			}
		}
	}

	return nil
}

// checkMove returns a ValidityError when placing node v at p would make a
// currently valid element degenerate.
func (o options) checkMove(src mesh.Reader, v int, p []float64, pos [][]float64, incident map[int][]mesh.ElementID) *mesh.ValidityError {
	before := func(i int) []float64 { return pos[i] }
	after := func(i int) []float64 {
		if i == v {
			return p
		}

		return pos[i]
	}

	for _, id := range incident[v] {
		nodes, _ := mesh.Element(src, id)
		if geom.Degenerate(o.pred, id.Type, nodes, before) {
			continue
		}

		if geom.Degenerate(o.pred, id.Type, nodes, after) {
			return &mesh.ValidityError{
				Element: id,
				Nodes:   nodes,
				Detail:  fmt.Sprintf("moving node %d would collapse the element", v),
			}
		}
	}

	return nil
}

func mapNodes(nodes []int, f func(int) int) []int {
	out := make([]int, len(nodes))
	for i, v := range nodes {
		if v == mesh.FaceSeparator {
			out[i] = v
			continue
		}

		out[i] = f(v)
	}

	return out
}

func elementsByNode(src mesh.Reader) map[int][]mesh.ElementID {
	out := make(map[int][]mesh.ElementID)

	for id, nodes := range mesh.Elements(src) {
		for _, v := range nodes {
			if v != mesh.FaceSeparator {
				out[v] = append(out[v], id)
			}
		}
	}

	return out
}

func diameter(src mesh.Reader, cluster []int) float64 {
	d := 0.0

	for i := range cluster {
		for j := i + 1; j < len(cluster); j++ {
			d = max(d, geom.Distance(src.Coord(cluster[i]), src.Coord(cluster[j])))
		}
	}

	return d
}

func centroid(src mesh.Reader, cluster []int, dim int) []float64 {
	c := make([]float64, dim)

	for _, v := range cluster {
		for k, x := range src.Coord(v) {
			c[k] += x / float64(len(cluster))
		}
	}

	return c
}
