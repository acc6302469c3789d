package mesh

import (
	"fmt"
	"slices"
)

// SubEntity is a lower-dimensional entity of an element, expressed in global
// node indices.
type SubEntity struct {
	Type  ElementType
	Nodes []int
}

type template struct {
	typ   ElementType
	local []int
}

// Corner templates of the linear types. Faces are oriented outward for
// elements of positive volume.
var (
	cornerEdges = map[ElementType][][]int{
		Tri3:  {{0, 1}, {1, 2}, {2, 0}},
		Quad4: {{0, 1}, {1, 2}, {2, 3}, {3, 0}},
		Tet4:  {{0, 1}, {1, 2}, {2, 0}, {0, 3}, {1, 3}, {2, 3}},
		Hex8: {
			{0, 1}, {1, 2}, {2, 3}, {3, 0},
			{4, 5}, {5, 6}, {6, 7}, {7, 4},
			{0, 4}, {1, 5}, {2, 6}, {3, 7},
		},
	}
	cornerFaces = map[ElementType][][]int{
		Tet4: {{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}},
		Hex8: {{0, 3, 2, 1}, {4, 5, 6, 7}, {0, 1, 5, 4}, {1, 2, 6, 5}, {2, 3, 7, 6}, {3, 0, 4, 7}},
	}
)

// templates[type][dim] holds the sub-entity templates of every regular type.
var templates = buildTemplates()

func buildTemplates() map[ElementType][4][]template {
	out := make(map[ElementType][4][]template)

	for _, et := range AllTypes {
		if et.IsPoly() {
			continue
		}

		var byDim [4][]template

		lin := et.Linear()
		if et.Dimension() > D1 {
			for _, e := range cornerEdges[lin] {
				byDim[D1] = append(byDim[D1], lift(et, e, Seg2, Seg3))
			}
		}

		if et.Dimension() > D2 {
			for _, f := range cornerFaces[lin] {
				switch len(f) {
				case 3:
					byDim[D2] = append(byDim[D2], lift(et, f, Tri3, Tri6))
				case 4:
					byDim[D2] = append(byDim[D2], lift(et, f, Quad4, Quad8))
				}
			}
		}

		out[et] = byDim
	}

	return out
}

// lift turns a corner tuple into a template of parent et, appending the
// midpoint nodes of each consecutive corner pair for high-order parents.
func lift(et ElementType, corners []int, linear, quadratic ElementType) template {
	if !et.IsHighOrder() {
		return template{typ: linear, local: slices.Clone(corners)}
	}

	local := slices.Clone(corners)

	if len(corners) == 2 {
		return template{typ: quadratic, local: append(local, midNode(et, corners[0], corners[1]))}
	}

	for i := range corners {
		local = append(local, midNode(et, corners[i], corners[(i+1)%len(corners)]))
	}

	return template{typ: quadratic, local: local}
}

func midNode(et ElementType, a, b int) int {
	want := []int{min(a, b), max(a, b)}
	for k, s := range et.Support() {
		if slices.Equal(s, want) {
			return et.NumCorners() + k
		}
	}

	panic(fmt.Sprintf("mesh: %s has no midpoint between %d and %d", et, a, b))
}

// SubEntities returns the dimension-d sub-entities of the element (et, nodes)
// in template order. Dimension 0 yields one VERTEX per distinct node.
func SubEntities(et ElementType, nodes []int, d Dimension) ([]SubEntity, error) {
	if d >= et.Dimension() || d < D0 {
		return nil, &DimensionError{
			Op:      "sub-entities",
			TopoDim: et.Dimension(),
			Detail:  fmt.Sprintf("cannot extract %s entities from %s", d, et),
		}
	}

	if d == D0 {
		return vertices(nodes), nil
	}

	if et.IsPoly() {
		return polySubEntities(et, nodes, d)
	}

	if len(nodes) != et.NumNodes() {
		return nil, structuralf("sub-entities", "%s expects %d nodes, got %d", et, et.NumNodes(), len(nodes))
	}

	tmpls := templates[et][d]
	out := make([]SubEntity, len(tmpls))

	for i, tm := range tmpls {
		sub := make([]int, len(tm.local))
		for j, l := range tm.local {
			sub[j] = nodes[l]
		}

		out[i] = SubEntity{Type: tm.typ, Nodes: sub}
	}

	return out, nil
}

func vertices(nodes []int) []SubEntity {
	out := make([]SubEntity, 0, len(nodes))
	seen := make(map[int]struct{}, len(nodes))

	for _, n := range nodes {
		if n == FaceSeparator {
			continue
		}

		if _, ok := seen[n]; ok {
			continue
		}

		seen[n] = struct{}{}
		out = append(out, SubEntity{Type: Vertex, Nodes: []int{n}})
	}

	return out
}

func polySubEntities(et ElementType, nodes []int, d Dimension) ([]SubEntity, error) {
	switch et {
	case Pgon:
		if len(nodes) < 3 {
			return nil, structuralf("sub-entities", "PGON needs at least 3 nodes, got %d", len(nodes))
		}

		return ringEdges(nodes), nil
	case Phed:
		faces, err := SplitFaces(nodes)
		if err != nil {
			return nil, err
		}

		if d == D2 {
			out := make([]SubEntity, len(faces))
			for i, f := range faces {
				out[i] = SubEntity{Type: PolygonType(len(f)), Nodes: f}
			}

			return out, nil
		}

		var out []SubEntity

		seen := make(map[[2]int]struct{})

		for _, f := range faces {
			for _, e := range ringEdges(f) {
				key := [2]int{min(e.Nodes[0], e.Nodes[1]), max(e.Nodes[0], e.Nodes[1])}
				if _, ok := seen[key]; ok {
					continue
				}

				seen[key] = struct{}{}
				out = append(out, e)
			}
		}

		return out, nil
	}

	return nil, structuralf("sub-entities", "no sub-entities of dimension %s for %s", d, et)
}

func ringEdges(ring []int) []SubEntity {
	out := make([]SubEntity, len(ring))
	for i := range ring {
		out[i] = SubEntity{Type: Seg2, Nodes: []int{ring[i], ring[(i+1)%len(ring)]}}
	}

	return out
}

// SplitFaces splits PHED connectivity into its faces.
func SplitFaces(nodes []int) ([][]int, error) {
	var (
		faces [][]int
		cur   []int
	)

	for _, n := range append(slices.Clone(nodes), FaceSeparator) {
		if n != FaceSeparator {
			cur = append(cur, n)
			continue
		}

		if len(cur) == 0 {
			continue
		}

		if len(cur) < 3 {
			return nil, structuralf("split faces", "PHED face with %d nodes", len(cur))
		}

		faces = append(faces, cur)
		cur = nil
	}

	if len(faces) < 4 {
		return nil, structuralf("split faces", "PHED needs at least 4 faces, got %d", len(faces))
	}

	return faces, nil
}

// JoinFaces builds PHED connectivity from face rings.
func JoinFaces(faces [][]int) []int {
	var out []int

	for i, f := range faces {
		if i > 0 {
			out = append(out, FaceSeparator)
		}

		out = append(out, f...)
	}

	return out
}

// PolygonType returns TRI3, QUAD4 or PGON for a ring of n nodes.
func PolygonType(n int) ElementType {
	switch n {
	case 3:
		return Tri3
	case 4:
		return Quad4
	default:
		return Pgon
	}
}
