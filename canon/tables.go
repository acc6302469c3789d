package canon

import (
	"fmt"
	"slices"

	"github.com/hupe1980/meshkit/mesh"
)

// groups holds, per regular element type, the permutation tables of its
// proper (index 0) and full (index 1) automorphism groups. Entry g maps
// output position i to input position g[i]. The identity is always first.
var groups = buildGroups()

func table(et mesh.ElementType, chiral bool) ([][]int, bool) {
	g, ok := groups[et]
	if !ok {
		return nil, false
	}

	if chiral {
		return g[1], true
	}

	return g[0], true
}

// MaxPolySize is the largest PGON or SPLINE arity with a tabulated group.
// Longer tuples fall back to Unordered.
const MaxPolySize = 32

// rings holds, per arity, the cyclic and dihedral groups of a PGON ring;
// paths holds the identity and the reversal of a SPLINE tuple.
var rings, paths = buildPolyGroups()

func buildPolyGroups() (r, p [MaxPolySize + 1][2][][]int) {
	for n := 3; n <= MaxPolySize; n++ {
		r[n] = [2][][]int{cyclic(n), dihedral(n)}
	}

	for n := 2; n <= MaxPolySize; n++ {
		id := cyclic(n)[0]

		rev := slices.Clone(id)
		slices.Reverse(rev)

		p[n] = [2][][]int{{id}, {id, rev}}
	}

	return r, p
}

// polyTable returns the group of an n-node PGON or SPLINE tuple.
func polyTable(et mesh.ElementType, n int, chiral bool) ([][]int, bool) {
	if n < 0 || n > MaxPolySize {
		return nil, false
	}

	var g [2][][]int

	switch et {
	case mesh.Pgon:
		g = rings[n]
	case mesh.Spline:
		g = paths[n]
	default:
		return nil, false
	}

	if g[0] == nil {
		return nil, false
	}

	if chiral {
		return g[1], true
	}

	return g[0], true
}

// Corner generators of the linear types.
var (
	hexRotZ   = []int{1, 2, 3, 0, 5, 6, 7, 4}
	hexRotX   = []int{3, 2, 6, 7, 0, 1, 5, 4}
	hexMirror = []int{1, 0, 3, 2, 5, 4, 7, 6}
)

func buildGroups() map[mesh.ElementType][2][][]int {
	corner := map[mesh.ElementType][2][][]int{
		mesh.Vertex: {{{0}}, {{0}}},
		mesh.Seg2:   {{{0, 1}}, {{0, 1}, {1, 0}}},
		mesh.Tri3:   {cyclic(3), dihedral(3)},
		mesh.Quad4:  {cyclic(4), dihedral(4)},
		mesh.Tet4:   {permutations(4, true), permutations(4, false)},
		mesh.Hex8: {
			closure(8, hexRotZ, hexRotX),
			closure(8, hexRotZ, hexRotX, hexMirror),
		},
	}

	out := make(map[mesh.ElementType][2][][]int)

	for _, et := range mesh.AllTypes {
		if et.IsPoly() {
			continue
		}

		base, ok := corner[et.Linear()]
		if !ok {
			panic(fmt.Sprintf("canon: no automorphism group for %s", et))
		}

		var g [2][][]int
		for k := range g {
			for _, p := range base[k] {
				g[k] = append(g[k], induce(et, p))
			}
		}

		out[et] = g
	}

	return out
}

// induce extends a corner permutation to every node of et: a node attached
// to corners S in the output sits where the node attached to p(S) sat in the
// input.
func induce(et mesh.ElementType, p []int) []int {
	if !et.IsHighOrder() {
		return slices.Clone(p)
	}

	support := et.Support()
	full := make([]int, et.NumNodes())
	copy(full, p)

	for k, s := range support {
		img := make([]int, len(s))
		for i, c := range s {
			img[i] = p[c]
		}

		slices.Sort(img)

		found := -1

		for j, t := range support {
			if slices.Equal(t, img) {
				found = j
				break
			}
		}

		if found < 0 {
			panic(fmt.Sprintf("canon: %s corner permutation %v does not preserve node %d", et, p, et.NumCorners()+k))
		}

		full[et.NumCorners()+k] = et.NumCorners() + found
	}

	return full
}

func cyclic(n int) [][]int {
	out := make([][]int, n)
	for k := range n {
		g := make([]int, n)
		for i := range n {
			g[i] = (i + k) % n
		}

		out[k] = g
	}

	return out
}

func dihedral(n int) [][]int {
	out := cyclic(n)
	for k := range n {
		g := make([]int, n)
		for i := range n {
			g[i] = ((k-i)%n + n) % n
		}

		out = append(out, g)
	}

	return out
}

// permutations lists every permutation of n in lexicographic order, keeping
// only even ones when evenOnly is set.
func permutations(n int, evenOnly bool) [][]int {
	var out [][]int

	var rec func(prefix []int, used []bool)

	rec = func(prefix []int, used []bool) {
		if len(prefix) == n {
			if !evenOnly || parity(prefix) == 0 {
				out = append(out, slices.Clone(prefix))
			}

			return
		}

		for i := range n {
			if used[i] {
				continue
			}

			used[i] = true
			rec(append(prefix, i), used)
			used[i] = false
		}
	}

	rec(nil, make([]bool, n))

	return out
}

func parity(p []int) int {
	inv := 0

	for i := range p {
		for j := i + 1; j < len(p); j++ {
			if p[i] > p[j] {
				inv++
			}
		}
	}

	return inv % 2
}

// closure generates the group spanned by gens, identity first, in
// breadth-first order.
func closure(n int, gens ...[]int) [][]int {
	id := make([]int, n)
	for i := range id {
		id[i] = i
	}

	seen := map[string]bool{fmt.Sprint(id): true}
	out := [][]int{id}

	for q := 0; q < len(out); q++ {
		for _, g := range gens {
			c := make([]int, n)
			for i := range c {
				c[i] = out[q][g[i]]
			}

			key := fmt.Sprint(c)
			if !seen[key] {
				seen[key] = true
				out = append(out, c)
			}
		}
	}

	return out
}
