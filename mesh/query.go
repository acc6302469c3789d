package mesh

import (
	"errors"
	"iter"
	"math"

	"github.com/hupe1980/meshkit/internal/bitset"
)

// NumElements returns the total number of elements of r.
func NumElements(r Reader) int {
	n := 0
	for _, et := range r.Types() {
		b, _ := r.Block(et)
		n += b.Len()
	}

	return n
}

// Element returns the node tuple of id.
func Element(r Reader, id ElementID) ([]int, error) {
	b, ok := r.Block(id.Type)
	if !ok || id.Index < 0 || id.Index >= b.Len() {
		return nil, structuralf("element", "no element %s", id)
	}

	return b.Element(id.Index), nil
}

// Elements iterates over every element in id order.
func Elements(r Reader) iter.Seq2[ElementID, []int] {
	return func(yield func(ElementID, []int) bool) {
		for _, et := range r.Types() {
			b, _ := r.Block(et)
			for i := range b.Len() {
				if !yield(ElementID{Type: et, Index: i}, b.Element(i)) {
					return
				}
			}
		}
	}
}

// ElementsOfDim iterates over the elements of topological dimension d.
func ElementsOfDim(r Reader, d Dimension) iter.Seq2[ElementID, []int] {
	return func(yield func(ElementID, []int) bool) {
		for id, nodes := range Elements(r) {
			if id.Type.Dimension() == d && !yield(id, nodes) {
				return
			}
		}
	}
}

// TopologicalDimension returns the highest element dimension of r, or -1 for
// a mesh without elements.
func TopologicalDimension(r Reader) Dimension {
	d := Dimension(-1)
	for _, et := range r.Types() {
		if b, _ := r.Block(et); b.Len() > 0 {
			d = max(d, et.Dimension())
		}
	}

	return d
}

func usedMask(r Reader) *bitset.BitSet {
	used := bitset.New(r.NumNodes())

	for _, nodes := range Elements(r) {
		for _, n := range nodes {
			used.Set(n)
		}
	}

	return used
}

// UsedNodes returns the sorted indices of every node referenced by an
// element.
func UsedNodes(r Reader) []int {
	used := usedMask(r)
	out := make([]int, 0, used.Count())

	for i := range used.All() {
		out = append(out, i)
	}

	return out
}

// CornerNodes returns the distinct corner nodes of an element: the first
// NumCorners nodes of regular types, every distinct node of poly types.
func CornerNodes(et ElementType, nodes []int) []int {
	if !et.IsPoly() {
		return nodes[:et.NumCorners()]
	}

	out := make([]int, 0, len(nodes))
	seen := make(map[int]struct{}, len(nodes))

	for _, n := range nodes {
		if n == FaceSeparator {
			continue
		}

		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}

	return out
}

// Centroid returns the average of the corner nodes of id.
func Centroid(r Reader, id ElementID) ([]float64, error) {
	nodes, err := Element(r, id)
	if err != nil {
		return nil, err
	}

	corners := CornerNodes(id.Type, nodes)
	c := make([]float64, r.SpaceDim())

	for _, n := range corners {
		for k, x := range r.Coord(n) {
			c[k] += x
		}
	}

	for k := range c {
		c[k] /= float64(len(corners))
	}

	return c, nil
}

// Bounds returns the axis-aligned bounding box of every node of id.
func Bounds(r Reader, id ElementID) (lo, hi []float64, err error) {
	nodes, err := Element(r, id)
	if err != nil {
		return nil, nil, err
	}

	lo, hi = emptyBox(r.SpaceDim())

	for _, n := range nodes {
		if n != FaceSeparator {
			growBox(lo, hi, r.Coord(n))
		}
	}

	return lo, hi, nil
}

// MeshBounds returns the bounding box of every node of r.
func MeshBounds(r Reader) (lo, hi []float64) {
	lo, hi = emptyBox(r.SpaceDim())
	for i := range r.NumNodes() {
		growBox(lo, hi, r.Coord(i))
	}

	return lo, hi
}

func emptyBox(dim int) (lo, hi []float64) {
	lo = make([]float64, dim)
	hi = make([]float64, dim)

	for k := range dim {
		lo[k] = math.Inf(1)
		hi[k] = math.Inf(-1)
	}

	return lo, hi
}

func growBox(lo, hi, p []float64) {
	for k, x := range p {
		lo[k] = math.Min(lo[k], x)
		hi[k] = math.Max(hi[k], x)
	}
}

// Validate checks r structurally: node indices in range, tuple shapes and
// complete fields. All problems are joined into one error.
func Validate(r Reader) error {
	var errs []error

	n := r.NumNodes()

	for _, et := range r.Types() {
		b, _ := r.Block(et)

		for i := range b.Len() {
			id := ElementID{Type: et, Index: i}
			nodes := b.Element(i)

			if err := checkTuple(et, nodes); err != nil {
				errs = append(errs, &StructuralError{Op: "validate", Detail: id.String(), Err: err})
				continue
			}

			for _, v := range nodes {
				if v >= n {
					errs = append(errs, structuralf("validate", "%s references node %d of %d", id, v, n))
					break
				}
			}
		}

		for _, name := range b.FieldNames() {
			if v, _ := b.Field(name); len(v) != b.Len() {
				errs = append(errs, structuralf("validate", "field %q on %s is partial", name, et))
			}
		}
	}

	return errors.Join(errs...)
}
